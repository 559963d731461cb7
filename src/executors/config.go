package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Symbols        []string      `envconfig:"TARGET_SYMBOLS" default:"AAPL,MSFT,NVDA"`
	BaseEquity     float64       `envconfig:"BASE_EQUITY" default:"100000"`
	LoopPeriod     time.Duration `envconfig:"LOOP_PERIOD" default:"30s"`
	TickBufferSize int           `envconfig:"TICK_BUFFER_SIZE" default:"256"`
	PersistPeriod  time.Duration `envconfig:"PNL_PERSIST_PERIOD" default:"1m"`

	// Optional standing target weights, e.g. "AAPL:0.4,MSFT:0.3". When set,
	// a rebalance plan against the live book is computed and logged on
	// every RebalancePeriod.
	TargetWeights   map[string]float64 `envconfig:"TARGET_WEIGHTS"`
	RebalancePeriod time.Duration      `envconfig:"REBALANCE_PERIOD" default:"15m"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
