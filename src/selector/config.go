package selector

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ShadowCount       int     `envconfig:"SELECTOR_SHADOW_COUNT" default:"3"`
	SwapMargin        float64 `envconfig:"SELECTOR_SWAP_MARGIN" default:"1.10"`
	LookbackDays      int     `envconfig:"SELECTOR_LOOKBACK_DAYS" default:"30"`
	MinTradesForScore int     `envconfig:"SELECTOR_MIN_TRADES" default:"10"`
	StartingEquity    float64 `envconfig:"SELECTOR_STARTING_EQUITY" default:"100000"`

	// Strategy names whose style is incompatible with the current trading
	// regime, e.g. intraday strategies when same-day round-trips are not
	// possible. They are skipped during ranking.
	ExcludedStrategies []string `envconfig:"SELECTOR_EXCLUDED_STRATEGIES" default:""`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
