package controller

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service           string  `envconfig:"SERVICE_NAME" default:"equity-trader"`
	MinConfidence     float64 `envconfig:"MIN_SIGNAL_CONFIDENCE" default:"0.55"`
	MaxPositionWeight float64 `envconfig:"MAX_POSITION_WEIGHT" default:"0.10"`
	BarLookbackDays   int     `envconfig:"BAR_LOOKBACK_DAYS" default:"60"`
	LiveTrading       bool    `envconfig:"LIVE_TRADING" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
