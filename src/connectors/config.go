package connectors

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BridgeBaseURL        string `envconfig:"BRIDGE_BASE_URL" default:"http://localhost:5000"`
	BridgeAPIToken       string `envconfig:"BRIDGE_API_TOKEN"`
	BridgeTimeoutSeconds int    `envconfig:"BRIDGE_TIMEOUT_SECONDS" default:"10"`

	HealthIntervalSeconds int `envconfig:"BRIDGE_HEALTH_INTERVAL_SECONDS" default:"30"`

	TickStreamURL string `envconfig:"TICK_STREAM_URL" default:"ws://localhost:5001/ticks"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
