package bars

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SourceURL string   `envconfig:"BARS_SOURCE_URL" default:"http://localhost:5000/bars"`
	Symbols   []string `envconfig:"TARGET_SYMBOLS" default:"AAPL,MSFT,NVDA"`
	FetchDays int      `envconfig:"BARS_FETCH_DAYS" default:"60"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
