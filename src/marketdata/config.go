package marketdata

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ADVLookbackDays     int    `envconfig:"ADV_LOOKBACK_DAYS" default:"20"`
	ADVCacheTTLMinutes  int    `envconfig:"ADV_CACHE_TTL_MINUTES" default:"60"`
	SectorOverridesJSON string `envconfig:"SECTOR_OVERRIDES_JSON"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
