package marketdata

import (
	"encoding/json"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"
)

// defaultSectors covers the liquid names the engine trades out of the box.
// Overrides from SECTOR_OVERRIDES_JSON extend or replace entries.
var defaultSectors = map[string]string{
	"AAPL": "TECHNOLOGY",
	"MSFT": "TECHNOLOGY",
	"GOOG": "TECHNOLOGY",
	"NVDA": "TECHNOLOGY",
	"AMZN": "CONSUMER_DISCRETIONARY",
	"TSLA": "CONSUMER_DISCRETIONARY",
	"JPM":  "FINANCIALS",
	"GS":   "FINANCIALS",
	"BAC":  "FINANCIALS",
	"XOM":  "ENERGY",
	"CVX":  "ENERGY",
	"JNJ":  "HEALTHCARE",
	"PFE":  "HEALTHCARE",
	"UNH":  "HEALTHCARE",
}

// SectorClassifier maps symbols to sectors. Unknown symbols classify as
// "UNKNOWN" so a missing mapping can never block an order on its own.
type SectorClassifier struct {
	mu      sync.RWMutex
	sectors map[string]string
}

func NewSectorClassifier(config Config) *SectorClassifier {
	sectors := make(map[string]string, len(defaultSectors))
	for symbol, sector := range defaultSectors {
		sectors[symbol] = sector
	}

	if config.SectorOverridesJSON != "" {
		overrides := map[string]string{}
		if err := json.Unmarshal([]byte(config.SectorOverridesJSON), &overrides); err != nil {
			logger.WithError(err).Warn("invalid SECTOR_OVERRIDES_JSON, using defaults only")
		} else {
			for symbol, sector := range overrides {
				sectors[strings.ToUpper(symbol)] = strings.ToUpper(sector)
			}
		}
	}

	return &SectorClassifier{sectors: sectors}
}

// SectorFor returns the sector for a symbol, or "UNKNOWN".
func (c *SectorClassifier) SectorFor(symbol string) string {
	c.mu.RLock()
	sector, ok := c.sectors[strings.ToUpper(symbol)]
	c.mu.RUnlock()
	if !ok {
		return "UNKNOWN"
	}
	return sector
}

// Set records or updates one mapping at runtime.
func (c *SectorClassifier) Set(symbol, sector string) {
	c.mu.Lock()
	c.sectors[strings.ToUpper(symbol)] = strings.ToUpper(sector)
	c.mu.Unlock()
}
