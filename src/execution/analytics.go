package execution

import (
	"math"
	"sort"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
)

// defaultRecordCap bounds the per-symbol history so a long-running engine
// never grows memory with trade count.
const defaultRecordCap = 256

// Record is one execution outcome as reported by the bridge.
type Record struct {
	Symbol        string
	Side          string
	Quantity      int64
	ExpectedPrice float64
	FillPrice     float64
	Filled        bool
	Timestamp     time.Time
}

// SlippageBps returns the execution cost of a fill in basis points against
// its expected price. Positive values are always adverse: paying up on a
// buy and selling below the expected price both come out positive.
func SlippageBps(side string, expectedPrice, fillPrice float64) float64 {
	if expectedPrice <= 0 {
		return 0
	}
	bps := (fillPrice - expectedPrice) / expectedPrice * 10000
	if side == "SELL" {
		bps = -bps
	}
	return bps
}

// Stats summarizes execution quality for one symbol.
type Stats struct {
	Symbol         string  `json:"symbol"`
	Fills          int     `json:"fills"`
	Attempts       int     `json:"attempts"`
	FillRate       float64 `json:"fill_rate"`
	MeanSlippage   float64 `json:"mean_slippage_bps"`
	MaxSlippage    float64 `json:"max_slippage_bps"`
	StdDevSlippage float64 `json:"stddev_slippage_bps"`
}

// Analytics keeps a capped per-symbol history of execution records and
// derives slippage statistics from it.
type Analytics struct {
	mu      sync.RWMutex
	cap     int
	records map[string][]Record
}

func NewAnalytics() *Analytics {
	return &Analytics{
		cap:     defaultRecordCap,
		records: make(map[string][]Record),
	}
}

// Observe appends one execution record, evicting the oldest entry for the
// symbol once the cap is reached.
func (a *Analytics) Observe(record Record) {
	a.mu.Lock()
	history := append(a.records[record.Symbol], record)
	if len(history) > a.cap {
		history = history[len(history)-a.cap:]
	}
	a.records[record.Symbol] = history
	a.mu.Unlock()

	if record.Filled {
		logger.WithFields(map[string]interface{}{
			"symbol":       record.Symbol,
			"side":         record.Side,
			"slippage_bps": SlippageBps(record.Side, record.ExpectedPrice, record.FillPrice),
		}).Debug("execution recorded")
	}
}

// StatsFor computes slippage statistics over the retained history of one
// symbol. Unfilled attempts count toward the fill rate but contribute no
// slippage samples.
func (a *Analytics) StatsFor(symbol string) Stats {
	a.mu.RLock()
	history := a.records[symbol]
	samples := make([]float64, 0, len(history))
	attempts := 0
	fills := 0
	for _, record := range history {
		attempts++
		if !record.Filled {
			continue
		}
		fills++
		samples = append(samples, SlippageBps(record.Side, record.ExpectedPrice, record.FillPrice))
	}
	a.mu.RUnlock()

	stats := Stats{Symbol: symbol, Fills: fills, Attempts: attempts}
	if attempts > 0 {
		stats.FillRate = float64(fills) / float64(attempts)
	}
	if len(samples) == 0 {
		return stats
	}

	var sum, maxBps float64
	maxBps = math.Inf(-1)
	for _, bps := range samples {
		sum += bps
		if bps > maxBps {
			maxBps = bps
		}
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, bps := range samples {
		variance += (bps - mean) * (bps - mean)
	}
	variance /= float64(len(samples))

	stats.MeanSlippage = mean
	stats.MaxSlippage = maxBps
	stats.StdDevSlippage = math.Sqrt(variance)
	return stats
}

// Symbols lists every symbol with retained history, sorted.
func (a *Analytics) Symbols() []string {
	a.mu.RLock()
	out := make([]string, 0, len(a.records))
	for symbol := range a.records {
		out = append(out, symbol)
	}
	a.mu.RUnlock()
	sort.Strings(out)
	return out
}
