package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// Strategy turns recent bars and the live tick into a trade signal.
// Implementations must be stateless with respect to the portfolio; the
// engine decides what a signal means against the current book.
type Strategy interface {
	Name() string
	Evaluate(symbol string, bars []model.EquityBar, tick model.MarketData) model.Signal
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Strategy{}
)

// Register adds a strategy under its name. Re-registering a name replaces
// the previous entry.
func Register(s Strategy) {
	registryMu.Lock()
	registry[s.Name()] = s
	registryMu.Unlock()
}

// Lookup fetches a registered strategy by name.
func Lookup(name string) (Strategy, error) {
	registryMu.RLock()
	s, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("strategy %q not registered", name)
	}
	return s, nil
}

// Names lists the registered strategies, sorted.
func Names() []string {
	registryMu.RLock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	registryMu.RUnlock()
	sort.Strings(out)
	return out
}

func init() {
	Register(NewMomentum(10, 30))
	Register(NewMeanReversion(20, 2.0))
	Register(NewBreakout(20))
}

// closes extracts float closing prices in bar order.
func closes(bars []model.EquityBar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		out[i], _ = bar.Close.Float64()
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
