package allocation

import (
	"math"
	"sort"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
)

// Level buckets a correlation estimate by strength.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// LevelFor maps an absolute correlation into a bucket.
func LevelFor(correlation float64) Level {
	abs := math.Abs(correlation)
	switch {
	case abs >= 0.9:
		return LevelCritical
	case abs >= 0.7:
		return LevelHigh
	case abs >= 0.4:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Pearson computes the correlation coefficient of two equal-length price
// series. Mismatched or too-short series yield zero.
func Pearson(a, b []float64) float64 {
	n := len(a)
	if n < 2 || n != len(b) {
		return 0
	}

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// Estimate is one cached pairwise correlation. SymbolA sorts before SymbolB.
type Estimate struct {
	SymbolA     string
	SymbolB     string
	Correlation float64
	Level       Level
	UpdatedAt   time.Time
}

// Cache is a time-bounded store of pairwise estimates. Entries past their
// TTL are ignored, so a stale provider silently means "no adjustment" —
// correlation data failing never vetoes a trade.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]Estimate
	now     func() time.Time
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]Estimate),
		now:     time.Now,
	}
}

// Put stores or refreshes an estimate for a symbol pair.
func (c *Cache) Put(symbolA, symbolB string, correlation float64) {
	if symbolA == symbolB {
		return
	}
	if symbolB < symbolA {
		symbolA, symbolB = symbolB, symbolA
	}

	estimate := Estimate{
		SymbolA:     symbolA,
		SymbolB:     symbolB,
		Correlation: correlation,
		Level:       LevelFor(correlation),
		UpdatedAt:   c.now(),
	}

	c.mu.Lock()
	c.entries[symbolA+"|"+symbolB] = estimate
	c.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"pair":        symbolA + "/" + symbolB,
		"correlation": correlation,
		"level":       estimate.Level,
	}).Debug("correlation estimate cached")
}

// CriticalPairs returns all fresh CRITICAL-level estimates, sorted by pair
// for deterministic iteration.
func (c *Cache) CriticalPairs() []Estimate {
	cutoff := c.now().Add(-c.ttl)

	c.mu.RLock()
	out := make([]Estimate, 0)
	for _, estimate := range c.entries {
		if estimate.Level != LevelCritical {
			continue
		}
		if estimate.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, estimate)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SymbolA != out[j].SymbolA {
			return out[i].SymbolA < out[j].SymbolA
		}
		return out[i].SymbolB < out[j].SymbolB
	})
	return out
}
