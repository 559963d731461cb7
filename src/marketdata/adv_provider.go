package marketdata

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/repository"
)

// ADVProvider serves trailing average daily volume from stored equity bars,
// with a small TTL cache in front so the risk gate does not hit the
// database on every tick.
type ADVProvider struct {
	bars     *repository.BarRepository
	lookback int
	ttl      time.Duration

	mu    sync.RWMutex
	cache map[string]advEntry
	now   func() time.Time
}

type advEntry struct {
	avg       float64
	ok        bool
	refreshed time.Time
}

func NewADVProvider(bars *repository.BarRepository, config Config) *ADVProvider {
	return &ADVProvider{
		bars:     bars,
		lookback: config.ADVLookbackDays,
		ttl:      time.Duration(config.ADVCacheTTLMinutes) * time.Minute,
		cache:    make(map[string]advEntry),
		now:      time.Now,
	}
}

// AverageDailyVolume returns the trailing average volume for a symbol.
// ok=false means no bar data exists; errors come from the store only.
// Cached values, including negative results, are reused within the TTL.
func (p *ADVProvider) AverageDailyVolume(ctx context.Context, symbol string) (float64, bool, error) {
	p.mu.RLock()
	entry, cached := p.cache[symbol]
	p.mu.RUnlock()

	if cached && p.now().Sub(entry.refreshed) < p.ttl {
		return entry.avg, entry.ok, nil
	}

	avg, ok, err := p.bars.AverageDailyVolume(ctx, symbol, p.now(), p.lookback)
	if err != nil {
		logger.WithError(err).WithField("symbol", symbol).Warn("ADV lookup failed")
		return 0, false, err
	}

	value, _ := avg.Float64()
	p.mu.Lock()
	p.cache[symbol] = advEntry{avg: value, ok: ok, refreshed: p.now()}
	p.mu.Unlock()

	return value, ok, nil
}
