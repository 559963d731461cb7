package risk

import (
	"fmt"
	"sync/atomic"

	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// Limits is the read-only risk configuration consulted per evaluation.
// Zero disables the corresponding check.
type Limits struct {
	MaxSharesPerTrade      int64
	DailyLossLimit         float64
	WeeklyLossLimit        float64
	IntradayLossLimit      float64
	MaxSectorExposurePct   float64 // fraction of equity
	MaxADVParticipationPct float64 // fraction of average daily volume
	MinAverageDailyVolume  float64
}

// DefaultLimits are the settings used until the first persisted row loads.
func DefaultLimits() Limits {
	return Limits{
		MaxSharesPerTrade:      1000,
		DailyLossLimit:         5000,
		WeeklyLossLimit:        15000,
		IntradayLossLimit:      3000,
		MaxSectorExposurePct:   0.20,
		MaxADVParticipationPct: 0.05,
		MinAverageDailyVolume:  100000,
	}
}

// Validate rejects configurations that would make the gate misbehave.
func (l Limits) Validate() error {
	if l.MaxSharesPerTrade < 0 {
		return fmt.Errorf("max_shares_per_trade must be >= 0, got %d", l.MaxSharesPerTrade)
	}
	if l.DailyLossLimit < 0 || l.WeeklyLossLimit < 0 || l.IntradayLossLimit < 0 {
		return fmt.Errorf("loss limits must be >= 0")
	}
	if l.MaxSectorExposurePct < 0 || l.MaxSectorExposurePct > 1 {
		return fmt.Errorf("max_sector_exposure_pct must be in [0,1], got %f", l.MaxSectorExposurePct)
	}
	if l.MaxADVParticipationPct < 0 || l.MaxADVParticipationPct > 1 {
		return fmt.Errorf("max_adv_participation_pct must be in [0,1], got %f", l.MaxADVParticipationPct)
	}
	if l.MinAverageDailyVolume < 0 {
		return fmt.Errorf("min_average_daily_volume must be >= 0, got %f", l.MinAverageDailyVolume)
	}
	return nil
}

// FromSettings converts a persisted row into an immutable snapshot.
func FromSettings(settings *model.RiskSettings) Limits {
	return Limits{
		MaxSharesPerTrade:      settings.MaxSharesPerTrade,
		DailyLossLimit:         settings.DailyLossLimit,
		WeeklyLossLimit:        settings.WeeklyLossLimit,
		IntradayLossLimit:      settings.IntradayLossLimit,
		MaxSectorExposurePct:   settings.MaxSectorExposurePct,
		MaxADVParticipationPct: settings.MaxADVParticipationPct,
		MinAverageDailyVolume:  settings.MinAverageDailyVolume,
	}
}

// LimitsManager hands out the current limits snapshot lock-free and applies
// validated hot reloads. A malformed update is rejected and the last known
// good configuration stays in place.
type LimitsManager struct {
	current atomic.Pointer[Limits]
}

// NewLimitsManager starts with the given limits.
func NewLimitsManager(initial Limits) *LimitsManager {
	m := &LimitsManager{}
	m.current.Store(&initial)
	return m
}

// Current returns the active snapshot. Safe for concurrent evaluators.
func (m *LimitsManager) Current() Limits {
	return *m.current.Load()
}

// Update validates and swaps in new limits; they take effect on the next
// evaluation, never mid-flight.
func (m *LimitsManager) Update(limits Limits) error {
	if err := limits.Validate(); err != nil {
		logger.WithError(err).Error("rejected risk limits update")
		return fmt.Errorf("invalid risk limits: %w", err)
	}

	m.current.Store(&limits)
	logger.WithFields(map[string]interface{}{
		"max_shares_per_trade":      limits.MaxSharesPerTrade,
		"daily_loss_limit":          limits.DailyLossLimit,
		"weekly_loss_limit":         limits.WeeklyLossLimit,
		"max_sector_exposure_pct":   limits.MaxSectorExposurePct,
		"max_adv_participation_pct": limits.MaxADVParticipationPct,
	}).Info("risk limits updated")

	return nil
}
