package portfolio

import (
	"math"
	"sync/atomic"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// atomicFloat is a float64 updated with compare-and-swap on its bit pattern.
// The P&L counters are touched on every realized fill across all symbol
// workers, so they avoid a shared mutex.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *atomicFloat) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		next := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// RatchetUp raises the stored value to v if v is greater, and returns the
// resulting maximum.
func (f *atomicFloat) RatchetUp(v float64) float64 {
	for {
		old := f.bits.Load()
		cur := math.Float64frombits(old)
		if v <= cur {
			return cur
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return v
		}
	}
}

// PnLTracker accumulates realized P&L against the daily, weekly and
// intraday-drawdown circuit breakers. Breach flags latch once crossed and
// stay set until the matching calendar reset; they act as a kill switch
// above per-trade risk, consulted before the risk gate runs at all.
type PnLTracker struct {
	daily        atomicFloat
	weekly       atomicFloat
	intradayPeak atomicFloat

	dailyLimit    atomicFloat
	weeklyLimit   atomicFloat
	intradayLimit atomicFloat

	dailyBreached    atomic.Bool
	weeklyBreached   atomic.Bool
	intradayBreached atomic.Bool
	manualHalt       atomic.Bool
}

// NewPnLTracker builds a tracker with the given loss limits. A limit of 0
// disables the corresponding breaker.
func NewPnLTracker(dailyLimit, weeklyLimit, intradayLimit float64) *PnLTracker {
	t := &PnLTracker{}
	t.dailyLimit.Store(dailyLimit)
	t.weeklyLimit.Store(weeklyLimit)
	t.intradayLimit.Store(intradayLimit)
	return t
}

// UpdateLimits applies hot-reloaded limits; they take effect on the next
// RecordPnL call.
func (t *PnLTracker) UpdateLimits(dailyLimit, weeklyLimit, intradayLimit float64) {
	t.dailyLimit.Store(dailyLimit)
	t.weeklyLimit.Store(weeklyLimit)
	t.intradayLimit.Store(intradayLimit)
}

// RecordPnL accumulates one realized P&L event into every counter, ratchets
// the intraday peak and latches any breached breaker.
func (t *PnLTracker) RecordPnL(realized float64) {
	daily := t.daily.Add(realized)
	weekly := t.weekly.Add(realized)
	peak := t.intradayPeak.RatchetUp(daily)

	drawdown := peak - daily
	if drawdown < 0 {
		drawdown = 0
	}

	if limit := t.dailyLimit.Load(); limit > 0 && daily <= -limit && !t.dailyBreached.Swap(true) {
		logger.WithFields(map[string]interface{}{
			"daily_pnl": daily,
			"limit":     limit,
		}).Error("daily loss limit breached, halting new entries")
	}
	if limit := t.weeklyLimit.Load(); limit > 0 && weekly <= -limit && !t.weeklyBreached.Swap(true) {
		logger.WithFields(map[string]interface{}{
			"weekly_pnl": weekly,
			"limit":      limit,
		}).Error("weekly loss limit breached, halting new entries")
	}
	if limit := t.intradayLimit.Load(); limit > 0 && drawdown >= limit && !t.intradayBreached.Swap(true) {
		logger.WithFields(map[string]interface{}{
			"drawdown": drawdown,
			"peak":     peak,
			"limit":    limit,
		}).Error("intraday drawdown limit breached, halting new entries")
	}
}

// TradingHalted reports whether any breaker has latched or a manual
// emergency stop is active. Checked immediately before order submission.
func (t *PnLTracker) TradingHalted() bool {
	return t.dailyBreached.Load() ||
		t.weeklyBreached.Load() ||
		t.intradayBreached.Load() ||
		t.manualHalt.Load()
}

// HaltReason names the first active halt cause, or "" when trading is live.
func (t *PnLTracker) HaltReason() string {
	switch {
	case t.manualHalt.Load():
		return "manual_stop"
	case t.weeklyBreached.Load():
		return "weekly_loss_limit"
	case t.dailyBreached.Load():
		return "daily_loss_limit"
	case t.intradayBreached.Load():
		return "intraday_drawdown_limit"
	default:
		return ""
	}
}

// SetManualHalt toggles the operator emergency stop.
func (t *PnLTracker) SetManualHalt(on bool) {
	t.manualHalt.Store(on)
}

// ResetDaily clears the daily counter, the intraday peak and their breach
// flags at session start. The weekly breaker survives.
func (t *PnLTracker) ResetDaily() {
	t.daily.Store(0)
	t.intradayPeak.Store(0)
	t.dailyBreached.Store(false)
	t.intradayBreached.Store(false)
	logger.Info("daily pnl counters reset")
}

// ResetWeekly clears the weekly counter and its breach flag on Monday.
func (t *PnLTracker) ResetWeekly() {
	t.weekly.Store(0)
	t.weeklyBreached.Store(false)
	logger.Info("weekly pnl counter reset")
}

// DailyPnL returns the accumulated realized P&L for the session.
func (t *PnLTracker) DailyPnL() float64 { return t.daily.Load() }

// WeeklyPnL returns the accumulated realized P&L for the week.
func (t *PnLTracker) WeeklyPnL() float64 { return t.weekly.Load() }

// IntradayDrawdown returns max(0, peak - current) for the session.
func (t *PnLTracker) IntradayDrawdown() float64 {
	dd := t.intradayPeak.Load() - t.daily.Load()
	if dd < 0 {
		return 0
	}
	return dd
}

// SnapshotForPersist captures the counters for storage.
func (t *PnLTracker) SnapshotForPersist(sessionDate, weekStart time.Time) *model.PnlCounter {
	return &model.PnlCounter{
		DailyPnl:        t.daily.Load(),
		WeeklyPnl:       t.weekly.Load(),
		IntradayPeakPnl: t.intradayPeak.Load(),
		SessionDate:     sessionDate,
		WeekStart:       weekStart,
	}
}

// RestoreFromPersist seeds the counters after a restart. Breach flags are
// re-derived from the restored values on the next RecordPnL; a restart
// during an already-breached day re-latches on the first event.
func (t *PnLTracker) RestoreFromPersist(counter *model.PnlCounter) {
	if counter == nil {
		return
	}
	t.daily.Store(counter.DailyPnl)
	t.weekly.Store(counter.WeeklyPnl)
	t.intradayPeak.Store(counter.IntradayPeakPnl)
	// re-evaluate the breakers against the restored values
	t.RecordPnL(0)

	logger.WithFields(map[string]interface{}{
		"daily_pnl":  counter.DailyPnl,
		"weekly_pnl": counter.WeeklyPnl,
	}).Info("pnl counters restored from storage")
}
