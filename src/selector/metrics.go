package selector

import (
	"math"
	"sort"
	"time"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// ComputePerformance folds a window of closed trades into one snapshot for
// a strategy/symbol combination. Trades are evaluated in close order; the
// drawdown runs over the cumulative equity curve those trades produce.
func ComputePerformance(
	strategyName, symbol, mode string,
	trades []model.ClosedTrade,
	startingEquity float64,
	windowStart, windowEnd time.Time,
) model.StrategyPerformance {

	perf := model.StrategyPerformance{
		StrategyName: strategyName,
		Symbol:       symbol,
		Mode:         mode,
		TotalTrades:  len(trades),
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
	}
	if len(trades) == 0 || startingEquity <= 0 {
		return perf
	}

	ordered := make([]model.ClosedTrade, len(trades))
	copy(ordered, trades)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ClosedAt.Before(ordered[j].ClosedAt)
	})

	wins := 0
	equity := startingEquity
	peak := startingEquity
	maxDrawdownPct := 0.0
	returns := make([]float64, 0, len(ordered))

	for _, trade := range ordered {
		if trade.Pnl > 0 {
			wins++
		}
		returns = append(returns, trade.Pnl/equity)

		equity += trade.Pnl
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			drawdown := (peak - equity) / peak * 100
			if drawdown > maxDrawdownPct {
				maxDrawdownPct = drawdown
			}
		}
	}

	perf.WinRate = float64(wins) / float64(len(ordered))
	perf.TotalReturnPct = (equity - startingEquity) / startingEquity * 100
	perf.MaxDrawdownPct = maxDrawdownPct
	perf.SharpeRatio = sharpe(returns)
	return perf
}

// sharpe computes the per-trade sharpe ratio of a return series. Zero
// variance yields zero rather than a division blowup.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	if variance == 0 {
		return 0
	}

	return mean / math.Sqrt(variance)
}
