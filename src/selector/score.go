package selector

import (
	"math"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// drawdownFloorPct keeps a near-zero drawdown from exploding the score.
const drawdownFloorPct = 0.5

// Score ranks a performance snapshot. Return, sharpe and win rate push the
// score up, drawdown divides it down. A candidate with non-positive return
// or sharpe scores zero so it can never displace a working strategy.
func Score(perf model.StrategyPerformance) float64 {
	if perf.TotalReturnPct <= 0 || perf.SharpeRatio <= 0 {
		return 0
	}

	drawdown := math.Abs(perf.MaxDrawdownPct)
	if drawdown < drawdownFloorPct {
		drawdown = drawdownFloorPct
	}

	return perf.TotalReturnPct * perf.SharpeRatio * (perf.WinRate * 100) / drawdown
}
