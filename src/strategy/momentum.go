package strategy

import (
	"fmt"
	"math"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// Momentum signals on a fast/slow moving average crossover. Confidence
// scales with the relative gap between the two averages.
type Momentum struct {
	fast int
	slow int
}

func NewMomentum(fast, slow int) *Momentum {
	if fast >= slow {
		fast, slow = slow, fast
	}
	return &Momentum{fast: fast, slow: slow}
}

func (m *Momentum) Name() string {
	return "momentum"
}

func (m *Momentum) Evaluate(symbol string, bars []model.EquityBar, tick model.MarketData) model.Signal {
	prices := closes(bars)
	if tick.Close > 0 {
		prices = append(prices, tick.Close)
	}
	if len(prices) < m.slow {
		return model.NewSignal(m.Name(), symbol, model.DirectionNeutral, 0, tick.Close, tick.Timestamp)
	}

	fastAvg := mean(prices[len(prices)-m.fast:])
	slowAvg := mean(prices[len(prices)-m.slow:])
	if slowAvg == 0 {
		return model.NewSignal(m.Name(), symbol, model.DirectionNeutral, 0, tick.Close, tick.Timestamp)
	}

	gap := (fastAvg - slowAvg) / slowAvg
	confidence := math.Min(math.Abs(gap)*50, 1)

	direction := model.DirectionNeutral
	switch {
	case gap > 0.001:
		direction = model.DirectionLong
	case gap < -0.001:
		direction = model.DirectionShort
	}

	return model.NewSignal(m.Name(), symbol, direction, confidence, tick.Close, tick.Timestamp).
		WithRationale(fmt.Sprintf("fast SMA %.2f vs slow SMA %.2f", fastAvg, slowAvg))
}
