package strategy

import (
	"fmt"
	"math"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// MeanReversion fades moves beyond a z-score threshold against a rolling
// mean, and signals an exit once price reverts through the mean.
type MeanReversion struct {
	window    int
	threshold float64
}

func NewMeanReversion(window int, threshold float64) *MeanReversion {
	return &MeanReversion{window: window, threshold: threshold}
}

func (m *MeanReversion) Name() string {
	return "meanreversion"
}

func (m *MeanReversion) Evaluate(symbol string, bars []model.EquityBar, tick model.MarketData) model.Signal {
	prices := closes(bars)
	if len(prices) < m.window || tick.Close <= 0 {
		return model.NewSignal(m.Name(), symbol, model.DirectionNeutral, 0, tick.Close, tick.Timestamp)
	}

	window := prices[len(prices)-m.window:]
	avg := mean(window)

	var variance float64
	for _, price := range window {
		variance += (price - avg) * (price - avg)
	}
	stddev := math.Sqrt(variance / float64(len(window)))
	if stddev == 0 {
		return model.NewSignal(m.Name(), symbol, model.DirectionNeutral, 0, tick.Close, tick.Timestamp)
	}

	z := (tick.Close - avg) / stddev
	confidence := math.Min(math.Abs(z)/(m.threshold*2), 1)

	direction := model.DirectionNeutral
	switch {
	case z <= -m.threshold:
		direction = model.DirectionLong
	case z >= m.threshold:
		direction = model.DirectionShort
	case math.Abs(z) < 0.25:
		// Price is back at the mean; any open fade should come off.
		direction = model.DirectionExitLong
		confidence = 1 - math.Abs(z)
	}

	return model.NewSignal(m.Name(), symbol, direction, confidence, tick.Close, tick.Timestamp).
		WithRationale(fmt.Sprintf("z-score %.2f against %.2f threshold", z, m.threshold))
}
