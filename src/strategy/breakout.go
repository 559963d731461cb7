package strategy

import (
	"fmt"
	"math"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

// Breakout goes with the move when price clears the rolling window high or
// low from the prior bars.
type Breakout struct {
	window int
}

func NewBreakout(window int) *Breakout {
	return &Breakout{window: window}
}

func (b *Breakout) Name() string {
	return "breakout"
}

func (b *Breakout) Evaluate(symbol string, bars []model.EquityBar, tick model.MarketData) model.Signal {
	if len(bars) < b.window || tick.Close <= 0 {
		return model.NewSignal(b.Name(), symbol, model.DirectionNeutral, 0, tick.Close, tick.Timestamp)
	}

	window := bars[len(bars)-b.window:]
	highest := math.Inf(-1)
	lowest := math.Inf(1)
	for _, bar := range window {
		high, _ := bar.High.Float64()
		low, _ := bar.Low.Float64()
		if high > highest {
			highest = high
		}
		if low < lowest {
			lowest = low
		}
	}

	direction := model.DirectionNeutral
	confidence := 0.0
	switch {
	case tick.Close > highest:
		direction = model.DirectionLong
		confidence = math.Min((tick.Close-highest)/highest*100, 1)
	case tick.Close < lowest:
		direction = model.DirectionShort
		confidence = math.Min((lowest-tick.Close)/lowest*100, 1)
	}

	return model.NewSignal(b.Name(), symbol, direction, confidence, tick.Close, tick.Timestamp).
		WithRationale(fmt.Sprintf("close %.2f vs window high %.2f low %.2f", tick.Close, highest, lowest))
}
