package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

func barsFromCloses(prices ...float64) []model.EquityBar {
	bars := make([]model.EquityBar, len(prices))
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, price := range prices {
		bars[i] = model.EquityBar{
			Symbol:   "AAPL",
			Datetime: day.AddDate(0, 0, i),
			Open:     decimal.NewFromFloat(price),
			High:     decimal.NewFromFloat(price * 1.01),
			Low:      decimal.NewFromFloat(price * 0.99),
			Close:    decimal.NewFromFloat(price),
			Volume:   decimal.NewFromInt(1_000_000),
		}
	}
	return bars
}

func flatBars(price float64, count int) []model.EquityBar {
	prices := make([]float64, count)
	for i := range prices {
		prices[i] = price
	}
	return barsFromCloses(prices...)
}

func tickAt(price float64) model.MarketData {
	return model.MarketData{Symbol: "AAPL", Close: price, Timestamp: time.Now()}
}

func TestRegistryHasBuiltins(t *testing.T) {
	assert.Equal(t, []string{"breakout", "meanreversion", "momentum"}, Names())
}

func TestLookupUnknownStrategy(t *testing.T) {
	_, err := Lookup("nope")
	require.Error(t, err)
}

func TestMomentumSignalsLongOnRisingPrices(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	s := NewMomentum(10, 30)

	signal := s.Evaluate("AAPL", barsFromCloses(prices...), tickAt(141))
	assert.Equal(t, model.DirectionLong, signal.Direction)
	assert.Greater(t, signal.Confidence, 0.0)
}

func TestMomentumSignalsShortOnFallingPrices(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	s := NewMomentum(10, 30)

	signal := s.Evaluate("AAPL", barsFromCloses(prices...), tickAt(159))
	assert.Equal(t, model.DirectionShort, signal.Direction)
}

func TestMomentumNeutralWithoutEnoughBars(t *testing.T) {
	s := NewMomentum(10, 30)
	signal := s.Evaluate("AAPL", barsFromCloses(100, 101), tickAt(102))
	assert.Equal(t, model.DirectionNeutral, signal.Direction)
	assert.Equal(t, 0.0, signal.Confidence)
}

func TestMeanReversionFadesExtremes(t *testing.T) {
	s := NewMeanReversion(20, 2.0)
	bars := barsFromCloses(
		100, 101, 99, 100, 102, 98, 100, 101, 99, 100,
		100, 101, 99, 100, 102, 98, 100, 101, 99, 100,
	)

	long := s.Evaluate("AAPL", bars, tickAt(90))
	assert.Equal(t, model.DirectionLong, long.Direction)

	short := s.Evaluate("AAPL", bars, tickAt(110))
	assert.Equal(t, model.DirectionShort, short.Direction)
}

func TestMeanReversionExitsNearMean(t *testing.T) {
	s := NewMeanReversion(20, 2.0)
	bars := barsFromCloses(
		100, 101, 99, 100, 102, 98, 100, 101, 99, 100,
		100, 101, 99, 100, 102, 98, 100, 101, 99, 100,
	)

	signal := s.Evaluate("AAPL", bars, tickAt(100.05))
	assert.Equal(t, model.DirectionExitLong, signal.Direction)
}

func TestMeanReversionNeutralOnFlatSeries(t *testing.T) {
	s := NewMeanReversion(20, 2.0)
	signal := s.Evaluate("AAPL", flatBars(100, 20), tickAt(100))
	assert.Equal(t, model.DirectionNeutral, signal.Direction)
}

func TestBreakoutAboveWindowHigh(t *testing.T) {
	s := NewBreakout(20)
	signal := s.Evaluate("AAPL", flatBars(100, 20), tickAt(105))
	assert.Equal(t, model.DirectionLong, signal.Direction)
	assert.Greater(t, signal.Confidence, 0.0)
}

func TestBreakoutBelowWindowLow(t *testing.T) {
	s := NewBreakout(20)
	signal := s.Evaluate("AAPL", flatBars(100, 20), tickAt(95))
	assert.Equal(t, model.DirectionShort, signal.Direction)
}

func TestBreakoutInsideRangeIsNeutral(t *testing.T) {
	s := NewBreakout(20)
	signal := s.Evaluate("AAPL", flatBars(100, 20), tickAt(100))
	assert.Equal(t, model.DirectionNeutral, signal.Direction)
}

func TestSignalConfidenceClamped(t *testing.T) {
	signal := model.NewSignal("momentum", "AAPL", model.DirectionLong, 3.2, 100, time.Now())
	assert.Equal(t, 1.0, signal.Confidence)

	signal = model.NewSignal("momentum", "AAPL", model.DirectionLong, -0.5, 100, time.Now())
	assert.Equal(t, 0.0, signal.Confidence)
}
