package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

func actionFor(t *testing.T, plan Plan, symbol string) Action {
	t.Helper()
	for _, action := range plan.Actions {
		if action.Symbol == symbol {
			return action
		}
	}
	t.Fatalf("no action for %s in plan", symbol)
	return Action{}
}

func TestBuildAllocationPlanSizesFromWeights(t *testing.T) {
	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.5, "MSFT": 0.3},
		map[string]model.Position{},
		map[string]float64{"AAPL": 200, "MSFT": 400},
		nil,
		0,
	)

	require.Len(t, plan.Actions, 2)
	assert.Equal(t, int64(250), actionFor(t, plan, "AAPL").Quantity)
	assert.Equal(t, int64(75), actionFor(t, plan, "MSFT").Quantity)
}

func TestBuildAllocationPlanScalesDownOverweight(t *testing.T) {
	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.8, "MSFT": 0.8},
		map[string]model.Position{},
		map[string]float64{"AAPL": 100, "MSFT": 100},
		nil,
		0,
	)

	// 0.8/1.6 = 0.5 each after scaling.
	assert.Equal(t, int64(500), actionFor(t, plan, "AAPL").Quantity)
	assert.Equal(t, int64(500), actionFor(t, plan, "MSFT").Quantity)
	assert.NotEmpty(t, plan.Warnings)
}

func TestBuildAllocationPlanWeightSumNeverExceedsOne(t *testing.T) {
	cases := []map[string]float64{
		{"A": 0.5, "B": 0.5},
		{"A": 1.2, "B": 0.9, "C": 0.4},
		{"A": 0.33, "B": 0.33, "C": 0.33, "D": 0.33},
		{"A": 5.0},
	}

	for _, weights := range cases {
		prices := map[string]float64{}
		for symbol := range weights {
			prices[symbol] = 100
		}
		plan := BuildAllocationPlan(100000, weights, map[string]model.Position{}, prices, nil, 0)

		var sum float64
		for _, action := range plan.Actions {
			sum += action.TargetWeight
		}
		assert.LessOrEqual(t, sum, 1.0+1e-9)
	}
}

func TestBuildAllocationPlanDropsNonPositiveWeights(t *testing.T) {
	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.5, "MSFT": -0.2, "TSLA": 0},
		map[string]model.Position{},
		map[string]float64{"AAPL": 100, "MSFT": 100, "TSLA": 100},
		nil,
		0,
	)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "AAPL", plan.Actions[0].Symbol)
}

func TestBuildAllocationPlanEmptyWhenWeightsVanish(t *testing.T) {
	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0, "MSFT": -1},
		map[string]model.Position{},
		map[string]float64{"AAPL": 100},
		nil,
		0,
	)

	assert.Empty(t, plan.Actions)
	assert.NotEmpty(t, plan.Warnings)
}

func TestBuildAllocationPlanDeltasAgainstCurrentBook(t *testing.T) {
	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.5},
		map[string]model.Position{"AAPL": {Symbol: "AAPL", Quantity: 400}},
		map[string]float64{"AAPL": 100},
		nil,
		0,
	)

	// Target 500 shares, hold 400 already.
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, int64(100), plan.Actions[0].Quantity)
}

func TestBuildAllocationPlanSellsDownToTarget(t *testing.T) {
	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.1},
		map[string]model.Position{"AAPL": {Symbol: "AAPL", Quantity: 400}},
		map[string]float64{"AAPL": 100},
		nil,
		0,
	)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, int64(-300), plan.Actions[0].Quantity)
}

func TestBuildAllocationPlanCapsPerTradeDelta(t *testing.T) {
	plan := BuildAllocationPlan(
		1000000,
		map[string]float64{"AAPL": 0.5},
		map[string]model.Position{},
		map[string]float64{"AAPL": 100},
		nil,
		1000,
	)

	require.Len(t, plan.Actions, 1)
	action := plan.Actions[0]
	assert.Equal(t, int64(1000), action.Quantity)
	assert.True(t, action.Capped)
	assert.NotEmpty(t, plan.Warnings)
}

func TestBuildAllocationPlanSkipsMissingPrice(t *testing.T) {
	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.5, "MSFT": 0.5},
		map[string]model.Position{},
		map[string]float64{"AAPL": 100},
		nil,
		0,
	)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "AAPL", plan.Actions[0].Symbol)
	assert.NotEmpty(t, plan.Warnings)
}

func TestCorrelationAdjustmentReducesSmallerLeg(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Put("AAPL", "MSFT", 0.95)

	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.4, "MSFT": 0.3},
		map[string]model.Position{},
		map[string]float64{"AAPL": 100, "MSFT": 100},
		cache,
		0,
	)

	// MSFT weight shrinks 0.3 -> 0.27, AAPL untouched.
	assert.Equal(t, int64(400), actionFor(t, plan, "AAPL").Quantity)
	assert.Equal(t, int64(270), actionFor(t, plan, "MSFT").Quantity)
}

func TestCorrelationAdjustmentTieBreaksLexically(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Put("MSFT", "AAPL", 0.92)

	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.3, "MSFT": 0.3},
		map[string]model.Position{},
		map[string]float64{"AAPL": 100, "MSFT": 100},
		cache,
		0,
	)

	// Equal weights: the lexically-later MSFT gives way.
	assert.Equal(t, int64(300), actionFor(t, plan, "AAPL").Quantity)
	assert.Equal(t, int64(270), actionFor(t, plan, "MSFT").Quantity)
}

func TestCorrelationAdjustmentIgnoresStaleEstimates(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.now = func() time.Time { return time.Now().Add(-time.Hour) }
	cache.Put("AAPL", "MSFT", 0.95)
	cache.now = time.Now

	plan := BuildAllocationPlan(
		100000,
		map[string]float64{"AAPL": 0.3, "MSFT": 0.3},
		map[string]model.Position{},
		map[string]float64{"AAPL": 100, "MSFT": 100},
		cache,
		0,
	)

	assert.Equal(t, int64(300), actionFor(t, plan, "MSFT").Quantity)
}

func TestLevelForBuckets(t *testing.T) {
	assert.Equal(t, LevelCritical, LevelFor(0.95))
	assert.Equal(t, LevelCritical, LevelFor(-0.91))
	assert.Equal(t, LevelHigh, LevelFor(0.75))
	assert.Equal(t, LevelMedium, LevelFor(0.5))
	assert.Equal(t, LevelLow, LevelFor(0.1))
}
