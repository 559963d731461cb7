package portfolio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFillAveragesEntryOnAdds(t *testing.T) {
	state := NewState(100_000)

	state.ApplyFill("AAPL", 100, 190.0, "TECH")
	state.ApplyFill("AAPL", 100, 200.0, "TECH")

	pos := state.Position("AAPL")
	assert.Equal(t, int64(200), pos.Quantity)
	assert.InDelta(t, 195.0, pos.AvgEntryPrice, 1e-9)
}

func TestApplyFillRealizesOnReduce(t *testing.T) {
	state := NewState(100_000)

	state.ApplyFill("AAPL", 100, 190.0, "TECH")
	realized := state.ApplyFill("AAPL", -40, 200.0, "TECH")

	assert.InDelta(t, 400.0, realized, 1e-9) // 40 * (200-190)

	pos := state.Position("AAPL")
	assert.Equal(t, int64(60), pos.Quantity)
	assert.InDelta(t, 190.0, pos.AvgEntryPrice, 1e-9)
}

func TestApplyFillFlatPositionHasNoEntryPrice(t *testing.T) {
	state := NewState(100_000)

	state.ApplyFill("AAPL", 100, 190.0, "TECH")
	realized := state.ApplyFill("AAPL", -100, 185.0, "TECH")

	assert.InDelta(t, -500.0, realized, 1e-9)

	pos := state.Position("AAPL")
	require.True(t, pos.Flat())
	assert.Zero(t, pos.AvgEntryPrice)
	assert.Nil(t, pos.OpenedAt)
}

func TestApplyFillFlipsThroughZero(t *testing.T) {
	state := NewState(100_000)

	state.ApplyFill("AAPL", 100, 190.0, "TECH")
	realized := state.ApplyFill("AAPL", -150, 200.0, "TECH")

	// only the closed 100 shares realize
	assert.InDelta(t, 1000.0, realized, 1e-9)

	pos := state.Position("AAPL")
	assert.Equal(t, int64(-50), pos.Quantity)
	assert.InDelta(t, 200.0, pos.AvgEntryPrice, 1e-9)
}

func TestShortPositionRealizesCorrectSign(t *testing.T) {
	state := NewState(100_000)

	state.ApplyFill("TSLA", -100, 250.0, "AUTO")
	realized := state.ApplyFill("TSLA", 100, 240.0, "AUTO")

	// short from 250 covered at 240 is a gain
	assert.InDelta(t, 1000.0, realized, 1e-9)
	assert.True(t, state.Position("TSLA").Flat())
}

func TestEquityIncludesRealizedAndUnrealized(t *testing.T) {
	state := NewState(100_000)

	state.ApplyFill("AAPL", 100, 190.0, "TECH")
	state.MarkPrice("AAPL", 195.0)

	assert.InDelta(t, 100_500.0, state.Equity(), 1e-6)
}

func TestSnapshotIsACopy(t *testing.T) {
	state := NewState(100_000)
	state.ApplyFill("AAPL", 100, 190.0, "TECH")

	snap := state.Snapshot()
	entry := snap["AAPL"]
	entry.Quantity = 999

	assert.Equal(t, int64(100), state.Position("AAPL").Quantity)
}

func TestConcurrentFillsStayConsistent(t *testing.T) {
	state := NewState(1_000_000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state.ApplyFill("AAPL", 10, 190.0, "TECH")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(500), state.Position("AAPL").Quantity)
}
