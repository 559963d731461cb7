package controller

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/connectors"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/execution"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/portfolio"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/risk"
)

type fakeBridge struct {
	calls        int
	lastOrder    connectors.OrderRequest
	response     connectors.OrderResponse
	err          error
	disconnected bool
}

func (b *fakeBridge) Connected() bool { return !b.disconnected }

func (b *fakeBridge) ExecuteWithReconnect(_ context.Context, order connectors.OrderRequest) (*connectors.OrderResponse, error) {
	return b.record(order)
}

func (b *fakeBridge) DryRunOrder(_ context.Context, order connectors.OrderRequest) (*connectors.OrderResponse, error) {
	return b.record(order)
}

func (b *fakeBridge) record(order connectors.OrderRequest) (*connectors.OrderResponse, error) {
	b.calls++
	b.lastOrder = order
	if b.err != nil {
		return nil, b.err
	}
	response := b.response
	if response.FilledQuantity == 0 {
		response.FilledQuantity = order.Quantity
	}
	return &response, nil
}

type fakeBars struct {
	bars []model.EquityBar
}

func (f *fakeBars) FetchRecentDaily(_ context.Context, _ string, _ time.Time, _ int) ([]model.EquityBar, error) {
	return f.bars, nil
}

type fixedSignal struct {
	signal model.Signal
}

func (f *fixedSignal) Name() string { return "stub" }

func (f *fixedSignal) Evaluate(symbol string, _ []model.EquityBar, tick model.MarketData) model.Signal {
	s := f.signal
	s.Symbol = symbol
	s.Price = tick.Close
	return s
}

type stubVolumes struct {
	avg float64
	ok  bool
}

func (v stubVolumes) AverageDailyVolume(context.Context, string) (float64, bool, error) {
	return v.avg, v.ok, nil
}

type stubSectors struct{}

func (stubSectors) SectorFor(string) string { return "TECHNOLOGY" }

type memTrades struct {
	rows []model.ClosedTrade
}

func (m *memTrades) Create(_ context.Context, trade *model.ClosedTrade) error {
	m.rows = append(m.rows, *trade)
	return nil
}

func newTestEngine(bridge *fakeBridge, signal model.Signal, trades *memTrades) *Engine {
	deps := Deps{
		State:     portfolio.NewState(100000),
		PnL:       portfolio.NewPnLTracker(5000, 15000, 3000),
		Limits:    risk.NewLimitsManager(risk.DefaultLimits()),
		Bridge:    bridge,
		Analytics: execution.NewAnalytics(),
		Strategy:  &fixedSignal{signal: signal},
		Bars:      &fakeBars{},
		Volumes:   stubVolumes{avg: 1_000_000, ok: true},
		Sectors:   stubSectors{},
	}
	if trades != nil {
		deps.Trades = trades
	}
	return NewEngine(Config{
		Service:           "equity-trader-test",
		MinConfidence:     0.55,
		MaxPositionWeight: 0.10,
		BarLookbackDays:   60,
	}, deps)
}

func tick(symbol string, price float64) model.MarketData {
	return model.MarketData{Symbol: symbol, Close: price, Volume: 10000, Timestamp: time.Now()}
}

func TestProcessTickEntryOpensPosition(t *testing.T) {
	bridge := &fakeBridge{response: connectors.OrderResponse{Status: "filled", AvgFillPrice: 100.05}}
	signal := model.NewSignal("stub", "", model.DirectionLong, 0.8, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))

	// equity 100000 * weight 0.10 * confidence 0.8 / price 100 = 80 shares.
	assert.Equal(t, 1, bridge.calls)
	assert.Equal(t, "BUY", bridge.lastOrder.Side)
	assert.Equal(t, int64(80), bridge.lastOrder.Quantity)

	position := engine.deps.State.Position("AAPL")
	assert.Equal(t, int64(80), position.Quantity)
	assert.InDelta(t, 100.05, position.AvgEntryPrice, 0.001)

	stats := engine.deps.Analytics.StatsFor("AAPL")
	assert.Equal(t, 1, stats.Fills)
	assert.InDelta(t, 5.0, stats.MeanSlippage, 0.001)
}

func TestProcessTickNeutralDoesNothing(t *testing.T) {
	bridge := &fakeBridge{}
	signal := model.NewSignal("stub", "", model.DirectionNeutral, 0.9, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))
	assert.Equal(t, 0, bridge.calls)
}

func TestProcessTickConfidenceFloor(t *testing.T) {
	bridge := &fakeBridge{}
	signal := model.NewSignal("stub", "", model.DirectionLong, 0.3, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))
	assert.Equal(t, 0, bridge.calls)
}

func TestProcessTickHaltedSkipsBridge(t *testing.T) {
	bridge := &fakeBridge{}
	signal := model.NewSignal("stub", "", model.DirectionLong, 0.9, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)
	engine.deps.PnL.SetManualHalt(true)

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))
	assert.Equal(t, 0, bridge.calls)
}

func TestProcessTickDisconnectedBridgeSkipsLiveOrder(t *testing.T) {
	bridge := &fakeBridge{disconnected: true}
	signal := model.NewSignal("stub", "", model.DirectionLong, 0.9, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)
	engine.config.LiveTrading = true

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))
	assert.Equal(t, 0, bridge.calls)
}

func TestProcessTickRiskGateRejectsThinSymbol(t *testing.T) {
	bridge := &fakeBridge{}
	signal := model.NewSignal("stub", "", model.DirectionLong, 0.9, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)
	engine.deps.Volumes = stubVolumes{avg: 50_000, ok: true} // below min ADV floor

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))
	assert.Equal(t, 0, bridge.calls)
}

func TestProcessTickExitRealizesAndRecordsTrade(t *testing.T) {
	bridge := &fakeBridge{response: connectors.OrderResponse{Status: "filled", AvgFillPrice: 110}}
	signal := model.NewSignal("stub", "", model.DirectionExitLong, 1.0, 0, time.Now())
	trades := &memTrades{}
	engine := newTestEngine(bridge, signal, trades)

	engine.deps.State.ApplyFill("AAPL", 100, 100, "TECHNOLOGY")

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 110)))

	assert.Equal(t, "SELL", bridge.lastOrder.Side)
	assert.Equal(t, int64(100), bridge.lastOrder.Quantity)
	assert.True(t, engine.deps.State.Position("AAPL").Flat())
	assert.InDelta(t, 1000, engine.deps.PnL.DailyPnL(), 0.001)

	require.Len(t, trades.rows, 1)
	assert.Equal(t, model.TradeSideSell, trades.rows[0].Side)
	assert.InDelta(t, 1000, trades.rows[0].Pnl, 0.001)
	assert.InDelta(t, 100, trades.rows[0].EntryPrice, 0.001)
}

func TestProcessTickExitWithoutPositionDoesNothing(t *testing.T) {
	bridge := &fakeBridge{}
	signal := model.NewSignal("stub", "", model.DirectionExitLong, 1.0, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))
	assert.Equal(t, 0, bridge.calls)
}

func TestProcessTickCapsAtMaxSharesPerTrade(t *testing.T) {
	bridge := &fakeBridge{response: connectors.OrderResponse{Status: "filled", AvgFillPrice: 1}}
	signal := model.NewSignal("stub", "", model.DirectionLong, 1.0, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)

	// equity 100000 * 0.10 / price 1 = 10000 shares, capped at 1000.
	require.NoError(t, engine.ProcessTick(context.Background(), tick("PENNY", 1)))
	assert.Equal(t, int64(1000), bridge.lastOrder.Quantity)
}

func TestProcessTickShortEntry(t *testing.T) {
	bridge := &fakeBridge{response: connectors.OrderResponse{Status: "filled", AvgFillPrice: 99.95}}
	signal := model.NewSignal("stub", "", model.DirectionShort, 0.8, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))

	assert.Equal(t, "SELL", bridge.lastOrder.Side)
	assert.Equal(t, int64(-80), engine.deps.State.Position("AAPL").Quantity)
}

func TestProcessTickUnfilledOrderCountsAgainstFillRate(t *testing.T) {
	bridge := &fakeBridge{response: connectors.OrderResponse{Status: "rejected", Message: "outside rth", FilledQuantity: 1}}
	signal := model.NewSignal("stub", "", model.DirectionLong, 0.8, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))

	assert.True(t, engine.deps.State.Position("AAPL").Flat())
	stats := engine.deps.Analytics.StatsFor("AAPL")
	assert.Equal(t, 0, stats.Fills)
	assert.Equal(t, 1, stats.Attempts)
}

func decimalBar(symbol string, close float64) model.EquityBar {
	return model.EquityBar{
		Symbol: symbol,
		Close:  decimal.NewFromFloat(close),
		High:   decimal.NewFromFloat(close),
		Low:    decimal.NewFromFloat(close),
		Volume: decimal.NewFromInt(1_000_000),
	}
}

func TestProcessTickPassesBarsToStrategy(t *testing.T) {
	bridge := &fakeBridge{response: connectors.OrderResponse{Status: "filled", AvgFillPrice: 100}}
	signal := model.NewSignal("stub", "", model.DirectionLong, 0.8, 0, time.Now())
	engine := newTestEngine(bridge, signal, nil)
	engine.deps.Bars = &fakeBars{bars: []model.EquityBar{decimalBar("AAPL", 99), decimalBar("AAPL", 100)}}

	require.NoError(t, engine.ProcessTick(context.Background(), tick("AAPL", 100)))
	assert.Equal(t, 1, bridge.calls)
}
