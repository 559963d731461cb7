package controller

import (
	"context"
	"math"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/connectors"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/execution"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/portfolio"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/risk"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/strategy"
)

// Bridge is the slice of the bridge client the engine needs.
type Bridge interface {
	Connected() bool
	ExecuteWithReconnect(ctx context.Context, order connectors.OrderRequest) (*connectors.OrderResponse, error)
	DryRunOrder(ctx context.Context, order connectors.OrderRequest) (*connectors.OrderResponse, error)
}

// BarSource serves recent daily bars for signal evaluation.
type BarSource interface {
	FetchRecentDaily(ctx context.Context, symbol string, now time.Time, days int) ([]model.EquityBar, error)
}

// PositionStore persists position rows after fills.
type PositionStore interface {
	Upsert(ctx context.Context, position *model.Position) error
}

// TradeStore persists completed round trips.
type TradeStore interface {
	Create(ctx context.Context, trade *model.ClosedTrade) error
}

// OrderStore persists bridge order intents and outcomes.
type OrderStore interface {
	Create(ctx context.Context, order *model.BridgeOrder) error
	MarkFilled(ctx context.Context, orderID uint, fillPrice float64, filledQty int64) error
	UpdateStatus(ctx context.Context, orderID uint, status, reason string) error
}

// ExceptionStore persists captured exceptions.
type ExceptionStore interface {
	Create(ctx context.Context, exc *model.Exception) error
}

// Deps wires the engine's collaborators. Stores may be nil in backtests;
// persistence is then skipped.
type Deps struct {
	State      *portfolio.State
	PnL        *portfolio.PnLTracker
	Limits     *risk.LimitsManager
	Bridge     Bridge
	Analytics  *execution.Analytics
	Strategy   strategy.Strategy
	Bars       BarSource
	Volumes    risk.VolumeProvider
	Sectors    risk.SectorProvider
	Positions  PositionStore
	Trades     TradeStore
	Orders     OrderStore
	Exceptions ExceptionStore
}

// Engine runs the per-tick trading pipeline: mark the book, ask the active
// strategy for a signal, size it, pass it through the risk gate, submit it
// to the bridge, and fold the fill back into portfolio state and P&L.
type Engine struct {
	config Config
	deps   Deps
	now    func() time.Time
}

func NewEngine(config Config, deps Deps) *Engine {
	return &Engine{config: config, deps: deps, now: time.Now}
}

// ProcessTick handles one market data tick for one symbol. Errors are
// captured and returned; the caller decides whether to keep looping.
func (e *Engine) ProcessTick(ctx context.Context, tick model.MarketData) error {
	e.deps.State.MarkPrice(tick.Symbol, tick.Close)

	if e.deps.PnL.TradingHalted() {
		logger.WithFields(map[string]interface{}{
			"symbol": tick.Symbol,
			"reason": e.deps.PnL.HaltReason(),
		}).Warn("Trading halted, tick skipped")
		return nil
	}

	bars, err := e.deps.Bars.FetchRecentDaily(ctx, tick.Symbol, e.now(), e.config.BarLookbackDays)
	if err != nil {
		Capture(ctx, e.deps.Exceptions, e.config.Service, "engine", "ProcessTick", "error", err,
			map[string]interface{}{"symbol": tick.Symbol, "stage": "fetch_bars"})
		return err
	}

	signal := e.deps.Strategy.Evaluate(tick.Symbol, bars, tick)
	if signal.Direction == model.DirectionNeutral {
		return nil
	}
	if signal.IsEntry() && signal.Confidence < e.config.MinConfidence {
		logger.WithFields(map[string]interface{}{
			"symbol":     tick.Symbol,
			"strategy":   signal.Strategy,
			"direction":  signal.Direction,
			"confidence": signal.Confidence,
		}).Debug("Signal below confidence floor, ignored")
		return nil
	}

	delta := e.sizeSignal(signal, tick)
	if delta == 0 {
		return nil
	}

	logger.WithFields(map[string]interface{}{
		"symbol":     tick.Symbol,
		"strategy":   signal.Strategy,
		"direction":  signal.Direction,
		"confidence": signal.Confidence,
		"rationale":  signal.Rationale,
		"delta":      delta,
	}).Info("Signal sized")

	limits := e.deps.Limits.Current()
	if signal.IsEntry() {
		result := risk.EvaluatePreTradeRisk(
			ctx,
			tick.Symbol,
			absInt64(delta),
			tick.Close,
			limits,
			e.deps.State.Snapshot(),
			e.deps.State.LastPrices(),
			e.deps.State.Equity(),
			e.deps.Volumes,
			e.deps.Sectors,
		)
		if !result.Allowed {
			logger.WithFields(map[string]interface{}{
				"symbol": tick.Symbol,
				"code":   result.Code,
				"reason": result.Reason,
			}).Info("Order rejected by risk gate")
			return nil
		}
		delta = sign64(delta) * result.AdjustedQty
	}

	if limits.MaxSharesPerTrade > 0 && absInt64(delta) > limits.MaxSharesPerTrade {
		delta = sign64(delta) * limits.MaxSharesPerTrade
	}
	if delta == 0 {
		return nil
	}

	// A breach may have latched while the gate was evaluating.
	if e.deps.PnL.TradingHalted() {
		logger.WithField("symbol", tick.Symbol).Warn("Trading halted after risk evaluation, order dropped")
		return nil
	}

	// While the bridge is down the health monitor owns reconnection;
	// submitting would only burn the retry budget.
	if e.config.LiveTrading && !e.deps.Bridge.Connected() {
		logger.WithField("symbol", tick.Symbol).Warn("Bridge disconnected, order dropped")
		return nil
	}

	return e.submit(ctx, signal, tick, delta)
}

// sizeSignal converts a signal into a signed share delta against the
// current position. Entries scale with confidence up to the configured
// position weight; exits flatten whatever side they target.
func (e *Engine) sizeSignal(signal model.Signal, tick model.MarketData) int64 {
	position := e.deps.State.Position(tick.Symbol)

	switch signal.Direction {
	case model.DirectionExitLong:
		if position.Quantity > 0 {
			return -position.Quantity
		}
		return 0
	case model.DirectionExitShort:
		if position.Quantity < 0 {
			return -position.Quantity
		}
		return 0
	}

	if tick.Close <= 0 {
		return 0
	}

	targetValue := e.deps.State.Equity() * e.config.MaxPositionWeight * signal.Confidence
	targetShares := int64(math.Floor(targetValue / tick.Close))
	if signal.Direction == model.DirectionShort {
		targetShares = -targetShares
	}

	return targetShares - position.Quantity
}

func (e *Engine) submit(ctx context.Context, signal model.Signal, tick model.MarketData, delta int64) error {
	side := "BUY"
	if delta < 0 {
		side = "SELL"
	}

	request := connectors.OrderRequest{
		ClientOrderID: connectors.NewClientOrderID(),
		Symbol:        tick.Symbol,
		Side:          side,
		Quantity:      absInt64(delta),
		OrderType:     "MKT",
	}

	row := &model.BridgeOrder{
		ClientOrderID: request.ClientOrderID,
		Symbol:        request.Symbol,
		Side:          side,
		Quantity:      request.Quantity,
		DecisionPrice: tick.Close,
		Status:        model.OrderStatusPending,
		DryRun:        !e.config.LiveTrading,
	}
	if e.deps.Orders != nil {
		if err := e.deps.Orders.Create(ctx, row); err != nil {
			Capture(ctx, e.deps.Exceptions, e.config.Service, "engine", "submit", "error", err,
				map[string]interface{}{"client_order_id": request.ClientOrderID})
			return err
		}
	}

	var response *connectors.OrderResponse
	var err error
	if e.config.LiveTrading {
		response, err = e.deps.Bridge.ExecuteWithReconnect(ctx, request)
	} else {
		response, err = e.deps.Bridge.DryRunOrder(ctx, request)
	}
	if err != nil {
		if e.deps.Orders != nil {
			_ = e.deps.Orders.UpdateStatus(ctx, row.ID, model.OrderStatusError, err.Error())
		}
		Capture(ctx, e.deps.Exceptions, e.config.Service, "engine", "submit", "error", err,
			map[string]interface{}{"client_order_id": request.ClientOrderID, "symbol": tick.Symbol})
		return err
	}

	if response.Status != "filled" {
		logger.WithFields(map[string]interface{}{
			"symbol":          tick.Symbol,
			"client_order_id": request.ClientOrderID,
			"status":          response.Status,
			"message":         response.Message,
		}).Warn("Order not filled")
		if e.deps.Orders != nil {
			_ = e.deps.Orders.UpdateStatus(ctx, row.ID, model.OrderStatusRejected, response.Message)
		}
		e.deps.Analytics.Observe(execution.Record{
			Symbol:        tick.Symbol,
			Side:          side,
			Quantity:      request.Quantity,
			ExpectedPrice: tick.Close,
			Filled:        false,
			Timestamp:     e.now(),
		})
		return nil
	}

	e.applyFill(ctx, signal, tick, row, response, delta, side)
	return nil
}

func (e *Engine) applyFill(
	ctx context.Context,
	signal model.Signal,
	tick model.MarketData,
	row *model.BridgeOrder,
	response *connectors.OrderResponse,
	delta int64,
	side string,
) {

	fillPrice := response.AvgFillPrice
	if fillPrice <= 0 {
		fillPrice = tick.Close
	}
	filledQty := response.FilledQuantity
	if filledQty <= 0 {
		filledQty = absInt64(delta)
	}
	signedFill := sign64(delta) * filledQty

	prior := e.deps.State.Position(tick.Symbol)
	sector := prior.Sector
	if sector == "" {
		sector = e.deps.Sectors.SectorFor(tick.Symbol)
	}

	realized := e.deps.State.ApplyFill(tick.Symbol, signedFill, fillPrice, sector)
	e.deps.PnL.RecordPnL(realized)

	e.deps.Analytics.Observe(execution.Record{
		Symbol:        tick.Symbol,
		Side:          side,
		Quantity:      filledQty,
		ExpectedPrice: tick.Close,
		FillPrice:     fillPrice,
		Filled:        true,
		Timestamp:     e.now(),
	})

	if e.deps.Orders != nil {
		if err := e.deps.Orders.MarkFilled(ctx, row.ID, fillPrice, filledQty); err != nil {
			Capture(ctx, e.deps.Exceptions, e.config.Service, "engine", "applyFill", "warn", err,
				map[string]interface{}{"client_order_id": row.ClientOrderID})
		}
	}
	if e.deps.Positions != nil {
		updated := e.deps.State.Position(tick.Symbol)
		if err := e.deps.Positions.Upsert(ctx, &updated); err != nil {
			Capture(ctx, e.deps.Exceptions, e.config.Service, "engine", "applyFill", "warn", err,
				map[string]interface{}{"symbol": tick.Symbol})
		}
	}

	if realized != 0 && e.deps.Trades != nil {
		closedQty := min64(absInt64(signedFill), absInt64(prior.Quantity))
		tradeSide := model.TradeSideSell
		if prior.Quantity < 0 {
			tradeSide = model.TradeSideBuy
		}
		openedAt := e.now()
		if prior.OpenedAt != nil {
			openedAt = *prior.OpenedAt
		}
		trade := &model.ClosedTrade{
			Symbol:       tick.Symbol,
			StrategyName: signal.Strategy,
			Side:         tradeSide,
			Quantity:     closedQty,
			EntryPrice:   prior.AvgEntryPrice,
			ExitPrice:    fillPrice,
			Pnl:          realized,
			OpenedAt:     openedAt,
			ClosedAt:     e.now(),
		}
		if err := e.deps.Trades.Create(ctx, trade); err != nil {
			Capture(ctx, e.deps.Exceptions, e.config.Service, "engine", "applyFill", "warn", err,
				map[string]interface{}{"symbol": tick.Symbol})
		}
	}

	logger.WithFields(map[string]interface{}{
		"symbol":     tick.Symbol,
		"side":       side,
		"filled_qty": filledQty,
		"fill_price": fillPrice,
		"realized":   realized,
		"equity":     e.deps.State.Equity(),
	}).Info("Fill applied")
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func sign64(v int64) int64 {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}
