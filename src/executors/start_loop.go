package executors

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/allocation"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/connectors"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/controller"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/execution"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/marketdata"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/notifier"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/portfolio"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/repository"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/risk"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/strategy"
)

// Runtime holds the engine and the shared components the HTTP surface
// reads from. Build it once with NewRuntime, then Run it.
type Runtime struct {
	Config    Config
	State     *portfolio.State
	Tracker   *portfolio.PnLTracker
	Limits    *risk.LimitsManager
	Analytics *execution.Analytics
	Engine    *controller.Engine
	Bridge    *connectors.BridgeClient

	Correlations *allocation.Cache

	RiskSettings *repository.RiskSettingsRepository
	Performances *repository.PerformanceRepository
	Selections   *repository.SelectionRepository

	pnlRep      *repository.PnlRepository
	alerts      *notifier.Notifier
	sessionDate time.Time
	weekStart   time.Time
	haltAlerted bool
}

// NewRuntime restores persisted state and wires every engine dependency.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	config := GetConfig()
	engineConfig := controller.GetConfig()
	bridgeConfig := connectors.GetConfig()

	positionRep := repository.NewPositionRepository()
	tradeRep := repository.NewTradeRepository()
	orderRep := repository.NewOrderRepository()
	exceptionRep := repository.NewExceptionRepository()
	riskRep := repository.NewRiskSettingsRepository()
	pnlRep := repository.NewPnlRepository()
	barRep := repository.NewBarRepository()
	selectionRep := repository.NewSelectionRepository()
	performanceRep := repository.NewPerformanceRepository()

	alerts := notifier.New(notifier.GetConfig())

	limits := risk.DefaultLimits()
	if settings, err := riskRep.GetLatest(ctx); err != nil {
		logger.WithError(err).Warn("Failed to load risk settings, using defaults")
	} else if settings != nil {
		candidate := risk.FromSettings(settings)
		if err := candidate.Validate(); err != nil {
			logger.WithError(err).Warn("Persisted risk settings invalid, using defaults")
		} else {
			limits = candidate
		}
	}
	limitsManager := risk.NewLimitsManager(limits)

	tracker := portfolio.NewPnLTracker(limits.DailyLossLimit, limits.WeeklyLossLimit, limits.IntradayLossLimit)
	sessionDate := risk.SessionDate(time.Now())
	weekStart := risk.WeekStart(time.Now())
	if counter, err := pnlRep.GetForSession(ctx, sessionDate); err != nil {
		logger.WithError(err).Warn("Failed to load pnl counters")
	} else if counter != nil {
		tracker.RestoreFromPersist(counter)
		logger.WithFields(map[string]interface{}{
			"daily_pnl":  counter.DailyPnl,
			"weekly_pnl": counter.WeeklyPnl,
		}).Info("P&L counters restored")
	}

	state := portfolio.NewState(config.BaseEquity)
	if positions, err := positionRep.FindOpen(ctx); err != nil {
		logger.WithError(err).Warn("Failed to restore positions")
	} else if len(positions) > 0 {
		state.Restore(positions)
		logger.WithField("count", len(positions)).Info("Positions restored")
	}

	bridge, err := connectors.NewBridgeClient(bridgeConfig, alerts)
	if err != nil {
		logger.WithError(err).Error("Failed to build bridge client")
		return nil, err
	}
	bridge.StartHealthMonitor(ctx, time.Duration(bridgeConfig.HealthIntervalSeconds)*time.Second)

	analytics := execution.NewAnalytics()
	marketConfig := marketdata.GetConfig()
	engine := controller.NewEngine(engineConfig, controller.Deps{
		State:      state,
		PnL:        tracker,
		Limits:     limitsManager,
		Bridge:     bridge,
		Analytics:  analytics,
		Strategy:   resolveActiveStrategy(ctx, selectionRep),
		Bars:       barRep,
		Volumes:    marketdata.NewADVProvider(barRep, marketConfig),
		Sectors:    marketdata.NewSectorClassifier(marketConfig),
		Positions:  positionRep,
		Trades:     tradeRep,
		Orders:     orderRep,
		Exceptions: exceptionRep,
	})

	correlations := allocation.NewCache(24 * time.Hour)
	refreshCorrelations(ctx, correlations, barRep, config.Symbols, marketConfig.ADVLookbackDays)

	return &Runtime{
		Config:       config,
		Correlations: correlations,
		State:        state,
		Tracker:      tracker,
		Limits:       limitsManager,
		Analytics:    analytics,
		Engine:       engine,
		Bridge:       bridge,
		RiskSettings: riskRep,
		Performances: performanceRep,
		Selections:   selectionRep,
		pnlRep:       pnlRep,
		alerts:       alerts,
		sessionDate:  sessionDate,
		weekStart:    weekStart,
	}, nil
}

// Run consumes the tick stream and handles session housekeeping until the
// context is cancelled.
func (rt *Runtime) Run(ctx context.Context) error {
	bridgeConfig := connectors.GetConfig()

	ticks := make(chan model.MarketData, rt.Config.TickBufferSize)
	stream := connectors.NewTickStream(bridgeConfig.TickStreamURL)
	go stream.Run(ctx, ticks)

	workers := rt.startWorkers(ctx)

	housekeeping := time.NewTicker(rt.Config.LoopPeriod)
	defer housekeeping.Stop()
	persist := time.NewTicker(rt.Config.PersistPeriod)
	defer persist.Stop()
	rebalance := time.NewTicker(rt.Config.RebalancePeriod)
	defer rebalance.Stop()

	logger.WithFields(map[string]interface{}{
		"symbols": rt.Config.Symbols,
	}).Info("Trading loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Trading loop stopped")
			rt.persistCounters(context.Background())
			return nil

		case tick := <-ticks:
			worker, ok := workers[tick.Symbol]
			if !ok {
				continue
			}
			select {
			case worker <- tick:
			default:
				logger.WithField("symbol", tick.Symbol).Warn("Tick dropped, worker backlog full")
			}

		case now := <-housekeeping.C:
			if newSession := risk.SessionDate(now); !newSession.Equal(rt.sessionDate) {
				logger.WithField("session", newSession.Format("2006-01-02")).Info("New session, daily counters reset")
				rt.Tracker.ResetDaily()
				rt.sessionDate = newSession
			}
			if newWeek := risk.WeekStart(now); !newWeek.Equal(rt.weekStart) {
				logger.Info("New week, weekly counters reset")
				rt.Tracker.ResetWeekly()
				rt.weekStart = newWeek
			}
			rt.reloadRiskSettings(ctx)
			rt.alertOnHaltTransition(ctx)

		case <-persist.C:
			rt.persistCounters(ctx)

		case <-rebalance.C:
			rt.reportRebalancePlan()
		}
	}
}

// reportRebalancePlan computes the drift between standing target weights
// and the live book. Advisory only; orders still come from signals.
func (rt *Runtime) reportRebalancePlan() {
	if len(rt.Config.TargetWeights) == 0 {
		return
	}

	limits := rt.Limits.Current()
	plan := allocation.BuildAllocationPlan(
		rt.State.Equity(),
		rt.Config.TargetWeights,
		rt.State.Snapshot(),
		rt.State.LastPrices(),
		rt.Correlations,
		limits.MaxSharesPerTrade,
	)

	for _, warning := range plan.Warnings {
		logger.WithField("warning", warning).Warn("Rebalance plan warning")
	}
	for _, action := range plan.Actions {
		logger.WithFields(map[string]interface{}{
			"symbol":        action.Symbol,
			"quantity":      action.Quantity,
			"target_weight": action.TargetWeight,
		}).Info("Rebalance drift")
	}
}

// StartLoop is the one-call entrypoint: build the runtime and run it.
func StartLoop(ctx context.Context) error {
	rt, err := NewRuntime(ctx)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

// startWorkers launches one goroutine per symbol. Each symbol's ticks are
// processed strictly in arrival order; different symbols run concurrently.
func (rt *Runtime) startWorkers(ctx context.Context) map[string]chan model.MarketData {
	workers := make(map[string]chan model.MarketData, len(rt.Config.Symbols))
	for _, symbol := range rt.Config.Symbols {
		ch := make(chan model.MarketData, rt.Config.TickBufferSize)
		workers[symbol] = ch

		go func(symbol string, ch <-chan model.MarketData) {
			for {
				select {
				case <-ctx.Done():
					return
				case tick := <-ch:
					if !risk.IsMarketOpen(tick.Timestamp) {
						rt.State.MarkPrice(tick.Symbol, tick.Close)
						continue
					}
					if err := rt.Engine.ProcessTick(ctx, tick); err != nil {
						logger.WithError(err).WithField("symbol", symbol).Error("Tick processing failed")
					}
				}
			}
		}(symbol, ch)
	}
	return workers
}

// resolveActiveStrategy looks up the persisted MAIN selection, falling back
// to momentum when none exists or the name is unknown.
func resolveActiveStrategy(ctx context.Context, selections *repository.SelectionRepository) strategy.Strategy {
	active, err := selections.FindActive(ctx)
	if err != nil || active == nil {
		if err != nil {
			logger.WithError(err).Warn("Failed to load active selection")
		}
		fallback, _ := strategy.Lookup("momentum")
		return fallback
	}

	selected, err := strategy.Lookup(active.StrategyName)
	if err != nil {
		logger.WithError(err).WithField("strategy", active.StrategyName).Warn("Active strategy not registered, using momentum")
		fallback, _ := strategy.Lookup("momentum")
		return fallback
	}

	logger.WithFields(map[string]interface{}{
		"strategy": active.StrategyName,
		"symbol":   active.Symbol,
	}).Info("Active strategy resolved")
	return selected
}

func (rt *Runtime) reloadRiskSettings(ctx context.Context) {
	settings, err := rt.RiskSettings.GetLatest(ctx)
	if err != nil || settings == nil {
		return
	}
	candidate := risk.FromSettings(settings)
	if err := rt.Limits.Update(candidate); err != nil {
		logger.WithError(err).Warn("Rejected invalid risk settings update")
		return
	}
	rt.Tracker.UpdateLimits(candidate.DailyLossLimit, candidate.WeeklyLossLimit, candidate.IntradayLossLimit)
}

// alertOnHaltTransition fires one alert each time the kill switch latches,
// re-arming once the halt clears.
func (rt *Runtime) alertOnHaltTransition(ctx context.Context) {
	halted := rt.Tracker.TradingHalted()
	if halted && !rt.haltAlerted {
		rt.haltAlerted = true
		rt.alerts.Alert(ctx, "trading halted", rt.Tracker.HaltReason())
		return
	}
	if !halted {
		rt.haltAlerted = false
	}
}

// refreshCorrelations seeds the pairwise correlation cache from stored
// daily closes so the allocation planner can de-weight co-moving symbols.
func refreshCorrelations(
	ctx context.Context,
	cache *allocation.Cache,
	bars *repository.BarRepository,
	symbols []string,
	lookback int,
) {

	closes := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		rows, err := bars.FetchRecentDaily(ctx, symbol, time.Now(), lookback)
		if err != nil {
			logger.WithError(err).WithField("symbol", symbol).Warn("Failed to load bars for correlation")
			continue
		}
		series := make([]float64, len(rows))
		for i, row := range rows {
			series[i], _ = row.Close.Float64()
		}
		closes[symbol] = series
	}

	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			a, okA := closes[symbols[i]]
			b, okB := closes[symbols[j]]
			if !okA || !okB || len(a) != len(b) || len(a) < 2 {
				continue
			}
			cache.Put(symbols[i], symbols[j], allocation.Pearson(a, b))
		}
	}
}

func (rt *Runtime) persistCounters(ctx context.Context) {
	if err := rt.pnlRep.Save(ctx, rt.Tracker.SnapshotForPersist(rt.sessionDate, rt.weekStart)); err != nil {
		logger.WithError(err).Warn("Failed to persist pnl counters")
	}
}
