package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/allocation"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/execution"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/portfolio"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/repository"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/risk"
)

// Deps is everything the HTTP surface reads from or writes to.
type Deps struct {
	State        *portfolio.State
	PnL          *portfolio.PnLTracker
	Limits       *risk.LimitsManager
	Analytics    *execution.Analytics
	RiskSettings *repository.RiskSettingsRepository
	Performances *repository.PerformanceRepository
	Selections   *repository.SelectionRepository
	Correlations *allocation.Cache
}

// StartServer serves the operational API and blocks until SIGINT/SIGTERM.
func StartServer(port string, deps Deps) {
	r := NewRouter(deps)

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

// NewRouter builds the chi router. Split from StartServer so tests can
// exercise handlers without binding a port.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write error")
		}
	})

	r.Get("/positions", handlePositions(deps))
	r.Get("/pnl", handlePnL(deps))
	r.Get("/performance", handlePerformance(deps))
	r.Get("/selections", handleSelections(deps))
	r.Get("/slippage/{symbol}", handleSlippage(deps))
	r.Get("/risk/settings", handleGetRiskSettings(deps))
	r.Put("/risk/settings", handlePutRiskSettings(deps))
	r.Post("/risk/halt", handleHalt(deps))
	r.Post("/allocation/preview", handleAllocationPreview(deps))

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func handlePositions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snapshot := deps.State.Snapshot()
		positions := make([]model.Position, 0, len(snapshot))
		for _, position := range snapshot {
			positions = append(positions, position)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"equity":    deps.State.Equity(),
			"positions": positions,
		})
	}
}

func handlePnL(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"daily_pnl":         deps.PnL.DailyPnL(),
			"weekly_pnl":        deps.PnL.WeeklyPnL(),
			"intraday_drawdown": deps.PnL.IntradayDrawdown(),
			"halted":            deps.PnL.TradingHalted(),
			"halt_reason":       deps.PnL.HaltReason(),
		})
	}
}

func handlePerformance(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("mode")
		if mode == "" {
			mode = model.ModeShadow
		}
		since := time.Now().AddDate(0, 0, -30)

		rows, err := deps.Performances.FindLatestByMode(r.Context(), mode, since)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load performance snapshots")
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func handleSelections(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := deps.Selections.FindCurrent(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load selections")
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func handleSlippage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")
		writeJSON(w, http.StatusOK, deps.Analytics.StatsFor(symbol))
	}
}

func handleGetRiskSettings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, deps.Limits.Current())
	}
}

// handlePutRiskSettings validates and persists new limits, then swaps them
// into the running engine. Invalid payloads leave the current limits
// untouched.
func handlePutRiskSettings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings model.RiskSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}

		limits := risk.FromSettings(&settings)
		if err := limits.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		if deps.RiskSettings != nil {
			if err := deps.RiskSettings.Create(r.Context(), &settings); err != nil {
				writeError(w, http.StatusInternalServerError, "failed to persist settings")
				return
			}
		}
		if err := deps.Limits.Update(limits); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if deps.PnL != nil {
			deps.PnL.UpdateLimits(limits.DailyLossLimit, limits.WeeklyLossLimit, limits.IntradayLossLimit)
		}

		logger.WithField("updated_by", settings.UpdatedBy).Info("Risk settings updated")
		writeJSON(w, http.StatusOK, limits)
	}
}

// handleAllocationPreview sizes a target weight vector against the live
// book without submitting anything. Useful for checking what a rebalance
// would do before enabling it.
func handleAllocationPreview(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Weights map[string]float64 `json:"weights"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Weights) == 0 {
			writeError(w, http.StatusBadRequest, "invalid payload, expected {\"weights\": {...}}")
			return
		}

		plan := allocation.BuildAllocationPlan(
			deps.State.Equity(),
			body.Weights,
			deps.State.Snapshot(),
			deps.State.LastPrices(),
			deps.Correlations,
			deps.Limits.Current().MaxSharesPerTrade,
		)
		writeJSON(w, http.StatusOK, plan)
	}
}

func handleHalt(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Halt bool `json:"halt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		deps.PnL.SetManualHalt(body.Halt)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"halted":      deps.PnL.TradingHalted(),
			"halt_reason": deps.PnL.HaltReason(),
		})
	}
}
