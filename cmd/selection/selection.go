package selection

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/notifier"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/repository"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/selector"
)

type Selection struct{}

// Start recomputes performance snapshots from closed trades and runs one
// selection pass over them.
func (s *Selection) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	config := selector.GetConfig()
	tradeRep := repository.NewTradeRepository()
	performanceRep := repository.NewPerformanceRepository()
	selectionRep := repository.NewSelectionRepository()

	windowEnd := time.Now()
	windowStart := windowEnd.AddDate(0, 0, -config.LookbackDays)

	trades, err := tradeRep.FindClosedSince(ctx, windowStart)
	if err != nil {
		logrus.WithError(err).Error("Failed to load closed trades")
		return err
	}

	grouped := map[string][]model.ClosedTrade{}
	for _, trade := range trades {
		key := trade.StrategyName + "|" + trade.Symbol
		grouped[key] = append(grouped[key], trade)
	}

	for _, groupTrades := range grouped {
		perf := selector.ComputePerformance(
			groupTrades[0].StrategyName,
			groupTrades[0].Symbol,
			model.ModeShadow,
			groupTrades,
			config.StartingEquity,
			windowStart,
			windowEnd,
		)
		if err := performanceRep.Create(ctx, &perf); err != nil {
			logrus.WithError(err).WithFields(map[string]interface{}{
				"strategy": perf.StrategyName,
				"symbol":   perf.Symbol,
			}).Error("Failed to persist performance snapshot")
			return err
		}
	}
	logrus.WithField("snapshots", len(grouped)).Info("Performance snapshots written")

	previous, err := selectionRep.FindActive(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load active selection")
		return err
	}

	rows, err := selector.New(performanceRep, selectionRep, config).RunSelection(ctx)
	if err != nil {
		logrus.WithError(err).Error("Selection run failed")
		return err
	}

	if len(rows) > 0 {
		next := rows[0]
		if previous == nil || previous.StrategyName != next.StrategyName || previous.Symbol != next.Symbol {
			alerts := notifier.New(notifier.GetConfig())
			alerts.Alert(ctx, "active strategy changed",
				fmt.Sprintf("%s on %s is now the live selection", next.StrategyName, next.Symbol))
		}
	}

	for _, row := range rows {
		logrus.WithFields(map[string]interface{}{
			"strategy": row.StrategyName,
			"symbol":   row.Symbol,
			"mode":     row.Mode,
			"score":    row.Score,
		}).Info("Selection row")
	}

	return nil
}
