package engine

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/executors"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/server"
)

type Engine struct{}

// Start runs the trading loop and the operational API until interrupted.
func (e *Engine) Start() error {
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

	runtime, err := executors.NewRuntime(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to build trading runtime")
		return err
	}

	go func() {
		if err := runtime.Run(ctx); err != nil {
			logrus.WithError(err).Error("Trading loop exited with error")
		}
	}()

	server.StartServer(server.GetConfig().Port, server.Deps{
		State:        runtime.State,
		PnL:          runtime.Tracker,
		Limits:       runtime.Limits,
		Analytics:    runtime.Analytics,
		RiskSettings: runtime.RiskSettings,
		Performances: runtime.Performances,
		Selections:   runtime.Selections,
		Correlations: runtime.Correlations,
	})

	return nil
}
