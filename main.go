package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/executors"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/server"
)

var (
	PORT     = os.Getenv("SERVER_PORT")
	APP_NAME = os.Getenv("APP_NAME")
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	runtime, err := executors.NewRuntime(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build trading runtime")
	}

	go func() {
		if err := runtime.Run(ctx); err != nil {
			logger.WithError(err).Error("Trading loop exited with error")
		}
	}()

	port := PORT
	if port == "" {
		port = server.GetConfig().Port
	}
	server.StartServer(port, server.Deps{
		State:        runtime.State,
		PnL:          runtime.Tracker,
		Limits:       runtime.Limits,
		Analytics:    runtime.Analytics,
		RiskSettings: runtime.RiskSettings,
		Performances: runtime.Performances,
		Selections:   runtime.Selections,
		Correlations: runtime.Correlations,
	})
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
