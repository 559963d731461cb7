package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/cmd/bars"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/cmd/engine"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/cmd/keys"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/cmd/selection"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/database"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Equity Trader CMD"
	app.Usage = "The equity trader command line interface"

	app.Commands = []cli.Command{
		engineCMD,
		selectionCMD,
		barsCMD,
		keysCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	engineCMD = cli.Command{
		Name:        "engine",
		Usage:       "run the trading engine",
		Action:      engineAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the trading loop and operational API`,
	}
	selectionCMD = cli.Command{
		Name:        "selection",
		Usage:       "run one strategy selection pass",
		Action:      selectionAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Recompute performance snapshots and refresh the active/shadow set`,
	}
	barsCMD = cli.Command{
		Name:        "bars",
		Usage:       "import daily equity bars",
		Action:      barsAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Fetch daily OHLCV history and store it`,
	}
	keysCMD = cli.Command{
		Name:        "keys",
		Usage:       "manage bridge credentials",
		Action:      keysAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Interactive helper for encrypting bridge API tokens`,
	}
)

func engineAction(_ *cli.Context) error {

	logrus.Info("Starting engine CMD")
	logrus.WithField("cmd", "engine")

	e := &engine.Engine{}
	err := e.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func selectionAction(_ *cli.Context) error {

	logrus.Info("Starting selection CMD")
	logrus.WithField("cmd", "selection")

	s := &selection.Selection{}
	err := s.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func barsAction(_ *cli.Context) error {

	logrus.Info("Starting bars import CMD")
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	b := &bars.Bars{
		Log: logrus.WithField("cmd", "bars"),
		DB:  database.MainDB,
	}

	err := b.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting bars cmd")
		return err
	}

	return nil
}

func keysAction(_ *cli.Context) error {

	logrus.Info("Starting keys CMD")

	k := &keys.Keys{}
	err := k.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
