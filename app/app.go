// Package app implements the pmap command line front-end.
package app

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/targodan/go-errors"
	"github.com/urfave/cli/v2"

	"github.com/kribakarans/pmap/version"
)

var onExit func()

func initAppAction(c *cli.Context) error {
	lvl, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	switch c.String("log-path") {
	case "-":
		logrus.SetOutput(os.Stdout)
	case "--":
		logrus.SetOutput(os.Stderr)
	default:
		logfile, err := os.OpenFile(c.String("log-path"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return errors.Errorf("could not open logfile for writing, reason: %w", err)
		}
		logrus.SetOutput(logfile)
		logrus.StandardLogger().ExitFunc = func(code int) {
			if onExit != nil {
				onExit()
			}
			os.Exit(code)
		}
		onExit = func() {
			logfile.Close()
		}
	}
	logrus.WithField("arguments", os.Args).Debug("Program started.")
	return nil
}

// RunApp runs the pmap command line interface with the given
// arguments.
func RunApp(args []string) {
	app := &cli.App{
		Name:    "pmap",
		Usage:   "analyzes Linux process memory layouts and crash register context",
		Version: version.PmapVersion.String(),
		Authors: []*cli.Author{
			{
				Name: "Kribakaran S",
			},
		},
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "one of [trace, debug, info, warn, error, fatal]",
				Value:   "error",
			},
			&cli.StringFlag{
				Name:  "log-path",
				Usage: "path to the logfile, or \"-\" for stdout, or \"--\" for stderr",
				Value: "--",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyzes a memory map snapshot or a live process",
				ArgsUsage: "[<mapsfile>]",
				Flags:     analyzeFlags,
				Action:    analyze,
			},
			{
				Name:      "serve",
				Usage:     "serves the HTML report and a JSON view over HTTP",
				ArgsUsage: "<mapsfile>",
				Flags:     serveFlags,
				Action:    serve,
			},
		},
		DefaultCommand: "analyze",
	}

	err := app.Run(args)
	if err != nil {
		logrus.Fatal(err)
	}
}
