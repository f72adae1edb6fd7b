package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/journals/internal/browser"
	"github.com/go-scripts/journals/internal/config"
	"github.com/go-scripts/journals/internal/filter"
	"github.com/go-scripts/journals/internal/writer"
	"github.com/go-scripts/journals/ui"
)

// CLI is the command line of the journals tool
type CLI struct {
	Config string `help:"Path to configuration file" default:"journals.yaml" type:"path"`
	Debug  bool   `help:"Enable debug logging" default:"false"`

	Harvest HarvestCmd `cmd:"" help:"Harvest the journal catalog into the corpus file"`
	Filter  FilterCmd  `cmd:"" help:"Extract journals by VAK category and white-list tier"`
	Select  SelectCmd  `cmd:"" default:"1" help:"Choose categories and tiers in a terminal form"`
}

// App carries what every command needs.
type App struct {
	ctx    context.Context
	cfg    *config.Configuration
	logger *log.Logger
}

func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "journals",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// describe turns a fatal error into the message shown to the operator.
func describe(err error) string {
	var sessionErr *browser.SessionError
	var writeErr *writer.WriteError
	switch {
	case errors.As(err, &sessionErr):
		return fmt.Sprintf("Could not start the browser. Check driver_path in the config or --driver-path.\n%v", err)
	case errors.As(err, &writeErr):
		return fmt.Sprintf("Could not save %s: %v", writeErr.Path, writeErr.Err)
	case errors.Is(err, filter.ErrNoCorpus):
		return fmt.Sprintf("%v. Run \"journals harvest\" first.", err)
	case errors.Is(err, context.Canceled):
		return "Interrupted."
	}
	return err.Error()
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("journals"),
		kong.Description("Harvests the elibrary journal catalog and filters it by VAK category and white-list tier."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.Debug)
	log.SetDefault(logger)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		logger.Error("failed to load configuration", "path", cli.Config, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{ctx: ctx, cfg: cfg, logger: logger}
	if err := kctx.Run(app); err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return
		}
		logger.Error("command failed", "command", kctx.Command(), "err", err)
		fmt.Fprintln(os.Stderr, describe(err))
		stop()
		os.Exit(1)
	}
}
