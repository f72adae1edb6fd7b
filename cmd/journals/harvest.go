package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/time/rate"

	"github.com/go-scripts/journals/internal/browser"
	"github.com/go-scripts/journals/internal/challenge"
	"github.com/go-scripts/journals/internal/config"
	"github.com/go-scripts/journals/internal/crawler"
	"github.com/go-scripts/journals/internal/progress"
	"github.com/go-scripts/journals/internal/writer"
)

// HarvestCmd walks every category pair and writes the corpus file.
type HarvestCmd struct {
	DriverPath     string `help:"Path to the Chrome binary" type:"path"`
	Headless       bool   `help:"Run the browser without a window (challenges cannot be solved)"`
	CorpusFile     string `help:"Corpus output file (.xlsx, .csv or .db)"`
	CheckpointFile string `help:"Checkpoint file written every checkpoint_every records"`
}

// apply overrides configuration values with the flags that were given.
func (c *HarvestCmd) apply(cfg *config.Configuration) {
	if c.DriverPath != "" {
		cfg.DriverPath = c.DriverPath
	}
	if c.Headless {
		cfg.Headless = true
	}
	if c.CorpusFile != "" {
		cfg.CorpusFile = c.CorpusFile
	}
	if c.CheckpointFile != "" {
		cfg.CheckpointFile = c.CheckpointFile
	}
}

func (c *HarvestCmd) Run(app *App) error {
	c.apply(app.cfg)
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	h := newHarvester(app.cfg, app.logger, os.Stderr)
	app.logger.Info("starting harvest",
		"base_url", app.cfg.BaseURL,
		"pairs", len(app.cfg.Categories)*len(app.cfg.Tiers),
		"corpus", app.cfg.CorpusFile)

	start := time.Now()
	report, err := h.Harvest(app.ctx)
	if err != nil {
		return err
	}

	renderSummary(os.Stdout, report)
	app.logger.Info("harvest complete",
		"records", len(report.Records),
		"checkpoints", report.Checkpoints,
		"file", app.cfg.CorpusFile,
		"elapsed", time.Since(start).Round(time.Second))
	return nil
}

func newThrottle(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// newHarvester wires the browser, gate, extractor, walker and writer from cfg.
func newHarvester(cfg *config.Configuration, logger *log.Logger, term io.Writer) *crawler.Harvester {
	throttle := newThrottle(cfg.PageInterval)
	gate := challenge.New(cfg.ChallengeTimeout, cfg.ChallengePollInterval, logger)

	extractor := &crawler.Extractor{
		Gate:            gate,
		NavigateTimeout: cfg.NavigateTimeout,
		PageLoadTimeout: cfg.PageLoadTimeout,
		Throttle:        throttle,
		Logger:          logger,
	}
	walker := &crawler.Walker{
		BaseURL:         cfg.BaseURL,
		PageSize:        cfg.PageSize,
		NavigateTimeout: cfg.NavigateTimeout,
		PageLoadTimeout: cfg.PageLoadTimeout,
		Gate:            gate,
		Extractor:       extractor,
		Progress:        progress.New(term, logger),
		Throttle:        throttle,
		Logger:          logger,
	}

	opts := browser.Options{
		ExecPath: cfg.DriverPath,
		Headless: cfg.Headless,
		Logger:   logger,
	}
	return &crawler.Harvester{
		Open:            opts.Opener(),
		Walker:          walker,
		Writer:          writer.New(logger),
		Categories:      cfg.Categories,
		Tiers:           cfg.Tiers,
		CheckpointEvery: cfg.CheckpointEvery,
		CheckpointFile:  cfg.CheckpointFile,
		CorpusFile:      cfg.CorpusFile,
		Logger:          logger,
	}
}

// renderSummary prints one row per category pair and a total footer.
func renderSummary(out io.Writer, report *crawler.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Category", "Tier", "Found", "Pages", "Records", "Status"})

	for _, p := range report.Pairs {
		status := "ok"
		if p.Err != nil {
			status = fmt.Sprintf("stopped after %d/%d pages: %v", p.Fetched, p.Pages, p.Err)
		}
		t.AppendRow(table.Row{p.Category, p.Tier, p.Total, p.Pages, len(p.Records), status})
	}

	t.AppendFooter(table.Row{"", "", "", "Total", len(report.Records), fmt.Sprintf("%d checkpoints", report.Checkpoints)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
