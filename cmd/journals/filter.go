package main

import (
	"fmt"
	"os"

	"github.com/go-scripts/journals/internal/filter"
	"github.com/go-scripts/journals/internal/writer"
	"github.com/go-scripts/journals/ui"
)

// FilterCmd extracts the journals matching the given labels.
type FilterCmd struct {
	Category []string `help:"VAK category: 1, 2, 3 or none (also к1..к3, \"без к\")" short:"c" required:""`
	Tier     []string `help:"White-list tier: 1..4 (also у1..у4)" short:"t" required:""`
	In       string   `help:"Corpus file to read (defaults to corpus_file)"`
	Out      string   `help:"File to write the matching journals to" default:"filtered_journals.xlsx"`
}

func (c *FilterCmd) Run(app *App) error {
	criteria, err := filter.NewCriteria(c.Category, c.Tier)
	if err != nil {
		return err
	}
	in := c.In
	if in == "" {
		in = app.cfg.CorpusFile
	}
	return runFilter(app, criteria, in, c.Out)
}

func runFilter(app *App, criteria filter.Criteria, in, out string) error {
	if err := criteria.Validate(); err != nil {
		app.logger.Warn(err.Error())
		return err
	}

	n, err := filter.Run(writer.New(app.logger), in, out, criteria)
	if err != nil {
		return err
	}
	if n == 0 {
		app.logger.Warn("no journals match the selected criteria",
			"categories", criteria.Categories, "tiers", criteria.Tiers)
		fmt.Fprintln(os.Stdout, "No journals match the selected criteria.")
		return nil
	}
	app.logger.Info("journals extracted", "count", n, "file", out)
	fmt.Fprintf(os.Stdout, "Found %d journals. Saved to %s\n", n, out)
	return nil
}

// SelectCmd opens the selection form and runs the chosen action.
type SelectCmd struct {
	Out string `help:"File to write the matching journals to" default:"filtered_journals.xlsx"`
}

func (c *SelectCmd) Run(app *App) error {
	sel, err := ui.Select(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	if sel.Action == ui.ActionRefresh {
		return (&HarvestCmd{}).Run(app)
	}
	criteria := filter.Criteria{Categories: sel.Categories, Tiers: sel.Tiers}
	return runFilter(app, criteria, app.cfg.CorpusFile, c.Out)
}
