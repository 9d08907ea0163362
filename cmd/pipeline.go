package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/rfm-cli/internal/config"
	"github.com/sells-group/rfm-cli/internal/loader"
	"github.com/sells-group/rfm-cli/internal/rfm"
)

// pipelineFlags are the input and scoring flags shared by every command that
// runs the full pipeline. Flags override config only when set explicitly.
type pipelineFlags struct {
	input     string
	sheet     string
	reference string
	bins      int
	rules     string
	marker    string
	progress  bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.input, "input", "", "transaction file (.xlsx, .csv or .txt)")
	fs.StringVar(&f.sheet, "sheet", "", "worksheet name for XLSX input")
	fs.StringVar(&f.reference, "reference-date", "", "reference date for recency (YYYY-MM-DD)")
	fs.IntVar(&f.bins, "bins", 0, "quantile scores per metric")
	fs.StringVar(&f.rules, "rules", "", "YAML file overriding the segment rule table")
	fs.StringVar(&f.marker, "cancel-marker", "", "invoice substring marking cancellations")
	fs.BoolVar(&f.progress, "progress", false, "show a progress bar while parsing rows")
}

func (f *pipelineFlags) apply(cmd *cobra.Command, c *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("input") {
		c.Input.Path = f.input
	}
	if fs.Changed("sheet") {
		c.Input.Sheet = f.sheet
	}
	if fs.Changed("reference-date") {
		c.Scoring.ReferenceDate = f.reference
	}
	if fs.Changed("bins") {
		c.Scoring.Bins = f.bins
	}
	if fs.Changed("rules") {
		c.Segments.RulesPath = f.rules
	}
	if fs.Changed("cancel-marker") {
		c.Clean.CancelMarker = f.marker
	}
	if fs.Changed("progress") {
		c.Input.Progress = f.progress
	}
}

// runPipeline loads the configured input and returns the segmented table.
func runPipeline(ctx context.Context, c *config.Config) (*rfm.Result, error) {
	ref, err := c.ReferenceTime()
	if err != nil {
		return nil, err
	}

	rules, err := loadRules(c.Segments.RulesPath)
	if err != nil {
		return nil, err
	}

	txns, _, err := loader.Load(ctx, c.Input.Path, loader.Options{
		Sheet:    c.Input.Sheet,
		Progress: c.Input.Progress,
	})
	if err != nil {
		return nil, eris.Wrap(err, "load transactions")
	}

	res, err := rfm.Run(txns, rfm.Options{
		Reference:    ref,
		CancelMarker: c.Clean.CancelMarker,
		Bins:         c.Scoring.Bins,
		Rules:        rules,
	})
	if err != nil {
		return nil, eris.Wrap(err, "score customers")
	}
	return res, nil
}

func loadRules(path string) ([]rfm.Rule, error) {
	if path == "" {
		return rfm.DefaultRules(), nil
	}
	return rfm.LoadRules(path)
}
