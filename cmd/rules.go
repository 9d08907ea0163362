package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/rfm-cli/internal/report"
	"github.com/sells-group/rfm-cli/internal/rfm"
)

var (
	rulesPath   string
	rulesBins   int
	rulesFormat string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate and print the segment rule table",
	Long:  "Loads the built-in or configured rule table, checks that every RF code is covered and prints each rule with the codes it wins.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("rules") {
			cfg.Segments.RulesPath = rulesPath
		}
		if cmd.Flags().Changed("bins") {
			cfg.Scoring.Bins = rulesBins
		}
		if err := cfg.Validate("rules"); err != nil {
			return err
		}

		rules, err := loadRules(cfg.Segments.RulesPath)
		if err != nil {
			return err
		}
		seg, err := rfm.NewSegmenter(rules, cfg.Scoring.Bins)
		if err != nil {
			return err
		}

		return report.RenderRules(cmd.OutOrStdout(), rulesFormat, ruleRows(seg, cfg.Scoring.Bins))
	},
}

func ruleRows(seg *rfm.Segmenter, bins int) []report.RuleRow {
	cov := seg.Coverage(bins)
	rules := seg.Rules()
	rows := make([]report.RuleRow, len(rules))
	for i, r := range rules {
		rows[i] = report.RuleRow{
			Priority: i + 1,
			Pattern:  r.Pattern,
			Label:    r.Label,
			Codes:    cov[i],
		}
	}
	return rows
}

func init() {
	rulesCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rule file (default: built-in table)")
	rulesCmd.Flags().IntVar(&rulesBins, "bins", 0, "scores per metric to check coverage for")
	rulesCmd.Flags().StringVar(&rulesFormat, "format", report.FormatTable, "output format: table, csv, json or yaml")
	rootCmd.AddCommand(rulesCmd)
}
