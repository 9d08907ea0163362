package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/rfm-cli/internal/report"
	"github.com/sells-group/rfm-cli/internal/rfm"
)

var (
	summaryPipeline pipelineFlags
	summaryFormat   string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print customer counts and mean RFM metrics per segment",
	RunE: func(cmd *cobra.Command, _ []string) error {
		summaryPipeline.apply(cmd, cfg)
		if err := cfg.Validate("summary"); err != nil {
			return err
		}

		res, err := runPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		return report.RenderSummary(cmd.OutOrStdout(), summaryFormat, rfm.Summarize(res.Customers, res.Labels))
	},
}

func init() {
	summaryPipeline.register(summaryCmd)
	summaryCmd.Flags().StringVar(&summaryFormat, "format", report.FormatTable, "output format: table, csv, json or yaml")
	rootCmd.AddCommand(summaryCmd)
}
