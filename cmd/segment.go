package main

import (
	"context"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/rfm-cli/internal/export"
	"github.com/sells-group/rfm-cli/internal/rfm"
	"github.com/sells-group/rfm-cli/internal/store"
)

var (
	segmentPipeline pipelineFlags
	segmentName     string
	segmentOutput   string
	segmentFormat   string
	segmentHeader   string
	segmentTable    string
	segmentSQLite   string
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Score customers and export the IDs of one segment",
	Long:  "Runs the full pipeline and writes the customer IDs of the chosen segment, one per row under a single header. Optionally writes the full scored table to CSV and SQLite.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		segmentPipeline.apply(cmd, cfg)
		applySegmentFlags(cmd)
		if err := cfg.Validate("segment"); err != nil {
			return err
		}

		res, err := runPipeline(ctx, cfg)
		if err != nil {
			return err
		}

		if !slices.Contains(res.Labels, cfg.Output.Segment) {
			return eris.Errorf("segment: unknown segment %q (rules define: %s)",
				cfg.Output.Segment, strings.Join(res.Labels, ", "))
		}

		ids := res.SegmentIDs(cfg.Output.Segment)
		if len(ids) == 0 {
			zap.L().Warn("segment: no customers in segment", zap.String("segment", cfg.Output.Segment))
		}
		if err := export.WriteSegment(cfg.Output.Path, cfg.Output.Format, cfg.Output.Header, ids); err != nil {
			return err
		}

		if cfg.Output.TablePath != "" {
			if err := export.WriteTableCSV(cfg.Output.TablePath, res.Customers); err != nil {
				return err
			}
			zap.L().Info("segment: wrote scored table", zap.String("path", cfg.Output.TablePath))
		}

		if cfg.Output.SQLitePath != "" {
			if err := saveRun(ctx, res); err != nil {
				return err
			}
		}

		zap.L().Info("segment export complete",
			zap.String("segment", cfg.Output.Segment),
			zap.Int("customers", len(ids)),
			zap.Int("scored", len(res.Customers)),
			zap.String("path", cfg.Output.Path),
		)
		return nil
	},
}

func applySegmentFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	if fs.Changed("segment") {
		cfg.Output.Segment = segmentName
	}
	if fs.Changed("output") {
		cfg.Output.Path = segmentOutput
	}
	if fs.Changed("format") {
		cfg.Output.Format = segmentFormat
	}
	if fs.Changed("header") {
		cfg.Output.Header = segmentHeader
	}
	if fs.Changed("table") {
		cfg.Output.TablePath = segmentTable
	}
	if fs.Changed("sqlite") {
		cfg.Output.SQLitePath = segmentSQLite
	}
}

func saveRun(ctx context.Context, res *rfm.Result) error {
	st, err := store.NewSQLite(cfg.Output.SQLitePath)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	ref, err := cfg.ReferenceTime()
	if err != nil {
		return err
	}

	run, err := st.SaveRun(ctx, store.Run{
		Input:     cfg.Input.Path,
		Reference: ref,
		Bins:      cfg.Scoring.Bins,
	}, res.Customers)
	if err != nil {
		return eris.Wrap(err, "save run")
	}

	zap.L().Info("segment: saved scored table",
		zap.String("run_id", run.ID),
		zap.String("db", cfg.Output.SQLitePath),
	)
	return nil
}

func init() {
	segmentPipeline.register(segmentCmd)
	f := segmentCmd.Flags()
	f.StringVar(&segmentName, "segment", "", "segment to export (default from config: loyal_customers)")
	f.StringVar(&segmentOutput, "output", "", "segment output path (default from config: loyal_customer_id.csv)")
	f.StringVar(&segmentFormat, "format", "", "segment output format: csv or xlsx")
	f.StringVar(&segmentHeader, "header", "", "header of the exported ID column")
	f.StringVar(&segmentTable, "table", "", "also write the full scored table as CSV to this path")
	f.StringVar(&segmentSQLite, "sqlite", "", "also save the scored table to this SQLite database")
	rootCmd.AddCommand(segmentCmd)
}
