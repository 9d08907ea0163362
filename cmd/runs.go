package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/rfm-cli/internal/store"
)

var (
	runsSQLite  string
	runsSegment string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scored tables saved to SQLite",
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the customer IDs of one segment of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("sqlite") {
			cfg.Output.SQLitePath = runsSQLite
		}
		if cmd.Flags().Changed("segment") {
			cfg.Output.Segment = runsSegment
		}
		if cfg.Output.SQLitePath == "" {
			return eris.New("sqlite path is required (RFM_OUTPUT_SQLITE_PATH or --sqlite)")
		}

		st, err := store.NewSQLite(cfg.Output.SQLitePath)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		ids, err := st.ListSegment(ctx, run.ID, cfg.Output.Segment)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		fmt.Fprintf(os.Stderr, "Run %s: %s, reference %s, %d customers, %d in %s\n",
			run.ID, run.Input, run.Reference.Format(time.DateOnly), run.Customers, len(ids), cfg.Output.Segment)

		out := cmd.OutOrStdout()
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	},
}

func init() {
	runsShowCmd.Flags().StringVar(&runsSQLite, "sqlite", "", "SQLite database written by segment --sqlite")
	runsShowCmd.Flags().StringVar(&runsSegment, "segment", "", "segment to list (default from config)")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
