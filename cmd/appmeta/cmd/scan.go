package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan descriptor directories and print the index",
	Long:  "Parses every Desktop Entry file in the configured directories once and prints the resulting key → application map, sorted by key.",
	Args:  cobra.NoArgs,
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false, nil)
	if err != nil {
		return err
	}
	stats := a.Scan(ctx)
	if stats.Interrupted {
		return fmt.Errorf("scan interrupted: %w", ctx.Err())
	}

	entries := a.Index.Entries()
	out := cmd.OutOrStdout()
	if scanJSON {
		recs := make([]jsonRecord, 0, len(entries))
		for _, e := range entries {
			rec := e.Record
			recs = append(recs, toJSON(e.Key, &rec))
		}
		return writeJSON(out, recs)
	}

	fmt.Fprint(out, formatEntries(entries))
	fmt.Fprintf(out, "%s⚡ %d keys%s │ %d files (%d skipped, %d failed) │ %d dirs\n",
		colorBold, len(entries), colorReset, stats.Files(), stats.Skipped, stats.Failed, stats.Dirs)
	return nil
}
