package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/appmeta/internal/ports"
)

var (
	lookupJSON        bool
	lookupDefaultIcon string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve an executable to its application",
}

var lookupPathCmd = &cobra.Command{
	Use:   "path <executable-path>",
	Short: "Look up a running executable by full path",
	Long:  "Applies known path fixups, then matches the full path, then its base name. Unknown executables get a synthetic record named after the binary.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookup(cmd, args[0], true)
	},
}

var lookupBinCmd = &cobra.Command{
	Use:   "bin <binary-name>",
	Short: "Look up by bare binary name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookup(cmd, args[0], false)
	},
}

func init() {
	lookupCmd.PersistentFlags().BoolVar(&lookupJSON, "json", false, "Output as JSON")
	lookupCmd.PersistentFlags().StringVar(&lookupDefaultIcon, "default-icon", "", "icon for executables without a descriptor (default: fallback_icon)")
	lookupCmd.AddCommand(lookupPathCmd)
	lookupCmd.AddCommand(lookupBinCmd)
}

func runLookup(cmd *cobra.Command, target string, byPath bool) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false, nil)
	if err != nil {
		return err
	}
	if stats := a.Scan(ctx); stats.Interrupted {
		return fmt.Errorf("scan interrupted: %w", ctx.Err())
	}

	var rec *ports.Record
	if byPath {
		rec = a.LookupByPath(target, lookupDefaultIcon)
	} else {
		rec = a.LookupByBinaryName(target, lookupDefaultIcon)
	}

	out := cmd.OutOrStdout()
	if lookupJSON {
		return writeJSON(out, toJSON("", rec))
	}
	fmt.Fprint(out, formatRecord(rec))
	return nil
}
