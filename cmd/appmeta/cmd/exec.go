package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/appmeta/internal/domain/desktop"
)

var execCmd = &cobra.Command{
	Use:   "exec <command line>",
	Short: "Show the executable a Desktop Entry Exec line launches",
	Long: `Normalises an Exec value the way the indexer does: field codes are
stripped, env wrappers skipped, sandbox launchers unwrapped, and bare names
resolved against the search path.`,
	Example: `  appmeta exec 'env GDK_BACKEND=x11 gedit %U'
  appmeta exec '/usr/bin/flatpak run --command=spotify com.spotify.Client'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd.Context())
	if err != nil {
		return err
	}

	res := desktop.NormalizeExec(strings.Join(args, " "), cfg.SearchPath)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Command)

	var notes []string
	if res.Sandboxed {
		notes = append(notes, "sandboxed")
	}
	if res.Resolved {
		notes = append(notes, "resolved on search path")
	}
	if res.Err != nil {
		notes = append(notes, "fallback: "+res.Err.Error())
	}
	if len(notes) > 0 {
		fmt.Fprintf(out, "  %s%s%s\n", colorGray, strings.Join(notes, ", "), colorReset)
	}
	return nil
}
