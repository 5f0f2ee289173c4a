package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/appmeta/internal/app"
	"github.com/corey/appmeta/internal/domain/desktop"
	"github.com/corey/appmeta/internal/ports"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan, then follow descriptor changes until interrupted",
	Long:  "Builds the index and keeps it current as Desktop Entry files are added, edited or removed. Each change is printed. Stop with Ctrl-C.",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	a, err := newApp(ctx, true, func(u app.Update) {
		fmt.Fprint(out, formatUpdate(u))
	})
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	mode := "live"
	if !a.Live() {
		mode = "scan-once"
	}
	fmt.Fprintf(out, "%s⚡ %d keys from %d files%s │ %s\n", colorBold, a.Index.Len(), a.Index.Sources(), colorReset, mode)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "\n⚡ shutting down...")
	return a.Stop()
}

// formatUpdate renders one index change.
//
//	+ org.gnome.gedit.desktop  3 keys
//	- org.gnome.gedit.desktop  3 keys
func formatUpdate(u app.Update) string {
	name := filepath.Base(u.Path)
	switch {
	case u.Op == ports.OpRemoved:
		return fmt.Sprintf("%s-%s %s  %d keys\n", colorYellow, colorReset, name, u.Removed)
	case u.Outcome == desktop.Parsed:
		return fmt.Sprintf("%s+%s %s  %d keys\n", colorGreen, colorReset, name, len(u.Keys))
	case u.Outcome == desktop.Skipped:
		return fmt.Sprintf("%s-%s %s  skipped, %d keys\n", colorYellow, colorReset, name, u.Removed)
	default:
		return fmt.Sprintf("%s!%s %s  %v\n", colorYellow, colorReset, name, u.Err)
	}
}
