package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  "Shows the config file in use, descriptor directories, search path, icon patterns and fixups after defaults, file and environment are merged.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd.Context())
	if err != nil {
		return err
	}

	file := cfg.File
	if file == "" {
		file = colorGray + "(none, using defaults)" + colorReset
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s⚡ appmeta config%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  File:          %s\n", file)
	fmt.Fprintf(out, "  Descriptors:   %s\n", strings.Join(cfg.DescriptorDirs(), ", "))
	fmt.Fprintf(out, "  Search path:   %s\n", strings.Join(cfg.SearchPath, ":"))
	fmt.Fprintf(out, "  Icon patterns: %s\n", strings.Join(cfg.IconPatterns, ", "))
	fmt.Fprintf(out, "  Fallback icon: %s\n", cfg.FallbackIcon)
	fmt.Fprintf(out, "  Watch:         %t\n", cfg.Watch)
	fmt.Fprintf(out, "  Log level:     %s\n", cfg.Level())
	for _, f := range cfg.Fixups {
		fmt.Fprintf(out, "  Fixup:         %s → %s\n", f.From, f.To)
	}
	return nil
}
