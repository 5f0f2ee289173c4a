package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/corey/appmeta/internal/app"
	"github.com/corey/appmeta/internal/config"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "appmeta",
	Short:         "Application metadata for running executables",
	Long:          "Indexes Desktop Entry files and resolves executable paths to display names, icons and descriptions.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/appmeta/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// loadSettings resolves configuration and applies the global flags.
func loadSettings(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, config.LoadOptions{ConfigFilePath: configPath})
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		if _, err := log.ParseLevel(logLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// newLogger returns the stderr logger for cfg.
func newLogger(cfg *config.Config) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          config.AppName,
		ReportTimestamp: true,
		Level:           cfg.Level(),
	})
}

// newApp loads settings and wires an App. watch=false forces scan-once mode.
func newApp(ctx context.Context, watch bool, onUpdate func(app.Update)) (*app.App, error) {
	cfg, err := loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !watch {
		cfg.Watch = false
	}
	return app.New(app.Config{
		Settings: cfg,
		Logger:   newLogger(cfg),
		OnUpdate: onUpdate,
	})
}
