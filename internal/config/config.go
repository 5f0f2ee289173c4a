// Package config loads appmeta settings with Viper.
//
// Precedence, lowest first: built-in defaults, the optional TOML file
// ($XDG_CONFIG_HOME/appmeta/config.toml, or --config), then APPMETA_<KEY>
// environment overrides. XDG_DATA_DIRS and PATH fill data_dirs and search_path
// when the file does not set them.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "appmeta"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "APPMETA"

	// DefaultDataDir is used when XDG_DATA_DIRS is unset.
	DefaultDataDir = "/usr/share/"
	// DefaultApplicationsSubdir is appended to each data dir.
	DefaultApplicationsSubdir = "applications"
	// DefaultFallbackIcon is used for descriptors with no icon of their own.
	DefaultFallbackIcon = "/usr/share/icons/hicolor/scalable/apps/utilities-terminal.svg"
)

// Fixup is one extra executable-path substitution.
type Fixup struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// Config is the resolved configuration.
type Config struct {
	DataDirs           []string `mapstructure:"data_dirs"`
	ApplicationsSubdir string   `mapstructure:"applications_subdir"`
	SearchPath         []string `mapstructure:"search_path"`
	IconPatterns       []string `mapstructure:"icon_patterns"`
	FallbackIcon       string   `mapstructure:"fallback_icon"`
	Watch              bool     `mapstructure:"watch"`
	LogLevel           string   `mapstructure:"log_level"`
	Fixups             []Fixup  `mapstructure:"fixups"`

	// File is the config file that was read, or "" when none was.
	File string `mapstructure:"-"`
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// Getenv replaces os.Getenv for the list-valued variables. Tests use it.
	Getenv func(string) string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDirs:           []string{DefaultDataDir},
		ApplicationsSubdir: DefaultApplicationsSubdir,
		IconPatterns: []string{
			"/usr/share/icons/*/*/apps/*",
			"/usr/share/pixmaps/*",
		},
		FallbackIcon: DefaultFallbackIcon,
		Watch:        true,
		LogLevel:     "info",
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/appmeta, defaulting to ~/.config/appmeta.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName), nil
}

// Load resolves configuration from defaults, file and environment.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("data_dirs", defaults.DataDirs)
	v.SetDefault("applications_subdir", defaults.ApplicationsSubdir)
	v.SetDefault("search_path", []string{})
	v.SetDefault("icon_patterns", defaults.IconPatterns)
	v.SetDefault("fallback_icon", defaults.FallbackIcon)
	v.SetDefault("watch", defaults.Watch)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file, err := readConfigFile(v, opts)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = file

	// List-valued env vars use ':' rather than viper's whitespace splitting.
	if s := getenv(EnvPrefix + "_DATA_DIRS"); s != "" {
		cfg.DataDirs = splitList(s)
	} else if s := getenv("XDG_DATA_DIRS"); s != "" && !v.InConfig("data_dirs") {
		cfg.DataDirs = splitList(s)
	}
	if s := getenv(EnvPrefix + "_SEARCH_PATH"); s != "" {
		cfg.SearchPath = splitList(s)
	} else if !v.InConfig("search_path") {
		cfg.SearchPath = splitList(getenv("PATH"))
	}
	if s := getenv(EnvPrefix + "_ICON_PATTERNS"); s != "" {
		cfg.IconPatterns = splitList(s)
	}

	if len(cfg.DataDirs) == 0 {
		cfg.DataDirs = defaults.DataDirs
	}
	if cfg.ApplicationsSubdir == "" {
		cfg.ApplicationsSubdir = defaults.ApplicationsSubdir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if _, err := os.Stat(opts.ConfigFilePath); err != nil {
			return "", fmt.Errorf("config file not found: %s: %w", opts.ConfigFilePath, err)
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", opts.ConfigFilePath, err)
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		d, err := ConfigDir()
		if err != nil {
			// No home directory: run on defaults.
			return "", nil
		}
		dir = d
	}
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config in %s: %w", dir, err)
	}
	return v.ConfigFileUsed(), nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	for i, f := range c.Fixups {
		if f.From == "" || f.To == "" {
			return fmt.Errorf("fixups[%d]: both from and to are required", i)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// DescriptorDirs returns each data dir joined with the applications subdir,
// in order, without duplicates. Relative dirs are made absolute against the
// working directory so paths match the ones the watcher reports.
func (c *Config) DescriptorDirs() []string {
	seen := make(map[string]bool, len(c.DataDirs))
	out := make([]string, 0, len(c.DataDirs))
	for _, d := range c.DataDirs {
		if d == "" {
			continue
		}
		p := filepath.Join(d, c.ApplicationsSubdir)
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// FixupMap returns the configured extra fixups as a map.
func (c *Config) FixupMap() map[string]string {
	m := make(map[string]string, len(c.Fixups))
	for _, f := range c.Fixups {
		m[f.From] = f.To
	}
	return m
}

func splitList(s string) []string {
	var out []string
	for _, p := range filepath.SplitList(s) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
