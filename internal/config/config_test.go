package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		Getenv:        envMap(map[string]string{"PATH": "/usr/local/bin:/usr/bin"}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultDataDir}, cfg.DataDirs)
	assert.Equal(t, []string{"/usr/share/applications"}, cfg.DescriptorDirs())
	assert.Equal(t, []string{"/usr/local/bin", "/usr/bin"}, cfg.SearchPath)
	assert.Equal(t, DefaultFallbackIcon, cfg.FallbackIcon)
	assert.True(t, cfg.Watch)
	assert.Equal(t, log.InfoLevel, cfg.Level())
	assert.Empty(t, cfg.Fixups)
	assert.Empty(t, cfg.File)
}

func TestLoad_XDGDataDirs(t *testing.T) {
	cfg, err := Load(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		Getenv: envMap(map[string]string{
			"XDG_DATA_DIRS": "/usr/local/share/::/usr/share/:/var/lib/flatpak/exports/share",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/usr/local/share/applications",
		"/usr/share/applications",
		"/var/lib/flatpak/exports/share/applications",
	}, cfg.DescriptorDirs())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
data_dirs = ["/opt/share", "/usr/share"]
applications_subdir = "apps"
fallback_icon = "/opt/icons/term.svg"
watch = false
log_level = "debug"
icon_patterns = ["/opt/icons/*"]
search_path = ["/opt/bin"]

[[fixups]]
from = "/opt/App/App.bin"
to = "/opt/App/App"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load(context.Background(), LoadOptions{
		ConfigDirPath: dir,
		Getenv: envMap(map[string]string{
			"XDG_DATA_DIRS": "/ignored/share",
			"PATH":          "/ignored/bin",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.File)
	assert.Equal(t, []string{"/opt/share/apps", "/usr/share/apps"}, cfg.DescriptorDirs(),
		"file data_dirs beat XDG_DATA_DIRS")
	assert.Equal(t, []string{"/opt/bin"}, cfg.SearchPath)
	assert.Equal(t, "/opt/icons/term.svg", cfg.FallbackIcon)
	assert.False(t, cfg.Watch)
	assert.Equal(t, log.DebugLevel, cfg.Level())
	assert.Equal(t, []string{"/opt/icons/*"}, cfg.IconPatterns)
	assert.Equal(t, map[string]string{"/opt/App/App.bin": "/opt/App/App"}, cfg.FixupMap(),
		"fixup paths keep their case")
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`data_dirs = ["/from/file"]`), 0o644))

	cfg, err := Load(context.Background(), LoadOptions{
		ConfigDirPath: dir,
		Getenv: envMap(map[string]string{
			"APPMETA_DATA_DIRS":     "/a:/b",
			"APPMETA_SEARCH_PATH":   "/x/bin",
			"APPMETA_ICON_PATTERNS": "/i/*:/j/*",
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, cfg.DataDirs)
	assert.Equal(t, []string{"/x/bin"}, cfg.SearchPath)
	assert.Equal(t, []string{"/i/*", "/j/*"}, cfg.IconPatterns)
}

func TestLoad_ExplicitFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(p, []byte(`log_level = "warn"`), 0o644))

	cfg, err := Load(context.Background(), LoadOptions{ConfigFilePath: p, Getenv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, p, cfg.File)
	assert.Equal(t, log.WarnLevel, cfg.Level())
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.toml"),
		Getenv:         envMap(nil),
	})
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`log_level = "loud"`), 0o644))
	_, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir, Getenv: envMap(nil)})
	assert.Error(t, err)

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[fixups]]\nfrom = \"/a\"\n"), 0o644))
	_, err = Load(context.Background(), LoadOptions{ConfigDirPath: dir, Getenv: envMap(nil)})
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("data_dirs = [unterminated"), 0o644))
	_, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir, Getenv: envMap(nil)})
	assert.Error(t, err)
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescriptorDirs_Dedup(t *testing.T) {
	cfg := &Config{DataDirs: []string{"/usr/share", "/usr/share/", "", "/opt"}, ApplicationsSubdir: "applications"}
	assert.Equal(t, []string{"/usr/share/applications", "/opt/applications"}, cfg.DescriptorDirs())
}

func TestDescriptorDirs_RelativeMadeAbsolute(t *testing.T) {
	root := t.TempDir()
	chdir(t, root)

	cfg := &Config{DataDirs: []string{".", "share", root}, ApplicationsSubdir: "applications"}
	assert.Equal(t, []string{
		filepath.Join(root, "applications"),
		filepath.Join(root, "share", "applications"),
	}, cfg.DescriptorDirs())
}

// chdir stands in for testing.T.Chdir (Go 1.24+): it changes the working
// directory and restores the previous one when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
