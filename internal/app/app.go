// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the appmeta index: create, start, stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/corey/appmeta/internal/adapters/fsnotify"
	"github.com/corey/appmeta/internal/adapters/icontheme"
	"github.com/corey/appmeta/internal/config"
	"github.com/corey/appmeta/internal/domain/appindex"
	"github.com/corey/appmeta/internal/domain/desktop"
	"github.com/corey/appmeta/internal/domain/locale"
	"github.com/corey/appmeta/internal/ports"
)

// Update describes one change applied to the index by the scanner or watcher.
type Update struct {
	Path    string
	Op      ports.WatchOp
	Outcome desktop.Outcome // meaningful for OpChanged only
	Keys    []string        // keys installed (Parsed) or empty
	Removed int             // keys dropped
	Err     error           // parse failure, index left untouched
}

// Config holds initialization parameters for the App.
type Config struct {
	Settings *config.Config // required
	Logger   *log.Logger    // nil = discard

	// Locale selects localized descriptions. nil = resolve from the environment.
	Locale *locale.Tags

	// Icons overrides the icon finder. nil = icontheme over Settings.IconPatterns.
	Icons ports.IconFinder

	// NewWatcher overrides watcher construction. nil = fsnotify.
	NewWatcher func() (ports.Watcher, error)

	// OnUpdate is called after every watcher-driven index change, from the
	// watcher goroutine.
	OnUpdate func(Update)
}

// App is the top-level container wiring all components together.
type App struct {
	Settings *config.Config
	Index    *appindex.Index
	Parser   *desktop.Parser
	Icons    ports.IconFinder

	logger     *log.Logger
	newWatcher func() (ports.Watcher, error)
	onUpdate   func(Update)

	mu       sync.Mutex // guards watcher and started
	watcher  ports.Watcher
	started  bool
	live     atomic.Bool
	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates an App with all dependencies wired. Does not scan or watch.
func New(cfg Config) (*App, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tags := locale.Resolve()
	if cfg.Locale != nil {
		tags = *cfg.Locale
	}
	icons := cfg.Icons
	if icons == nil {
		icons = icontheme.NewFinder(cfg.Settings.IconPatterns)
	}
	newWatcher := cfg.NewWatcher
	if newWatcher == nil {
		newWatcher = func() (ports.Watcher, error) { return fsnotify.NewWatcher() }
	}

	fixups := appindex.DefaultFixups().WithExtra(cfg.Settings.FixupMap())
	parser := desktop.New(tags, icons, cfg.Settings.FallbackIcon, cfg.Settings.SearchPath, logger)

	return &App{
		Settings:   cfg.Settings,
		Index:      appindex.New(fixups, icons),
		Parser:     parser,
		Icons:      icons,
		logger:     logger,
		newWatcher: newWatcher,
		onUpdate:   cfg.OnUpdate,
		stopped:    make(chan struct{}),
	}, nil
}

// Start scans every descriptor directory, then begins watching them for
// changes until ctx is cancelled or Stop is called. A watcher that cannot be
// set up is not an error: the index stays as scanned and Live reports false.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("app already started")
	}
	a.started = true

	stats := a.Scan(ctx)
	a.logger.Info("scan complete",
		"dirs", stats.Dirs, "parsed", stats.Parsed, "skipped", stats.Skipped,
		"failed", stats.Failed, "keys", a.Index.Len())
	if stats.Interrupted {
		return fmt.Errorf("scan: %w", ctx.Err())
	}

	if !a.Settings.Watch {
		a.logger.Debug("live updates disabled by configuration")
		return nil
	}

	w, err := a.newWatcher()
	if err != nil {
		a.logger.Warn("file watcher unavailable, index will not follow changes", "err", err)
		return nil
	}
	if err := w.Watch(ctx, a.Settings.DescriptorDirs(), a.onDescriptorEvent); err != nil {
		_ = w.Stop()
		if errors.Is(err, fsnotify.ErrNoDirectories) {
			a.logger.Warn("no descriptor directories to watch", "dirs", a.Settings.DescriptorDirs())
		} else {
			a.logger.Warn("file watcher unavailable, index will not follow changes", "err", err)
		}
		return nil
	}
	a.watcher = w
	a.live.Store(true)

	go func() {
		select {
		case <-ctx.Done():
			a.live.Store(false)
		case <-a.stopped:
		}
	}()
	return nil
}

// Stop ends live updates. Safe to call more than once, and before Start.
func (a *App) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.live.Store(false)
	a.stopOnce.Do(func() { close(a.stopped) })
	if a.watcher == nil {
		return nil
	}
	err := a.watcher.Stop()
	a.watcher = nil
	if err != nil {
		return fmt.Errorf("stop watcher: %w", err)
	}
	return nil
}

// Live reports whether the index is following descriptor changes.
func (a *App) Live() bool {
	return a.live.Load()
}

// LookupByPath resolves a running executable's full path to a record. An
// empty defaultIcon selects the configured fallback icon.
func (a *App) LookupByPath(path, defaultIcon string) *ports.Record {
	return a.Index.LookupByPath(path, a.defaultIcon(defaultIcon))
}

// LookupByBinaryName resolves a bare binary name to a record. An empty
// defaultIcon selects the configured fallback icon.
func (a *App) LookupByBinaryName(name, defaultIcon string) *ports.Record {
	return a.Index.LookupByBinaryName(name, a.defaultIcon(defaultIcon))
}

func (a *App) defaultIcon(icon string) string {
	if icon == "" {
		return a.Settings.FallbackIcon
	}
	return icon
}
