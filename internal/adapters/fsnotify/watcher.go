// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches a flat set of descriptor directories, filters out anything that is not a
// descriptor file, and delivers events strictly in order from one goroutine.
package fsnotify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/appmeta/internal/ports"
)

// DescriptorExt is the suffix of files that produce events.
const DescriptorExt = ".desktop"

// DefaultDebounce is how long a changed descriptor must stay quiet before
// its OpChanged is delivered. Editors and package managers often write a
// file in several steps.
const DefaultDebounce = 50 * time.Millisecond

// ErrNoDirectories is returned by Watch when none of the requested
// directories could be registered.
var ErrNoDirectories = errors.New("fsnotify: no watchable directories")

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	exited  chan struct{}
	stopped bool
	started bool
	mu      sync.Mutex

	debounce time.Duration
}

// NewWatcher creates a new file system watcher. An error here means the
// notification facility is unavailable on this host.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
		debounce: DefaultDebounce,
	}, nil
}

// SetDebounce changes the quiet period for changed files. Zero or less
// delivers every change immediately. Must be called before Watch.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Watch registers each existing directory in dirs and starts the event loop.
func (w *Watcher) Watch(ctx context.Context, dirs []string, onEvent func(ports.WatchEvent)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("fsnotify: watcher stopped")
	}
	if w.started {
		return fmt.Errorf("fsnotify: Watch called more than once")
	}

	registered := 0
	var lastErr error
	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			lastErr = err
			continue
		}
		info, err := os.Stat(absDir)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := w.fw.Add(absDir); err != nil {
			lastErr = fmt.Errorf("watch %s: %w", absDir, err)
			continue
		}
		registered++
	}
	if registered == 0 {
		if lastErr != nil {
			return fmt.Errorf("%w: %v", ErrNoDirectories, lastErr)
		}
		return ErrNoDirectories
	}

	w.started = true
	go w.loop(ctx, onEvent)
	return nil
}

func (w *Watcher) loop(ctx context.Context, onEvent func(ports.WatchEvent)) {
	defer close(w.exited)

	// Debounce state: changed paths wait until they have been quiet for
	// w.debounce, so a file caught mid-write is parsed once, complete.
	due := make(map[string]time.Time)
	flush := time.NewTimer(time.Hour)
	flush.Stop()
	defer flush.Stop()

	deliver := func(ev ports.WatchEvent) bool {
		// A Stop racing with a pending event must not deliver it.
		select {
		case <-w.done:
			return false
		case <-ctx.Done():
			return false
		default:
		}
		onEvent(ev)
		return true
	}

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			ev, relevant := translate(event)
			if !relevant {
				continue
			}
			if ev.Op == ports.OpRemoved || w.debounce <= 0 {
				delete(due, ev.Path)
				if !deliver(ev) {
					return
				}
				continue
			}
			due[ev.Path] = time.Now().Add(w.debounce)
			if len(due) == 1 {
				flush.Reset(w.debounce)
			}

		case <-flush.C:
			for _, path := range ready(due, time.Now()) {
				delete(due, path)
				if !deliver(ports.WatchEvent{Path: path, Op: ports.OpChanged}) {
					return
				}
			}
			if next, ok := earliest(due); ok {
				flush.Reset(time.Until(next))
			}

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Errors (queue overflow mostly) are dropped. The next event
			// on the same file re-syncs it.

		case <-ctx.Done():
			return

		case <-w.done:
			return
		}
	}
}

// ready returns the paths whose quiet period has passed, oldest first.
func ready(due map[string]time.Time, now time.Time) []string {
	var out []string
	for path, at := range due {
		if !at.After(now) {
			out = append(out, path)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if due[out[i]].Equal(due[out[j]]) {
			return out[i] < out[j]
		}
		return due[out[i]].Before(due[out[j]])
	})
	return out
}

func earliest(due map[string]time.Time) (time.Time, bool) {
	var first time.Time
	found := false
	for _, at := range due {
		if !found || at.Before(first) {
			first, found = at, true
		}
	}
	return first, found
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.done)
	err := w.fw.Close()
	w.mu.Unlock()

	if started {
		<-w.exited
	}
	return err
}

// translate maps a raw fsnotify event onto a descriptor event.
func translate(event fsnotify.Event) (ports.WatchEvent, bool) {
	if !isDescriptor(event.Name) {
		return ports.WatchEvent{}, false
	}
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return ports.WatchEvent{Path: event.Name, Op: ports.OpRemoved}, true
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		return ports.WatchEvent{Path: event.Name, Op: ports.OpChanged}, true
	default:
		return ports.WatchEvent{}, false
	}
}

// isDescriptor returns true if path names a descriptor file (not a hidden
// editor temp file).
func isDescriptor(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, DescriptorExt)
}
