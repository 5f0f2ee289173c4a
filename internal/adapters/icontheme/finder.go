// Package icontheme implements ports.IconFinder by globbing icon-theme
// directories with github.com/bmatcuk/doublestar/v4.
//
// This is a last resort for hosts whose icon-theme chain is not configured:
// a name is matched as a plain substring of the candidate path, and the first
// hit in walk order is returned.
package icontheme

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns are the globs searched when no patterns are configured.
var DefaultPatterns = []string{
	"/usr/share/icons/*/*/apps/*",
	"/usr/share/pixmaps/*",
}

// errFound stops a GlobWalk at the first match.
var errFound = errors.New("icontheme: found")

// Finder implements ports.IconFinder. Results, including misses, are memoised
// per name until Reset is called.
type Finder struct {
	patterns []string

	mu   sync.Mutex
	memo map[string]string // name -> path ("" for a miss)
}

// NewFinder creates a finder over patterns. A nil or empty slice selects
// DefaultPatterns. Invalid patterns are dropped.
func NewFinder(patterns []string) *Finder {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if doublestar.ValidatePathPattern(p) {
			valid = append(valid, p)
		}
	}
	return &Finder{
		patterns: valid,
		memo:     make(map[string]string),
	}
}

// Patterns returns the active glob patterns.
func (f *Finder) Patterns() []string {
	out := make([]string, len(f.patterns))
	copy(out, f.patterns)
	return out
}

// Find returns the first icon path containing name.
func (f *Finder) Find(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	f.mu.Lock()
	if p, ok := f.memo[name]; ok {
		f.mu.Unlock()
		return p, p != ""
	}
	f.mu.Unlock()

	found := f.search(name)

	f.mu.Lock()
	f.memo[name] = found
	f.mu.Unlock()
	return found, found != ""
}

// Reset drops memoised results. Called when descriptors change, since a new
// application usually ships new icons.
func (f *Finder) Reset() {
	f.mu.Lock()
	f.memo = make(map[string]string)
	f.mu.Unlock()
}

func (f *Finder) search(name string) string {
	var hit string
	f.walk(func(full string) bool {
		if strings.Contains(full, name) {
			hit = full
			return true
		}
		return false
	})
	return hit
}

// walk visits every path matched by the patterns, pattern by pattern, until
// visit returns true. Unreadable or missing base directories are skipped.
func (f *Finder) walk(visit func(full string) bool) {
	for _, pattern := range f.patterns {
		base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
		if rel == "" {
			continue
		}
		err := doublestar.GlobWalk(os.DirFS(base), rel, func(path string, d fs.DirEntry) error {
			if visit(filepath.Join(base, filepath.FromSlash(path))) {
				return errFound
			}
			return nil
		})
		if errors.Is(err, errFound) {
			return
		}
	}
}
