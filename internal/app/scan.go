package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/appmeta/internal/domain/desktop"
)

// ScanStats holds statistics from a Scan.
type ScanStats struct {
	Dirs        int // directories that existed and were read
	Parsed      int
	Skipped     int
	Failed      int
	Interrupted bool // ctx was cancelled before every file was read
}

// Files returns the number of descriptor files visited.
func (s ScanStats) Files() int {
	return s.Parsed + s.Skipped + s.Failed
}

// Scan parses every descriptor in the configured directories and applies the
// results. Directories are visited in configured order and files in lexical
// order, so later files overwrite keys claimed by earlier ones. Missing
// directories are ignored.
func (a *App) Scan(ctx context.Context) ScanStats {
	var stats ScanStats
	var files []string
	for _, dir := range a.Settings.DescriptorDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				a.logger.Debug("descriptor directory missing", "dir", dir)
			} else {
				a.logger.Warn("cannot read descriptor directory", "dir", dir, "err", err)
			}
			continue
		}
		stats.Dirs++

		// os.ReadDir returns entries sorted by file name.
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") || !desktop.IsDescriptor(name) {
				continue
			}
			files = append(files, filepath.Join(dir, name))
		}
	}

	a.primeIcons(files)

	for _, path := range files {
		if ctx.Err() != nil {
			stats.Interrupted = true
			return stats
		}
		res := a.Parser.Parse(path)
		a.apply(res)
		switch res.Outcome {
		case desktop.Parsed:
			stats.Parsed++
		case desktop.Skipped:
			stats.Skipped++
		case desktop.Failed:
			stats.Failed++
		}
	}
	return stats
}

// primer is implemented by icon finders that can resolve names in bulk.
type primer interface {
	Prime(names []string) int
}

// primeIcons resolves every descriptor base name in one icon walk so the
// parser's per-file lookups hit the memo.
func (a *App) primeIcons(files []string) {
	p, ok := a.Icons.(primer)
	if !ok || len(files) == 0 {
		return
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = desktop.BaseName(f)
	}
	found := p.Prime(names)
	a.logger.Debug("icon memo primed", "names", len(names), "found", found)
}

// apply installs a parse result in the index. Parsed replaces the file's keys,
// Skipped removes them, Failed leaves the index untouched.
func (a *App) apply(res desktop.Result) Update {
	u := Update{Path: res.Path, Outcome: res.Outcome}
	switch res.Outcome {
	case desktop.Parsed:
		a.Index.Replace(res.Path, res.Keys, res.Record)
		u.Keys = res.Keys
		if res.ExecErr != nil {
			a.logger.Debug("exec normalised with fallback", "path", res.Path, "err", res.ExecErr)
		}
	case desktop.Skipped:
		u.Removed = a.Index.RemoveSource(res.Path)
		a.logger.Debug("descriptor skipped", "path", res.Path, "reason", res.Reason)
	case desktop.Failed:
		u.Err = res.Err
		a.logger.Warn("descriptor failed to parse", "path", res.Path, "err", res.Err)
	}
	return u
}
