// Package appindex holds the live mapping from lookup key (executable path,
// descriptor base name, resolved symlink target) to application record.
//
// Index owns its maps and a sync.RWMutex: writers replace a descriptor's whole
// key set under the exclusive lock, lookups take the shared lock. Records are
// immutable pointers, so a reader sees either the old record or the new one,
// never a mix.
package appindex

import (
	"sort"
	"sync"

	"github.com/corey/appmeta/internal/ports"
)

// Index maps lookup keys to records.
type Index struct {
	mu       sync.RWMutex
	byKey    map[string]*ports.Record
	bySource map[string][]string // source file -> keys it registered
	fixups   Fixups
	icons    ports.IconFinder
}

// Entry is one key/record pair, used for listing.
type Entry struct {
	Key    string
	Record ports.Record
}

// New creates an empty index. fixups may be nil (no substitutions); icons may
// be nil (lookup misses always use the caller's default icon).
func New(fixups Fixups, icons ports.IconFinder) *Index {
	return &Index{
		byKey:    make(map[string]*ports.Record),
		bySource: make(map[string][]string),
		fixups:   fixups,
		icons:    icons,
	}
}

// Replace installs rec under keys on behalf of source, first dropping every
// key source registered previously. Keys now owned by another source are left
// alone unless they appear in keys, in which case the newest write wins.
func (idx *Index) Replace(source string, keys []string, rec *ports.Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeSourceLocked(source)
	if rec == nil || len(keys) == 0 {
		return
	}
	owned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		idx.byKey[k] = rec
		owned = append(owned, k)
	}
	idx.bySource[source] = owned
}

// RemoveSource drops every key whose record came from source and returns how
// many were removed.
func (idx *Index) RemoveSource(source string) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.removeSourceLocked(source)
}

// RemoveFirst drops only the first key found whose record came from source.
// Map iteration order makes "first" arbitrary. This is the narrow delete some
// callers historically relied on; RemoveSource is what the watcher uses.
func (idx *Index) RemoveFirst(source string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for k, rec := range idx.byKey {
		if rec.SourceFile != source {
			continue
		}
		delete(idx.byKey, k)
		keys := idx.bySource[source]
		for i, owned := range keys {
			if owned == k {
				keys = append(keys[:i], keys[i+1:]...)
				break
			}
		}
		if len(keys) == 0 {
			delete(idx.bySource, source)
		} else {
			idx.bySource[source] = keys
		}
		return true
	}
	return false
}

// Must be called with idx.mu held.
func (idx *Index) removeSourceLocked(source string) int {
	removed := 0
	for _, k := range idx.bySource[source] {
		// The key may since have been claimed by another descriptor.
		if rec, ok := idx.byKey[k]; ok && rec.SourceFile == source {
			delete(idx.byKey, k)
			removed++
		}
	}
	delete(idx.bySource, source)
	return removed
}

// Get returns the record stored under key.
func (idx *Index) Get(key string) (*ports.Record, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	rec, ok := idx.byKey[key]
	return rec, ok
}

// Len returns the number of keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byKey)
}

// Sources returns the number of descriptor files with at least one key.
func (idx *Index) Sources() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.bySource)
}

// Entries returns a copy of the index sorted by key.
func (idx *Index) Entries() []Entry {
	idx.mu.RLock()
	out := make([]Entry, 0, len(idx.byKey))
	for k, rec := range idx.byKey {
		out = append(out, Entry{Key: k, Record: *rec})
	}
	idx.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// KeysFor returns the keys source currently owns, sorted.
func (idx *Index) KeysFor(source string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []string
	for _, k := range idx.bySource[source] {
		if rec, ok := idx.byKey[k]; ok && rec.SourceFile == source {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
