package appindex

import (
	"path/filepath"

	"github.com/corey/appmeta/internal/ports"
)

// LookupByPath resolves a full executable path to a record.
//
// Order: fixup substitution, the path itself, the path's base name, then a
// synthetic record named after the base name with a discovered icon or
// defaultIcon. The returned record is never nil.
func (idx *Index) LookupByPath(path, defaultIcon string) (rec *ports.Record) {
	base := filepath.Base(path)
	defer func() {
		if r := recover(); r != nil {
			rec = synthetic(base, defaultIcon)
		}
	}()

	key := idx.fixups.Apply(path)

	idx.mu.RLock()
	found, ok := idx.byKey[key]
	if !ok {
		found, ok = idx.byKey[base]
	}
	idx.mu.RUnlock()
	if ok {
		return found
	}

	// Globbing happens outside the lock.
	icon := defaultIcon
	if idx.icons != nil {
		if p, ok := idx.icons.Find(base); ok {
			icon = p
		}
	}
	return synthetic(base, icon)
}

// LookupByBinaryName resolves a bare binary name to a record, falling back to
// a synthetic record with defaultIcon. The returned record is never nil.
func (idx *Index) LookupByBinaryName(name, defaultIcon string) (rec *ports.Record) {
	base := filepath.Base(name)
	defer func() {
		if r := recover(); r != nil {
			rec = synthetic(base, defaultIcon)
		}
	}()

	if found, ok := idx.Get(base); ok {
		return found
	}
	return synthetic(base, defaultIcon)
}

func synthetic(name, icon string) *ports.Record {
	return &ports.Record{DisplayName: name, IconPath: icon}
}
