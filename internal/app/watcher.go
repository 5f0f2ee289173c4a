package app

import (
	"github.com/corey/appmeta/internal/ports"
)

// resetter is implemented by icon finders that memoise results.
type resetter interface {
	Reset()
}

// onDescriptorEvent handles a descriptor create/modify/delete event from the
// watcher. It is only ever called from the watcher goroutine.
func (a *App) onDescriptorEvent(ev ports.WatchEvent) {
	if ev.Op != ports.OpChanged && ev.Op != ports.OpRemoved {
		return
	}

	// Installs and removals usually bring icon changes with them. The memo is
	// dropped before parsing so the new descriptor sees the current icon set.
	if r, ok := a.Icons.(resetter); ok {
		r.Reset()
	}

	var u Update
	if ev.Op == ports.OpChanged {
		u = a.apply(a.Parser.Parse(ev.Path))
	} else {
		u = Update{Path: ev.Path, Removed: a.Index.RemoveSource(ev.Path)}
		a.logger.Debug("descriptor removed", "path", ev.Path, "keys", u.Removed)
	}
	u.Op = ev.Op

	if a.onUpdate != nil {
		a.onUpdate(u)
	}
}
