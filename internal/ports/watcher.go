package ports

import "context"

// WatchOp classifies a descriptor change delivered by a Watcher.
type WatchOp int

const (
	// OpChanged covers creation and modification. The file should be (re)parsed.
	OpChanged WatchOp = iota

	// OpRemoved covers deletion and rename-away. Index entries for the file
	// should be dropped.
	OpRemoved
)

// String returns the op name.
func (o WatchOp) String() string {
	switch o {
	case OpChanged:
		return "changed"
	case OpRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// WatchEvent is one descriptor file change.
type WatchEvent struct {
	Path string // absolute path of the descriptor file
	Op   WatchOp
}

// Watcher monitors a set of descriptor directories (non-recursively) and reports
// changes to descriptor files. The adapter (fsnotify) filters out files that are
// not descriptors before invoking onEvent.
type Watcher interface {
	// Watch registers dirs and starts delivering events. onEvent is always
	// invoked from a single goroutine, in delivery order, one event at a time.
	// Delivery stops when ctx is cancelled or Stop is called. Directories that
	// do not exist are skipped; an error is returned only when none of dirs
	// could be registered.
	Watch(ctx context.Context, dirs []string, onEvent func(WatchEvent)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onEvent calls will fire. Safe to call multiple times.
	Stop() error
}
