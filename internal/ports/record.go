// Package ports defines the interfaces (contracts) that adapters must implement,
// plus the shared record type they exchange. Domain logic depends only on these
// definitions, never on concrete implementations.
package ports

// Record is the application identity attached to an executable.
//
// Records are immutable once built. A re-parsed descriptor produces a new
// Record that replaces the old pointer in the index; nothing edits one in place.
type Record struct {
	DisplayName string
	IconPath    string
	Description string // empty when the descriptor has no Comment

	// SourceFile is the descriptor that produced this record.
	// Empty for synthetic records built on a lookup miss.
	SourceFile string
}

// Synthetic reports whether r was built on a lookup miss rather than parsed
// from a descriptor file.
func (r *Record) Synthetic() bool {
	return r.SourceFile == ""
}
