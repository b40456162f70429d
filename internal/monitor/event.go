// Package monitor implements the file integrity monitoring core: resolving
// watch roots, running one recursive filesystem subscription per root, and
// translating raw change notifications into live-log records. The Supervisor
// ties the event pipeline to the periodic rotation and retention cycle.
package monitor

// EventKind is the closed set of filesystem mutations the monitor reports.
type EventKind int

const (
	// KindCreated marks a newly created entry.
	KindCreated EventKind = iota
	// KindModified marks a content change to an existing entry.
	KindModified
	// KindDeleted marks a removed entry.
	KindDeleted
	// KindMoved marks a rename; both source and destination are known.
	KindMoved
)

// String returns the human-readable kind name used in log records.
func (k EventKind) String() string {
	switch k {
	case KindCreated:
		return "Created"
	case KindModified:
		return "Modified"
	case KindDeleted:
		return "Deleted"
	case KindMoved:
		return "Moved"
	default:
		return "Unknown"
	}
}

// Icon returns the record icon for the kind, matching the original log format.
func (k EventKind) Icon() string {
	switch k {
	case KindCreated:
		return "✨"
	case KindModified:
		return "🔄"
	case KindDeleted:
		return "❌"
	case KindMoved:
		return "🔀"
	default:
		return "❓"
	}
}

// ChangeEvent is one observed filesystem mutation, produced by a watch
// subscription and consumed exactly once by the translator.
type ChangeEvent struct {
	Kind     EventKind
	Path     string
	DestPath string // Moved only
	IsDir    bool
}
