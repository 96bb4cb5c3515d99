// Package vault abstracts the note vault: a directory tree of user-editable
// text files plus a change-notification stream. The rest of the system talks
// to this interface so tests can substitute an in-memory implementation.
package vault

// EventType classifies a vault change notification.
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is a single change notification. Paths are vault-relative and
// slash-separated. OldPath is set only for rename events; for renames
// observed at the OS level only the old path may be known.
type Event struct {
	Type    EventType
	Path    string
	OldPath string
}

// Vault provides file primitives over the note vault.
type Vault interface {
	// Read returns the content of the file at path.
	Read(path string) (string, error)

	// Write creates or overwrites the file at path.
	Write(path, content string) error

	// Delete removes the file at path. Deleting a missing file is an error;
	// callers that want idempotent delete check Exists first.
	Delete(path string) error

	// Rename moves a file from oldPath to newPath.
	Rename(oldPath, newPath string) error

	// Exists reports whether a file or folder exists at path.
	Exists(path string) bool

	// List returns the vault-relative paths of files directly inside folder.
	List(folder string) ([]string, error)

	// EnsureFolder creates folder (and intermediate folders) if missing.
	EnsureFolder(folder string) error

	// Events returns the change-notification stream. The channel is closed
	// when the vault is closed.
	Events() <-chan Event

	// Close releases watcher resources and closes the event stream.
	Close() error
}
