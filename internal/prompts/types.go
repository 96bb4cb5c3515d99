// Package prompts implements file-backed system prompts: each prompt is a
// Markdown note in a vault folder, with timestamps carried in front-matter.
// The vault is the source of truth; an in-memory snapshot serves reads and
// is reconciled against out-of-band edits by the Watcher.
package prompts

import "errors"

// UserPrompt is a single named system prompt.
type UserPrompt struct {
	// Title is the unique (case-insensitive) name; also the file's base name.
	Title string `json:"title"`

	// Content is the prompt body with front-matter stripped.
	Content string `json:"content"`

	// CreatedMs is the creation time in milliseconds since epoch.
	CreatedMs int64 `json:"createdMs"`

	// ModifiedMs is the last-modification time in milliseconds since epoch.
	ModifiedMs int64 `json:"modifiedMs"`

	// LastUsedMs is the last time the prompt was selected (0 = never).
	LastUsedMs int64 `json:"lastUsedMs"`
}

// ValidationError reports a user-correctable problem with a prompt title.
// It is the only domain error; storage failures propagate as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
