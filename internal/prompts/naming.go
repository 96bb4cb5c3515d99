package prompts

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Extension is the file extension for prompt files.
const Extension = ".md"

// invalidTitleChars matches characters that cannot appear in a note title.
var invalidTitleChars = regexp.MustCompile("[#<>:\"/\\\\|?*\\[\\]^\\x00-\\x1f]")

// ValidateTitle checks a prompt title for naming-rule violations and
// case-insensitive collisions against existing prompts. currentTitle, if
// non-empty, names the prompt being edited so an unchanged title passes.
// Returns a *ValidationError on failure, nil otherwise.
func ValidateTitle(title string, existing []UserPrompt, currentTitle string) error {
	trimmed := strings.TrimSpace(title)

	if currentTitle != "" && trimmed == currentTitle {
		return nil
	}

	if trimmed == "" {
		return &ValidationError{Reason: "prompt name cannot be empty"}
	}

	if invalidTitleChars.MatchString(trimmed) {
		return &ValidationError{Reason: `prompt name contains invalid characters, avoid: # < > : " / \ | ? * [ ] ^`}
	}

	for _, p := range existing {
		if strings.EqualFold(p.Title, trimmed) {
			return &ValidationError{Reason: "a prompt with this name already exists"}
		}
	}

	return nil
}

// CopyTitle generates a unique title for a duplicated prompt by appending
// " (copy)", then " (copy 2)", " (copy 3)", ... until no case-insensitive
// collision remains.
func CopyTitle(original string, existing []UserPrompt) string {
	title := original + " (copy)"
	counter := 1

	for titleExists(title, existing) {
		counter++
		title = fmt.Sprintf("%s (copy %d)", original, counter)
	}

	return title
}

func titleExists(title string, existing []UserPrompt) bool {
	for _, p := range existing {
		if strings.EqualFold(p.Title, title) {
			return true
		}
	}
	return false
}

// FilePath returns the vault-relative path of the prompt file for title.
func FilePath(folder, title string) string {
	return path.Join(folder, title+Extension)
}

// TitleFromPath returns the title encoded in a prompt file path.
func TitleFromPath(p string) string {
	return strings.TrimSuffix(path.Base(p), Extension)
}

// IsPromptFile reports whether p is a Markdown file directly inside folder.
// Files in nested subfolders are not prompt files.
func IsPromptFile(folder, p string) bool {
	if p == "" || path.Ext(p) != Extension {
		return false
	}
	if !strings.HasPrefix(p, folder+"/") {
		return false
	}
	rel := p[len(folder)+1:]
	return !strings.Contains(rel, "/")
}
