package prompts

import (
	"path"
	"strings"

	"github.com/promptvault/promptvault/internal/config"
)

// Settings supplies the settings the prompt subsystem reads and writes.
type Settings interface {
	// PromptsFolder returns the vault-relative folder holding prompt files.
	PromptsFolder() string

	// DefaultPromptTitle returns the persisted global default prompt title.
	DefaultPromptTitle() string

	// SetDefaultPromptTitle persists a new global default prompt title.
	SetDefaultPromptTitle(title string) error

	// LegacySystemPrompt returns the deprecated single-string system prompt.
	LegacySystemPrompt() string

	// ClearLegacySystemPrompt empties the deprecated field and persists.
	ClearLegacySystemPrompt() error
}

// ConfigSettings adapts a config.Manager to the Settings interface.
type ConfigSettings struct {
	cfg *config.Manager
}

// NewConfigSettings wraps a config manager for use by the prompt subsystem.
func NewConfigSettings(cfg *config.Manager) *ConfigSettings {
	return &ConfigSettings{cfg: cfg}
}

func (s *ConfigSettings) PromptsFolder() string {
	return NormalizeFolder(s.cfg.Get().PromptsFolder)
}

func (s *ConfigSettings) DefaultPromptTitle() string {
	return s.cfg.Get().DefaultPromptTitle
}

func (s *ConfigSettings) SetDefaultPromptTitle(title string) error {
	return s.cfg.Update(func(set *config.Settings) {
		set.DefaultPromptTitle = title
	})
}

func (s *ConfigSettings) LegacySystemPrompt() string {
	return s.cfg.Get().UserSystemPrompt
}

func (s *ConfigSettings) ClearLegacySystemPrompt() error {
	return s.cfg.Update(func(set *config.Settings) {
		set.UserSystemPrompt = ""
	})
}

// NormalizeFolder cleans a configured folder path into the vault-relative
// slash form used throughout the package.
func NormalizeFolder(folder string) string {
	folder = strings.TrimSpace(folder)
	folder = path.Clean(strings.ReplaceAll(folder, "\\", "/"))
	folder = strings.Trim(folder, "/")
	if folder == "." || folder == "" {
		return ""
	}
	return folder
}
