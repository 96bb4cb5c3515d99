package prompts

import (
	"context"
	"strings"
)

// MigratedPromptTitle is the reserved title for the prompt created from the
// legacy single-string setting.
const MigratedPromptTitle = "Migrated Custom System Prompt"

// Migrate converts the legacy single-string system prompt setting into a
// first-class prompt file, exactly once. The legacy field being empty is
// itself the "already migrated" marker, so the migration is idempotent. If
// a prompt with the reserved title already exists, file creation is skipped
// but the legacy field is still cleared to prevent re-triggering. On
// success the migrated prompt becomes the global default.
//
// Returns true when a notice should be surfaced to the user.
func Migrate(ctx context.Context, m *Manager) (bool, error) {
	legacy := strings.TrimSpace(m.settings.LegacySystemPrompt())
	if legacy == "" {
		return false, nil
	}

	m.logger.Info("migrating legacy system prompt to file", "title", MigratedPromptTitle)

	folder := m.settings.PromptsFolder()
	filePath := FilePath(folder, MigratedPromptTitle)

	if m.vault.Exists(filePath) {
		m.logger.Info("migration target already exists, skipping file creation", "path", filePath)
		if err := m.settings.ClearLegacySystemPrompt(); err != nil {
			return false, err
		}
		if err := m.settings.SetDefaultPromptTitle(MigratedPromptTitle); err != nil {
			return false, err
		}
		_, err := m.Reload(ctx)
		return false, err
	}

	now := m.now().UnixMilli()
	prompt := UserPrompt{
		Title:      MigratedPromptTitle,
		Content:    legacy,
		CreatedMs:  now,
		ModifiedMs: now,
		LastUsedMs: 0,
	}

	if _, err := m.Create(ctx, prompt); err != nil {
		m.logger.Error("failed to migrate legacy system prompt", "error", err)
		return false, err
	}

	if err := m.settings.ClearLegacySystemPrompt(); err != nil {
		return false, err
	}
	if err := m.settings.SetDefaultPromptTitle(MigratedPromptTitle); err != nil {
		return false, err
	}

	m.logger.Info("migrated legacy system prompt", "title", MigratedPromptTitle)
	return true, nil
}
