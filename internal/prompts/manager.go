package prompts

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/promptvault/promptvault/internal/vault"
)

// Manager is the sole mutation entry point for prompts. Every mutation
// reloads the full on-disk set before returning, so the cache reflects
// storage by the time a call completes. Title validation failures surface
// as *ValidationError; vault failures propagate as-is.
type Manager struct {
	vault    vault.Vault
	store    *Store
	settings Settings
	logger   *slog.Logger

	now func() time.Time
}

// NewManager creates a prompt manager.
func NewManager(v vault.Vault, store *Store, settings Settings, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		vault:    v,
		store:    store,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Initialize loads all prompts from the vault into the cache.
func (m *Manager) Initialize(ctx context.Context) error {
	m.logger.Info("initializing prompt manager", "folder", m.settings.PromptsFolder())
	_, err := m.Reload(ctx)
	return err
}

// Store returns the underlying cache store.
func (m *Manager) Store() *Store {
	return m.store
}

// List returns the cached prompts (synchronous, no I/O).
func (m *Manager) List() []UserPrompt {
	return m.store.List()
}

// Get returns the cached prompt with the given title (case-insensitive).
func (m *Manager) Get(title string) (UserPrompt, bool) {
	return m.store.Get(title)
}

// Create validates the title, writes the prompt file, back-fills its
// front-matter, and reloads the cache. Returns the created record as read
// back from storage.
func (m *Manager) Create(ctx context.Context, p UserPrompt) (UserPrompt, error) {
	p.Title = strings.TrimSpace(p.Title)
	if err := ValidateTitle(p.Title, m.store.List(), ""); err != nil {
		return UserPrompt{}, err
	}

	folder := m.settings.PromptsFolder()
	filePath := FilePath(folder, p.Title)
	if m.vault.Exists(filePath) {
		return UserPrompt{}, &ValidationError{Reason: "a prompt with this name already exists"}
	}

	now := m.now().UnixMilli()
	if p.CreatedMs == 0 {
		p.CreatedMs = now
	}
	if p.ModifiedMs == 0 {
		p.ModifiedMs = p.CreatedMs
	}

	if err := m.vault.EnsureFolder(folder); err != nil {
		m.logger.Error("failed to create prompts folder", "folder", folder, "error", err)
		return UserPrompt{}, err
	}

	m.store.MarkPendingWrite(filePath)
	defer m.store.ReleasePendingWrite(filePath)

	if err := m.vault.Write(filePath, p.Content); err != nil {
		m.logger.Error("failed to write prompt file", "path", filePath, "error", err)
		return UserPrompt{}, err
	}
	if err := m.ensureFrontMatter(filePath, p); err != nil {
		m.logger.Error("failed to write prompt front-matter", "path", filePath, "error", err)
		return UserPrompt{}, err
	}

	if _, err := m.Reload(ctx); err != nil {
		return UserPrompt{}, err
	}

	created, _ := m.store.Get(p.Title)
	m.logger.Info("created prompt", "title", p.Title)
	return created, nil
}

// Update rewrites the prompt previously titled oldTitle. A changed title
// renames the backing file first; the rename fails if the target already
// exists (no auto-disambiguation, unlike Duplicate). ModifiedMs is bumped
// unconditionally.
func (m *Manager) Update(ctx context.Context, oldTitle string, p UserPrompt) (UserPrompt, error) {
	p.Title = strings.TrimSpace(p.Title)
	folder := m.settings.PromptsFolder()
	oldPath := FilePath(folder, oldTitle)
	newPath := FilePath(folder, p.Title)

	if p.Title != oldTitle {
		if err := ValidateTitle(p.Title, m.store.List(), oldTitle); err != nil {
			return UserPrompt{}, err
		}
		if m.vault.Exists(newPath) {
			return UserPrompt{}, &ValidationError{Reason: "a prompt with this name already exists"}
		}
	}

	m.store.MarkPendingWrite(oldPath)
	defer m.store.ReleasePendingWrite(oldPath)
	m.store.MarkPendingWrite(newPath)
	defer m.store.ReleasePendingWrite(newPath)

	if p.Title != oldTitle {
		if err := m.vault.Rename(oldPath, newPath); err != nil {
			m.logger.Error("failed to rename prompt file", "from", oldPath, "to", newPath, "error", err)
			return UserPrompt{}, err
		}
	}

	raw, err := m.vault.Read(newPath)
	if err != nil {
		m.logger.Error("failed to read prompt file", "path", newPath, "error", err)
		return UserPrompt{}, err
	}

	out := ReplaceBody(raw, p.Content)
	out, _ = EnsureTimestamps(out, p)
	out = SetTimestamp(out, KeyModified, m.now().UnixMilli())

	if err := m.vault.Write(newPath, out); err != nil {
		m.logger.Error("failed to write prompt file", "path", newPath, "error", err)
		return UserPrompt{}, err
	}

	if _, err := m.Reload(ctx); err != nil {
		return UserPrompt{}, err
	}

	updated, _ := m.store.Get(p.Title)
	m.logger.Info("updated prompt", "from", oldTitle, "to", p.Title)
	return updated, nil
}

// Delete removes the prompt's backing file. Deleting a missing prompt is a
// no-op. The cache is reloaded either way.
func (m *Manager) Delete(ctx context.Context, title string) error {
	folder := m.settings.PromptsFolder()
	filePath := FilePath(folder, title)

	if m.vault.Exists(filePath) {
		m.store.MarkPendingWrite(filePath)
		defer m.store.ReleasePendingWrite(filePath)

		if err := m.vault.Delete(filePath); err != nil {
			m.logger.Error("failed to delete prompt file", "path", filePath, "error", err)
			return err
		}
		m.logger.Info("deleted prompt", "title", title)
	}

	_, err := m.Reload(ctx)
	return err
}

// Duplicate creates a copy of p under a generated " (copy N)" title, with
// fresh timestamps and a cleared last-used time.
func (m *Manager) Duplicate(ctx context.Context, p UserPrompt) (UserPrompt, error) {
	title := CopyTitle(p.Title, m.store.List())
	now := m.now().UnixMilli()

	dup := UserPrompt{
		Title:      title,
		Content:    p.Content,
		CreatedMs:  now,
		ModifiedMs: now,
		LastUsedMs: 0,
	}

	created, err := m.Create(ctx, dup)
	if err != nil {
		return UserPrompt{}, err
	}
	m.logger.Info("duplicated prompt", "from", p.Title, "to", title)
	return created, nil
}

// MarkUsed stamps the prompt's last-used time. A missing file is ignored.
func (m *Manager) MarkUsed(ctx context.Context, title string) error {
	folder := m.settings.PromptsFolder()
	filePath := FilePath(folder, title)

	if !m.vault.Exists(filePath) {
		return nil
	}

	m.store.MarkPendingWrite(filePath)
	defer m.store.ReleasePendingWrite(filePath)

	raw, err := m.vault.Read(filePath)
	if err != nil {
		m.logger.Error("failed to read prompt file", "path", filePath, "error", err)
		return err
	}

	out := SetTimestamp(raw, KeyLastUsed, m.now().UnixMilli())
	if err := m.vault.Write(filePath, out); err != nil {
		m.logger.Error("failed to write prompt file", "path", filePath, "error", err)
		return err
	}

	_, err = m.Reload(ctx)
	return err
}

// Reload re-reads the full prompts folder and replaces the cache snapshot.
// A reload that loses the race to a newer one has its result discarded; the
// returned slice is always the currently installed snapshot. A missing
// folder yields an empty set.
func (m *Manager) Reload(ctx context.Context) ([]UserPrompt, error) {
	gen := m.store.BeginReload()
	folder := m.settings.PromptsFolder()

	files, err := m.vault.List(folder)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Error("failed to list prompts folder", "folder", folder, "error", err)
			return nil, err
		}
		files = nil
	}

	loaded := make([]UserPrompt, 0, len(files))
	for _, f := range files {
		if !IsPromptFile(folder, f) {
			continue
		}
		raw, err := m.vault.Read(f)
		if err != nil {
			m.logger.Error("failed to read prompt file", "path", f, "error", err)
			return nil, err
		}
		loaded = append(loaded, ParseFile(f, raw))
	}

	m.store.CompleteReload(gen, loaded)
	return m.store.List(), nil
}

// ensureFrontMatter back-fills missing timestamp fields on the file at
// filePath. Existing values are never overwritten, so hand-edited files
// keep their recorded timestamps. Callers hold the pending-write marker.
func (m *Manager) ensureFrontMatter(filePath string, p UserPrompt) error {
	raw, err := m.vault.Read(filePath)
	if err != nil {
		return err
	}

	out, changed := EnsureTimestamps(raw, p)
	if !changed {
		return nil
	}
	return m.vault.Write(filePath, out)
}
