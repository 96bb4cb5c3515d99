package prompts

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Session tracks which prompt is active for the current chat session,
// separate from the persisted global default. The override lives only in
// memory: it is seeded from the global default when the session starts and
// discarded when the session ends.
type Session struct {
	manager  *Manager
	settings Settings
	logger   *slog.Logger

	mu       sync.RWMutex
	id       string
	override string
}

// NewSession starts a session, copying the persisted global default down
// as the initial override.
func NewSession(manager *Manager, settings Settings, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		manager:  manager,
		settings: settings,
		logger:   logger,
		id:       uuid.NewString(),
		override: settings.DefaultPromptTitle(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Select makes title the active prompt for this session and stamps the
// underlying record's last-used time through the manager.
func (s *Session) Select(ctx context.Context, title string) error {
	s.mu.Lock()
	s.override = title
	s.mu.Unlock()

	if title == "" {
		return nil
	}

	if err := s.manager.MarkUsed(ctx, title); err != nil {
		return err
	}
	s.logger.Info("selected prompt for session", "title", title)
	return nil
}

// Clear removes the session override, falling back to the global default.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = ""
}

// EffectiveTitle resolves the active prompt title: the session override if
// it still resolves against the cache, otherwise the persisted global
// default, otherwise empty.
func (s *Session) EffectiveTitle() string {
	s.mu.RLock()
	override := s.override
	s.mu.RUnlock()

	if override != "" {
		if _, ok := s.manager.Get(override); ok {
			return override
		}
	}
	return s.settings.DefaultPromptTitle()
}

// EffectivePrompt returns the resolved active prompt record, if any.
func (s *Session) EffectivePrompt() (UserPrompt, bool) {
	title := s.EffectiveTitle()
	if title == "" {
		return UserPrompt{}, false
	}
	return s.manager.Get(title)
}
