// Package svcctx provides service context for dependency injection via
// context. This package is separate from server to avoid import cycles
// with handlers.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/prompts"
)

// Services holds the core services that flow through request context.
// Handlers extract what they need via the individual extractors.
type Services struct {
	Settings *config.Manager
	Prompts  *prompts.Manager
	Session  *prompts.Session
	Logger   *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// SettingsFrom extracts the settings manager from context.
func SettingsFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Settings
	}
	return nil
}

// PromptsFrom extracts the prompt manager from context.
func PromptsFrom(ctx context.Context) *prompts.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Prompts
	}
	return nil
}

// SessionFrom extracts the session selection state from context.
func SessionFrom(ctx context.Context) *prompts.Session {
	if s := ServicesFrom(ctx); s != nil {
		return s.Session
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
