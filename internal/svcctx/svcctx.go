// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/lectern/internal/cache"
	"github.com/jackzampolin/lectern/internal/jobs"
	"github.com/jackzampolin/lectern/internal/providers"
	"github.com/jackzampolin/lectern/internal/syllabus"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Orchestrator *jobs.Orchestrator
	Matcher      *syllabus.Matcher
	Cache        *cache.ChapterCache
	Registry     *providers.Registry
	Logger       *slog.Logger
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

// OrchestratorFrom extracts the job orchestrator from context.
func OrchestratorFrom(ctx context.Context) *jobs.Orchestrator {
	if s := ServicesFrom(ctx); s != nil {
		return s.Orchestrator
	}
	return nil
}

// MatcherFrom extracts the syllabus matcher from context.
func MatcherFrom(ctx context.Context) *syllabus.Matcher {
	if s := ServicesFrom(ctx); s != nil {
		return s.Matcher
	}
	return nil
}

// CacheFrom extracts the chapter cache from context.
func CacheFrom(ctx context.Context) *cache.ChapterCache {
	if s := ServicesFrom(ctx); s != nil {
		return s.Cache
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
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
