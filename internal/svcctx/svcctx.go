// Package svcctx provides service context for dependency injection via
// context. Kept separate so command packages never import each other just
// to share a logger or a cache handle.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/outlinehq/specloc/internal/config"
	"github.com/outlinehq/specloc/internal/embedder"
	"github.com/outlinehq/specloc/internal/home"
	"github.com/outlinehq/specloc/internal/oracle"
)

// Services holds the core collaborators that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Logger   *slog.Logger
	Home     *home.Dir
	Config   *config.Config
	Oracle   oracle.Oracle
	Embedder embedder.Embedder
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

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// ConfigFrom extracts the loaded configuration from context.
func ConfigFrom(ctx context.Context) *config.Config {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// OracleFrom extracts the outline oracle from context.
func OracleFrom(ctx context.Context) oracle.Oracle {
	if s := ServicesFrom(ctx); s != nil {
		return s.Oracle
	}
	return nil
}

// EmbedderFrom extracts the embedder from context.
func EmbedderFrom(ctx context.Context) embedder.Embedder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Embedder
	}
	return nil
}
