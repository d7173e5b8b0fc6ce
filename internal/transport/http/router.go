// Package http assembles the public API router: middleware stack, route
// groups, and the authentication boundary for each group.
package http

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	accesshandler "soulbound/internal/access/handler"
	credentialhandler "soulbound/internal/credential/handler"
	"soulbound/internal/events"
	"soulbound/internal/platform/health"
	"soulbound/internal/platform/middleware"
	registryhandler "soulbound/internal/registry/handler"
	"soulbound/pkg/domain"
	adminmw "soulbound/pkg/platform/middleware/admin"
	authmw "soulbound/pkg/platform/middleware/auth"
	"soulbound/pkg/platform/middleware/requesttime"
)

const defaultRequestTimeout = 30 * time.Second

// Config wires the handlers and authentication settings into the router.
type Config struct {
	Logger *slog.Logger

	// TokenValidator resolves bearer tokens to caller identities.
	TokenValidator authmw.TokenValidator
	// Owner and OwnerTokenHash guard the registry mutation routes.
	Owner          domain.Identity
	OwnerTokenHash string

	Registry    *registryhandler.Handler
	Credentials *credentialhandler.Handler
	Access      *accesshandler.Handler
	Events      *events.Handler
	Health      *health.Handler

	RequestTimeout time.Duration
}

// New builds the API router. Three route groups with distinct authentication:
// public reads, caller-authenticated mutations, and owner-token registry
// administration.
func New(cfg Config) chi.Router {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.ContentTypeJSON)

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}

	r.Group(func(r chi.Router) {
		cfg.Registry.RegisterPublic(r)
		cfg.Credentials.RegisterPublic(r)
		cfg.Access.RegisterPublic(r)
		if cfg.Events != nil {
			cfg.Events.RegisterPublic(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCaller(cfg.TokenValidator, cfg.Logger))
		cfg.Credentials.RegisterCaller(r)
		cfg.Access.RegisterCaller(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireOwnerToken(cfg.OwnerTokenHash, cfg.Owner, cfg.Logger))
		cfg.Registry.RegisterOwner(r)
	})

	return r
}
