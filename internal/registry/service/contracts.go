package service

import (
	"context"
	"errors"
	"log/slog"

	"soulbound/internal/events"
	"soulbound/internal/registry/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Store defines the persistence contract for the institution allowlist.
type Store interface {
	Upsert(ctx context.Context, institution *models.Institution) error
	Find(ctx context.Context, identity domain.Identity) (*models.Institution, error)
	List(ctx context.Context) ([]*models.Institution, error)
}

// EventPublisher appends ledger events for off-service indexers.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

func wrapStoreErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "institution not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

// emitter handles structured logging and event emission for registry
// mutations. Event failures are logged, never surfaced: notification is
// asynchronous by contract.
type emitter struct {
	logger    *slog.Logger
	publisher EventPublisher
}

func (e *emitter) emit(ctx context.Context, event events.Event) {
	if e.logger != nil {
		e.logger.InfoContext(ctx, string(event.Kind),
			"institution", event.Institution,
			"actor", event.Actor,
			"log_type", "ledger_event",
		)
	}
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Emit(ctx, event); err != nil && e.logger != nil {
		e.logger.ErrorContext(ctx, "failed to emit event",
			"kind", event.Kind,
			"error", err,
		)
	}
}
