package service

import (
	"context"
	"errors"
	"log/slog"

	"soulbound/internal/access/models"
	"soulbound/internal/events"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Store persists access grants. Viewers are kept in first-grant order per
// credential so the access list enumerates deterministically; revoked grants
// stay listed.
type Store interface {
	Upsert(ctx context.Context, grant *models.Grant) error
	Find(ctx context.Context, id domain.CredentialID, viewer domain.Identity) (*models.Grant, error)
	ListViewers(ctx context.Context, id domain.CredentialID) ([]domain.Identity, error)
	// DeleteByCredential removes every grant for the credential. Only the
	// auto-grant rollback path uses it; holder-driven revocation retains
	// records.
	DeleteByCredential(ctx context.Context, id domain.CredentialID) error
}

// EventPublisher appends ledger events for off-service indexers.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

func wrapStoreErr(op string, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "access grant not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op+" failed")
	}
}

type emitter struct {
	logger    *slog.Logger
	publisher EventPublisher
}

func (e *emitter) emit(ctx context.Context, event events.Event) {
	attrs := []any{
		slog.String("log_type", "ledger_event"),
		slog.String("kind", string(event.Kind)),
		slog.String("actor", event.Actor.String()),
		slog.String("viewer", event.Viewer.String()),
	}
	if event.Credential != nil {
		attrs = append(attrs, slog.Uint64("credential_id", uint64(*event.Credential)))
	}
	e.logger.InfoContext(ctx, string(event.Kind), attrs...)

	if e.publisher == nil {
		return
	}
	if err := e.publisher.Emit(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "failed to emit event",
			slog.String("kind", string(event.Kind)),
			slog.String("error", err.Error()),
		)
	}
}
