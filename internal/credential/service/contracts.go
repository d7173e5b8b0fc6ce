package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"soulbound/internal/credential/models"
	"soulbound/internal/events"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Store persists credentials. Implementations must assign sequential
// identifiers at insert time so that failed issuance attempts never consume
// an identifier.
type Store interface {
	// Create persists the credential, assigns its identifier and returns it.
	Create(ctx context.Context, credential *models.Credential) (domain.CredentialID, error)
	FindByID(ctx context.Context, id domain.CredentialID) (*models.Credential, error)
	Update(ctx context.Context, credential *models.Credential) error
	// Delete removes a credential and, when it holds the most recently
	// assigned identifier, releases that identifier. Only issuance rollback
	// calls this; credentials are never deleted once issuance completes.
	Delete(ctx context.Context, id domain.CredentialID) error
	Count(ctx context.Context) (uint64, error)
}

// AccessGranter lets hybrid issuance set up the never-expiring grants for
// the holder and the issuer without importing the access module.
type AccessGranter interface {
	AutoGrant(ctx context.Context, id domain.CredentialID, holder, issuer domain.Identity, now time.Time) error
}

// EventPublisher appends ledger events for off-service indexers.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

func wrapStoreErr(op string, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "credential not found")
	case errors.Is(err, sentinel.ErrInvalidInput):
		return dErrors.New(dErrors.CodeInvalidInput, op+": invalid input")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op+" failed")
	}
}

// emitter couples structured logging with event publication so every
// lifecycle change is observable even when no publisher is configured.
type emitter struct {
	logger    *slog.Logger
	publisher EventPublisher
}

func (e *emitter) emit(ctx context.Context, event events.Event) {
	attrs := []any{
		slog.String("log_type", "ledger_event"),
		slog.String("kind", string(event.Kind)),
		slog.String("actor", event.Actor.String()),
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
