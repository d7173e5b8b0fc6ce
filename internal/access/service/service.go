// Package service implements private-data access control: holder-managed,
// time-boxed grants gating the opaque encrypted handles carried by hybrid
// credentials. Expiry is a pure comparison against the request clock;
// nothing sweeps grants in the background.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"soulbound/internal/access/metrics"
	"soulbound/internal/access/models"
	"soulbound/internal/access/ports"
	"soulbound/internal/events"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/middleware/requesttime"
	platformsync "soulbound/pkg/platform/sync"
)

const (
	readOutcomeOK     = "ok"
	readOutcomeDenied = "denied"
)

// PrivateHandles is the triple of opaque encrypted handles returned to a
// caller with valid access. The module stores and returns them verbatim;
// decryption is the encryption collaborator's job.
type PrivateHandles struct {
	StudentID    []byte
	Grade        []byte
	PersonalData []byte
}

// Service coordinates access grants for credential private data.
type Service struct {
	owner       domain.Identity
	credentials ports.CredentialReader
	store       Store
	emitter     emitter
	metrics     *metrics.Metrics
	locks       *platformsync.KeyedMutex
}

// New creates an access service. The owner may enumerate any credential's
// access list alongside the holder.
func New(owner domain.Identity, credentials ports.CredentialReader, store Store, opts ...Option) *Service {
	s := &Service{
		owner:       owner,
		credentials: credentials,
		store:       store,
		emitter:     emitter{logger: slog.Default()},
		locks:       platformsync.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GrantAccess adds or renews a viewer's grant. Only the credential's holder
// may call. A zero duration encodes "never expires"; a negative duration is
// rejected before any write.
func (s *Service) GrantAccess(ctx context.Context, caller domain.Identity, id domain.CredentialID, viewer domain.Identity, duration time.Duration) (*models.Grant, error) {
	now := requesttime.Now(ctx)

	if viewer.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "viewer identity required")
	}

	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	view, err := s.findCredentialWithPrivateData(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != view.Holder {
		return nil, dErrors.New(dErrors.CodeNotHolder, "only the credential holder can grant access")
	}

	grant, err := s.upsertGrant(ctx, id, viewer, duration, now)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementGranted()
	}
	s.emitter.emit(ctx, events.Event{
		Kind:       events.KindAccessGranted,
		Timestamp:  now,
		Actor:      caller,
		Credential: &id,
		Viewer:     viewer,
		ExpiresAt:  expiresAtPtr(grant),
	})
	return grant, nil
}

// RevokeAccess turns a viewer's grant off. Only the holder may call. The
// record is retained, not deleted, so the viewer stays on the access list as
// a historical entry and repeated revocations are idempotent.
func (s *Service) RevokeAccess(ctx context.Context, caller domain.Identity, id domain.CredentialID, viewer domain.Identity) error {
	now := requesttime.Now(ctx)

	if viewer.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "viewer identity required")
	}

	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	view, err := s.findCredentialWithPrivateData(ctx, id)
	if err != nil {
		return err
	}
	if caller != view.Holder {
		return dErrors.New(dErrors.CodeNotHolder, "only the credential holder can revoke access")
	}

	grant, err := s.store.Find(ctx, id, viewer)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Nothing granted; revoking is a no-op, not an error.
			return nil
		}
		return wrapStoreErr("find grant", err)
	}

	grant.Revoke()
	if err := s.store.Upsert(ctx, grant); err != nil {
		return wrapStoreErr("upsert grant", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	s.emitter.emit(ctx, events.Event{
		Kind:       events.KindAccessRevoked,
		Timestamp:  now,
		Actor:      caller,
		Credential: &id,
		Viewer:     viewer,
	})
	return nil
}

// HasValidAccess evaluates the viewer's grant lazily against the request
// clock. It is a pure read: no grant, a revoked grant, or an expired window
// all report false without error.
func (s *Service) HasValidAccess(ctx context.Context, id domain.CredentialID, viewer domain.Identity) (bool, error) {
	now := requesttime.Now(ctx)

	grant, err := s.store.Find(ctx, id, viewer)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, wrapStoreErr("find grant", err)
	}
	return grant.ValidAt(now), nil
}

// GetPrivateData returns the three opaque handles to a caller holding valid
// access. The caller's own identity is the viewer being checked.
func (s *Service) GetPrivateData(ctx context.Context, caller domain.Identity, id domain.CredentialID) (*PrivateHandles, error) {
	view, err := s.findCredentialWithPrivateData(ctx, id)
	if err != nil {
		return nil, err
	}

	valid, err := s.HasValidAccess(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if !valid {
		if s.metrics != nil {
			s.metrics.IncrementRead(readOutcomeDenied)
		}
		return nil, dErrors.New(dErrors.CodeNoAccess, "caller has no valid access to this credential's private data")
	}

	if s.metrics != nil {
		s.metrics.IncrementRead(readOutcomeOK)
	}
	return &PrivateHandles{
		StudentID:    view.StudentID,
		Grade:        view.Grade,
		PersonalData: view.PersonalData,
	}, nil
}

// GetAccessList enumerates every viewer ever granted access, in first-grant
// order, revoked entries included. Restricted to the holder and the owner.
func (s *Service) GetAccessList(ctx context.Context, caller domain.Identity, id domain.CredentialID) ([]domain.Identity, error) {
	view, err := s.findCredentialWithPrivateData(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != view.Holder && caller != s.owner {
		return nil, dErrors.New(dErrors.CodeNotHolder, "only the credential holder or the owner can list access")
	}

	viewers, err := s.store.ListViewers(ctx, id)
	if err != nil {
		return nil, wrapStoreErr("list viewers", err)
	}
	return viewers, nil
}

// AutoGrant installs the never-expiring grants created by hybrid issuance:
// one for the holder, one for the issuing institution. It bypasses the
// holder check because it runs inside issuance, before any caller could hold
// the credential. Both grants land or neither does: a failed upsert clears
// whatever was written so the issuance can roll back cleanly, and events are
// emitted only once both grants are in place.
func (s *Service) AutoGrant(ctx context.Context, id domain.CredentialID, holder, issuer domain.Identity, now time.Time) error {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	grants := make([]*models.Grant, 0, 2)
	for _, viewer := range []domain.Identity{holder, issuer} {
		grant, err := models.NewGrant(id, viewer, 0, now)
		if err != nil {
			return err
		}
		grants = append(grants, grant)
	}

	for _, grant := range grants {
		if err := s.store.Upsert(ctx, grant); err != nil {
			if rbErr := s.store.DeleteByCredential(ctx, id); rbErr != nil {
				s.emitter.logger.ErrorContext(ctx, "auto-grant rollback failed",
					slog.Uint64("credential_id", uint64(id)),
					slog.String("error", rbErr.Error()))
			}
			return wrapStoreErr("upsert grant", err)
		}
	}

	for _, grant := range grants {
		if s.metrics != nil {
			s.metrics.IncrementGranted()
		}
		s.emitter.emit(ctx, events.Event{
			Kind:       events.KindAccessGranted,
			Timestamp:  now,
			Actor:      issuer,
			Credential: &id,
			Viewer:     grant.Viewer,
		})
	}
	return nil
}

func (s *Service) findCredentialWithPrivateData(ctx context.Context, id domain.CredentialID) (*ports.CredentialView, error) {
	view, err := s.credentials.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find credential failed")
	}
	if !view.HasPrivateData {
		return nil, dErrors.New(dErrors.CodeNoPrivateData, "credential has no private data")
	}
	return view, nil
}

func (s *Service) upsertGrant(ctx context.Context, id domain.CredentialID, viewer domain.Identity, duration time.Duration, now time.Time) (*models.Grant, error) {
	grant, err := s.store.Find(ctx, id, viewer)
	switch {
	case err == nil:
		if err := grant.Renew(duration, now); err != nil {
			return nil, err
		}
	case errors.Is(err, sentinel.ErrNotFound):
		grant, err = models.NewGrant(id, viewer, duration, now)
		if err != nil {
			return nil, err
		}
	default:
		return nil, wrapStoreErr("find grant", err)
	}

	if err := s.store.Upsert(ctx, grant); err != nil {
		return nil, wrapStoreErr("upsert grant", err)
	}
	return grant, nil
}

func expiresAtPtr(grant *models.Grant) *time.Time {
	if grant.ExpiresAt.IsZero() {
		return nil
	}
	t := grant.ExpiresAt
	return &t
}
