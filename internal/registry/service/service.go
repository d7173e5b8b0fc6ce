// Package service implements the institution registry: the owner-controlled
// allowlist that gates credential issuance.
package service

import (
	"context"
	"errors"

	"soulbound/internal/events"
	registrymetrics "soulbound/internal/registry/metrics"
	"soulbound/internal/registry/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/middleware/requesttime"
)

// Service orchestrates allowlist mutations and lookups. Only the registry
// owner may mutate; lookups are public.
type Service struct {
	owner        domain.Identity
	institutions Store
	emitter      *emitter
	metrics      *registrymetrics.Metrics
	tx           StoreTx
}

func New(owner domain.Identity, institutions Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = newInMemoryStoreTx()
	}
	return &Service{
		owner:        owner,
		institutions: institutions,
		emitter:      &emitter{logger: cfg.logger, publisher: cfg.publisher},
		metrics:      cfg.metrics,
		tx:           tx,
	}
}

// Owner returns the registry owner identity.
func (s *Service) Owner() domain.Identity {
	return s.owner
}

// IsOwner reports whether the caller is the registry owner.
func (s *Service) IsOwner(caller domain.Identity) bool {
	return !caller.IsZero() && caller == s.owner
}

// Authorize adds the institution to the allowlist. Owner-only. Re-authorizing
// an already-authorized institution is a no-op that still emits the
// notification, so indexers converge regardless of submission races.
func (s *Service) Authorize(ctx context.Context, caller, institution domain.Identity) (*models.Institution, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}
	if institution.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "institution identity required")
	}

	var record *models.Institution
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requesttime.Now(txCtx)

		existing, err := s.institutions.Find(txCtx, institution)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			existing = models.NewInstitution(institution, now)
		case err != nil:
			return wrapStoreErr(err, "failed to load institution")
		default:
			existing.Authorize(now)
		}

		if err := s.institutions.Upsert(txCtx, existing); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store institution")
		}

		s.emitter.emit(txCtx, events.Event{
			Kind:        events.KindInstitutionAuthorized,
			Timestamp:   now,
			Actor:       caller,
			Institution: institution,
		})
		record = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementAuthorized()
	}
	return record, nil
}

// Revoke clears the institution's authorization. Owner-only and idempotent;
// the allowlist entry is retained so already-issued credentials stay
// queryable while their derived validity flips to false.
func (s *Service) Revoke(ctx context.Context, caller, institution domain.Identity) (*models.Institution, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}
	if institution.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "institution identity required")
	}

	var record *models.Institution
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requesttime.Now(txCtx)

		existing, err := s.institutions.Find(txCtx, institution)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			// Revoking an unknown institution records a non-authorized entry
			// so the idempotent notification still has a referent.
			existing = models.NewInstitution(institution, now)
			existing.Revoke(now)
		case err != nil:
			return wrapStoreErr(err, "failed to load institution")
		default:
			existing.Revoke(now)
		}

		if err := s.institutions.Upsert(txCtx, existing); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store institution")
		}

		s.emitter.emit(txCtx, events.Event{
			Kind:        events.KindInstitutionRevoked,
			Timestamp:   now,
			Actor:       caller,
			Institution: institution,
		})
		record = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	return record, nil
}

// IsAuthorized reports whether the institution may currently issue
// credentials. Unknown institutions are simply not authorized.
func (s *Service) IsAuthorized(ctx context.Context, institution domain.Identity) (bool, error) {
	if institution.IsZero() {
		return false, nil
	}
	record, err := s.institutions.Find(ctx, institution)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrapStoreErr(err, "failed to load institution")
	}
	return record.Authorized, nil
}

// Get returns the allowlist entry for an institution.
func (s *Service) Get(ctx context.Context, institution domain.Identity) (*models.Institution, error) {
	record, err := s.institutions.Find(ctx, institution)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load institution")
	}
	return record, nil
}

// List returns all allowlist entries for dashboards.
func (s *Service) List(ctx context.Context) ([]*models.Institution, error) {
	records, err := s.institutions.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to list institutions")
	}
	return records, nil
}

func (s *Service) requireOwner(caller domain.Identity) error {
	if !s.IsOwner(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "only the registry owner may modify the allowlist")
	}
	return nil
}
