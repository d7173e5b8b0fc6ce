// Package service implements the credential lifecycle: issuance by
// authorized institutions, one-way revocation, and live verification. All
// ownership-shaped operations route through the soulbound guard, which
// rejects every holder-to-holder transition.
package service

import (
	"context"
	"log/slog"
	"time"

	"soulbound/internal/credential/metrics"
	"soulbound/internal/credential/models"
	"soulbound/internal/credential/ports"
	"soulbound/internal/credential/tracer"
	"soulbound/internal/events"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/middleware/requesttime"
	platformsync "soulbound/pkg/platform/sync"
)

const (
	variantPublic = "public"
	variantHybrid = "hybrid"
)

// IssueParams carries the descriptive fields shared by both issuance
// variants. All of them are immutable after issuance.
type IssueParams struct {
	Recipient              domain.Identity
	CredentialType         string
	AchievementName        string
	AchievementDescription string
	MetadataURI            string
}

// PrivateParams carries the three opaque encrypted handles for hybrid
// issuance. The service stores them verbatim and never inspects them.
type PrivateParams struct {
	StudentID    []byte
	Grade        []byte
	PersonalData []byte
}

// Verification is the result of a validity check. Valid is derived at read
// time, never stored: a credential is valid iff it is not revoked and its
// issuer is currently authorized.
type Verification struct {
	Credential       *models.Credential
	IssuerAuthorized bool
	Valid            bool
}

// Service coordinates credential issuance, revocation and verification.
type Service struct {
	registry ports.RegistryReader
	store    Store
	access   AccessGranter
	emitter  emitter
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	locks    *platformsync.KeyedMutex
}

// New creates a credential service backed by the given registry and store.
func New(registry ports.RegistryReader, store Store, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		store:    store,
		emitter:  emitter{logger: slog.Default()},
		tracer:   tracer.NewNoop(),
		locks:    platformsync.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssuePublic issues a credential without private data. Only a currently
// authorized institution may issue.
func (s *Service) IssuePublic(ctx context.Context, caller domain.Identity, params IssueParams) (*models.Credential, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue,
		tracer.String(tracer.AttrIssuer, caller.String()),
		tracer.Bool(tracer.AttrHasPrivateData, false))
	var err error
	defer func() { span.End(err) }()

	now := requesttime.Now(ctx)
	if err = s.requireAuthorizedIssuer(ctx, caller); err != nil {
		return nil, err
	}

	cred, err := models.NewPublic(caller, params.Recipient, params.CredentialType,
		params.AchievementName, params.AchievementDescription, params.MetadataURI, now)
	if err != nil {
		return nil, err
	}
	return s.persistIssuance(ctx, span, cred, variantPublic)
}

// IssueHybrid issues a credential carrying the three opaque private handles
// and grants the issuer a standing view of them.
func (s *Service) IssueHybrid(ctx context.Context, caller domain.Identity, params IssueParams, private PrivateParams) (*models.Credential, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue,
		tracer.String(tracer.AttrIssuer, caller.String()),
		tracer.Bool(tracer.AttrHasPrivateData, true))
	var err error
	defer func() { span.End(err) }()

	now := requesttime.Now(ctx)
	if err = s.requireAuthorizedIssuer(ctx, caller); err != nil {
		return nil, err
	}

	cred, err := models.NewHybrid(caller, params.Recipient, params.CredentialType,
		params.AchievementName, params.AchievementDescription, params.MetadataURI,
		private.StudentID, private.Grade, private.PersonalData, now)
	if err != nil {
		return nil, err
	}

	id, err := s.store.Create(ctx, cred)
	if err != nil {
		err = wrapStoreErr("create credential", err)
		return nil, err
	}
	cred.ID = id
	span.SetAttributes(tracer.Int64(tracer.AttrCredentialID, int64(id)))

	// Holder and issuer both receive a never-expiring grant: the holder
	// owns the data, the issuer keeps visibility into what it encrypted.
	// The issuer grant survives later de-authorization. The grants are part
	// of the issuance: if they cannot be installed the credential is rolled
	// back, the identifier is released and no issued event is emitted.
	if s.access != nil {
		if grantErr := s.access.AutoGrant(ctx, id, cred.Holder, cred.Issuer, now); grantErr != nil {
			s.emitter.logger.ErrorContext(ctx, "issuer auto-grant failed",
				slog.Uint64("credential_id", uint64(id)),
				slog.String("error", grantErr.Error()))
			if rbErr := s.store.Delete(ctx, id); rbErr != nil {
				s.emitter.logger.ErrorContext(ctx, "issuance rollback failed",
					slog.Uint64("credential_id", uint64(id)),
					slog.String("error", rbErr.Error()))
			}
			err = dErrors.Wrap(grantErr, dErrors.CodeInternal, "issuer auto-grant failed")
			return nil, err
		}
	}

	s.recordIssued(ctx, cred, variantHybrid)
	return cred, nil
}

// Revoke marks the credential revoked. Revocation authority is held by the
// original issuer and the contract owner; it does not require the issuer to
// still be authorized. Terminal: a second revocation fails.
func (s *Service) Revoke(ctx context.Context, caller domain.Identity, id domain.CredentialID) (*models.Credential, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRevoke,
		tracer.Int64(tracer.AttrCredentialID, int64(id)))
	var err error
	defer func() { span.End(err) }()

	now := requesttime.Now(ctx)

	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	cred, err := s.store.FindByID(ctx, id)
	if err != nil {
		err = wrapStoreErr("find credential", err)
		return nil, err
	}

	if caller != cred.Issuer && !s.registry.IsOwner(caller) {
		err = dErrors.New(dErrors.CodeNotIssuer, "only the issuing institution or the owner can revoke")
		return nil, err
	}

	if err = cred.Revoke(caller, now); err != nil {
		return nil, err
	}
	if err = s.store.Update(ctx, cred); err != nil {
		err = wrapStoreErr("update credential", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	s.emitter.emit(ctx, events.Event{
		Kind:       events.KindCredentialRevoked,
		Timestamp:  now,
		Actor:      caller,
		Credential: &cred.ID,
		Issuer:     cred.Issuer,
	})
	return cred, nil
}

// Verify evaluates derived validity: not revoked AND issuer currently
// authorized. The issuer check is live, so de-authorizing an institution
// immediately flips every credential it ever issued to invalid, and
// re-authorizing flips the non-revoked ones back.
func (s *Service) Verify(ctx context.Context, id domain.CredentialID) (*Verification, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.Int64(tracer.AttrCredentialID, int64(id)))
	var err error
	defer func() { span.End(err) }()

	start := time.Now()
	cred, err := s.store.FindByID(ctx, id)
	if err != nil {
		err = wrapStoreErr("find credential", err)
		return nil, err
	}

	authorized, err := s.registry.IsAuthorized(ctx, cred.Issuer)
	if err != nil {
		return nil, err
	}

	result := &Verification{
		Credential:       cred,
		IssuerAuthorized: authorized,
		Valid:            !cred.Revoked && authorized,
	}
	span.SetAttributes(tracer.Bool(tracer.AttrIsValid, result.Valid))
	if s.metrics != nil {
		s.metrics.ObserveVerify(start)
	}
	return result, nil
}

// Get returns the credential's public view.
func (s *Service) Get(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	cred, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr("find credential", err)
	}
	return cred, nil
}

// TotalSupply returns the number of credentials ever issued. Revoked
// credentials still count; they exist, they are just invalid.
func (s *Service) TotalSupply(ctx context.Context) (uint64, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, wrapStoreErr("count credentials", err)
	}
	return count, nil
}

// Transfer rejects every holder-to-holder move via the soulbound guard. The
// credential must exist so callers probing unknown ids get not-found rather
// than a misleading soulbound rejection.
func (s *Service) Transfer(ctx context.Context, _ domain.Identity, id domain.CredentialID, to domain.Identity) error {
	cred, err := s.store.FindByID(ctx, id)
	if err != nil {
		return wrapStoreErr("find credential", err)
	}
	if to.IsZero() {
		return dErrors.New(dErrors.CodeInvalidRecipient, "cannot transfer to the zero identity")
	}
	err = models.GuardTransition(cred.Holder, to)
	if err != nil && s.metrics != nil {
		s.metrics.IncrementTransferRejected()
	}
	return err
}

// Approve rejects approval grants outright; an approval is meaningless when
// transfer can never execute.
func (s *Service) Approve(ctx context.Context, _ domain.Identity, id domain.CredentialID, _ domain.Identity) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return wrapStoreErr("find credential", err)
	}
	if s.metrics != nil {
		s.metrics.IncrementTransferRejected()
	}
	return models.GuardApproval()
}

// SetApprovalForAll rejects blanket operator approval for the same reason as
// Approve.
func (s *Service) SetApprovalForAll(_ context.Context, _ domain.Identity, _ domain.Identity) error {
	if s.metrics != nil {
		s.metrics.IncrementTransferRejected()
	}
	return models.GuardApproval()
}

func (s *Service) requireAuthorizedIssuer(ctx context.Context, caller domain.Identity) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	authorized, err := s.registry.IsAuthorized(ctx, caller)
	if err != nil {
		return err
	}
	if !authorized {
		return dErrors.New(dErrors.CodeNotInstitution, "caller is not an authorized institution")
	}
	return nil
}

func (s *Service) persistIssuance(ctx context.Context, span tracer.Span, cred *models.Credential, variant string) (*models.Credential, error) {
	id, err := s.store.Create(ctx, cred)
	if err != nil {
		return nil, wrapStoreErr("create credential", err)
	}
	cred.ID = id
	span.SetAttributes(tracer.Int64(tracer.AttrCredentialID, int64(id)))

	s.recordIssued(ctx, cred, variant)
	return cred, nil
}

func (s *Service) recordIssued(ctx context.Context, cred *models.Credential, variant string) {
	if s.metrics != nil {
		s.metrics.IncrementIssued(variant)
	}
	s.emitter.emit(ctx, events.Event{
		Kind:           events.KindCredentialIssued,
		Timestamp:      cred.IssuedAt,
		Actor:          cred.Issuer,
		Credential:     &cred.ID,
		Issuer:         cred.Issuer,
		Recipient:      cred.Holder,
		CredentialType: cred.CredentialType,
		HasPrivateData: cred.HasPrivateData,
	})
}
