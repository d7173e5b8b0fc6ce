package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/internal/events"
	"soulbound/internal/registry/store"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

var (
	owner       = domain.Identity("0x9999999999999999999999999999999999999999")
	institution = domain.Identity("0x1111111111111111111111111111111111111111")
	stranger    = domain.Identity("0x2222222222222222222222222222222222222222")
)

type capturingPublisher struct {
	events []events.Event
}

func (p *capturingPublisher) Emit(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func newTestService(publisher EventPublisher) *Service {
	opts := []Option{}
	if publisher != nil {
		opts = append(opts, WithEventPublisher(publisher))
	}
	return New(owner, store.NewInMemory(), opts...)
}

func TestAuthorize(t *testing.T) {
	t.Run("owner authorizes a new institution", func(t *testing.T) {
		publisher := &capturingPublisher{}
		svc := newTestService(publisher)

		record, err := svc.Authorize(context.Background(), owner, institution)
		require.NoError(t, err)
		assert.True(t, record.Authorized)

		authorized, err := svc.IsAuthorized(context.Background(), institution)
		require.NoError(t, err)
		assert.True(t, authorized)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, events.KindInstitutionAuthorized, publisher.events[0].Kind)
		assert.Equal(t, institution, publisher.events[0].Institution)
	})

	t.Run("re-authorizing is a no-op that still notifies", func(t *testing.T) {
		publisher := &capturingPublisher{}
		svc := newTestService(publisher)

		_, err := svc.Authorize(context.Background(), owner, institution)
		require.NoError(t, err)
		record, err := svc.Authorize(context.Background(), owner, institution)
		require.NoError(t, err)

		assert.True(t, record.Authorized)
		assert.Len(t, publisher.events, 2)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		svc := newTestService(nil)

		_, err := svc.Authorize(context.Background(), stranger, institution)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

		authorized, err := svc.IsAuthorized(context.Background(), institution)
		require.NoError(t, err)
		assert.False(t, authorized)
	})

	t.Run("zero institution is rejected", func(t *testing.T) {
		svc := newTestService(nil)

		_, err := svc.Authorize(context.Background(), owner, domain.ZeroIdentity)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestRevoke(t *testing.T) {
	t.Run("owner revokes an authorized institution", func(t *testing.T) {
		publisher := &capturingPublisher{}
		svc := newTestService(publisher)

		_, err := svc.Authorize(context.Background(), owner, institution)
		require.NoError(t, err)

		record, err := svc.Revoke(context.Background(), owner, institution)
		require.NoError(t, err)
		assert.False(t, record.Authorized)

		authorized, err := svc.IsAuthorized(context.Background(), institution)
		require.NoError(t, err)
		assert.False(t, authorized)

		require.Len(t, publisher.events, 2)
		assert.Equal(t, events.KindInstitutionRevoked, publisher.events[1].Kind)
	})

	t.Run("revoking an unknown institution records a non-authorized entry", func(t *testing.T) {
		svc := newTestService(nil)

		record, err := svc.Revoke(context.Background(), owner, institution)
		require.NoError(t, err)
		assert.False(t, record.Authorized)

		got, err := svc.Get(context.Background(), institution)
		require.NoError(t, err)
		assert.False(t, got.Authorized)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		svc := newTestService(nil)

		_, err := svc.Revoke(context.Background(), stranger, institution)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestReauthorizationRestoresIssuance(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Authorize(ctx, owner, institution)
	require.NoError(t, err)
	_, err = svc.Revoke(ctx, owner, institution)
	require.NoError(t, err)
	_, err = svc.Authorize(ctx, owner, institution)
	require.NoError(t, err)

	authorized, err := svc.IsAuthorized(ctx, institution)
	require.NoError(t, err)
	assert.True(t, authorized)
}

func TestIsAuthorized(t *testing.T) {
	svc := newTestService(nil)

	t.Run("unknown institution is not authorized", func(t *testing.T) {
		authorized, err := svc.IsAuthorized(context.Background(), institution)
		require.NoError(t, err)
		assert.False(t, authorized)
	})

	t.Run("zero identity is never authorized", func(t *testing.T) {
		authorized, err := svc.IsAuthorized(context.Background(), domain.ZeroIdentity)
		require.NoError(t, err)
		assert.False(t, authorized)
	})
}

func TestIsOwner(t *testing.T) {
	svc := newTestService(nil)

	assert.True(t, svc.IsOwner(owner))
	assert.False(t, svc.IsOwner(stranger))
	assert.False(t, svc.IsOwner(domain.ZeroIdentity))
	assert.False(t, svc.IsOwner(""))
}

func TestList(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Authorize(ctx, owner, institution)
	require.NoError(t, err)
	_, err = svc.Revoke(ctx, owner, stranger)
	require.NoError(t, err)

	records, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Sorted by identity.
	assert.Equal(t, institution, records[0].Identity)
	assert.Equal(t, stranger, records[1].Identity)
}

func TestGetUnknownInstitution(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Get(context.Background(), institution)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
