package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessmodels "soulbound/internal/access/models"
	"soulbound/internal/access/ports"
	"soulbound/internal/access/store"
	credentialmodels "soulbound/internal/credential/models"
	credentialstore "soulbound/internal/credential/store"
	"soulbound/internal/events"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/middleware/requesttime"
)

var (
	owner    = domain.Identity("0x9999999999999999999999999999999999999999")
	issuer   = domain.Identity("0x1111111111111111111111111111111111111111")
	holder   = domain.Identity("0x2222222222222222222222222222222222222222")
	viewer   = domain.Identity("0x5555555555555555555555555555555555555555")
	stranger = domain.Identity("0x3333333333333333333333333333333333333333")
)

type capturingPublisher struct {
	events []events.Event
}

func (p *capturingPublisher) Emit(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	service     *Service
	events      *capturingPublisher
	credentials *credentialstore.InMemory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	credentials := credentialstore.NewInMemory()
	publisher := &capturingPublisher{}
	svc := New(owner, ports.NewStoreAdapter(credentials), store.NewInMemory(),
		WithEventPublisher(publisher),
	)
	return &fixture{service: svc, events: publisher, credentials: credentials}
}

func (f *fixture) issueHybrid(t *testing.T) domain.CredentialID {
	t.Helper()
	cred, err := credentialmodels.NewHybrid(issuer, holder, "degree", "MSc", "", "",
		[]byte("enc:student"), []byte("enc:grade"), []byte("enc:personal"), time.Now())
	require.NoError(t, err)
	id, err := f.credentials.Create(context.Background(), cred)
	require.NoError(t, err)
	return id
}

func (f *fixture) issuePublic(t *testing.T) domain.CredentialID {
	t.Helper()
	cred, err := credentialmodels.NewPublic(issuer, holder, "degree", "BSc", "", "", time.Now())
	require.NoError(t, err)
	id, err := f.credentials.Create(context.Background(), cred)
	require.NoError(t, err)
	return id
}

func TestGrantAccess(t *testing.T) {
	t.Run("holder grants never-expiring access", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		grant, err := f.service.GrantAccess(context.Background(), holder, id, viewer, 0)
		require.NoError(t, err)
		assert.True(t, grant.HasAccess)
		assert.True(t, grant.ExpiresAt.IsZero())

		valid, err := f.service.HasValidAccess(context.Background(), id, viewer)
		require.NoError(t, err)
		assert.True(t, valid)

		require.Len(t, f.events.events, 1)
		event := f.events.events[0]
		assert.Equal(t, events.KindAccessGranted, event.Kind)
		assert.Equal(t, viewer, event.Viewer)
		assert.Nil(t, event.ExpiresAt)
	})

	t.Run("event timestamp follows the request clock", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		_, err := f.service.GrantAccess(requesttime.WithTime(context.Background(), at), holder, id, viewer, 0)
		require.NoError(t, err)

		require.Len(t, f.events.events, 1)
		assert.Equal(t, at, f.events.events[0].Timestamp)
	})

	t.Run("timed grant carries expiry in the event", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		_, err := f.service.GrantAccess(context.Background(), holder, id, viewer, time.Hour)
		require.NoError(t, err)

		require.Len(t, f.events.events, 1)
		require.NotNil(t, f.events.events[0].ExpiresAt)
	})

	t.Run("only the holder may grant", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		for _, caller := range []domain.Identity{issuer, stranger, owner} {
			_, err := f.service.GrantAccess(context.Background(), caller, id, viewer, 0)
			require.Error(t, err, "caller %s", caller)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeNotHolder))
		}
	})

	t.Run("public credential has no private data to grant", func(t *testing.T) {
		f := newFixture(t)
		id := f.issuePublic(t)

		_, err := f.service.GrantAccess(context.Background(), holder, id, viewer, 0)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNoPrivateData))
	})

	t.Run("negative duration is rejected", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		_, err := f.service.GrantAccess(context.Background(), holder, id, viewer, -time.Second)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("unknown credential", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.GrantAccess(context.Background(), holder, 99, viewer, 0)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestAccessExpiry(t *testing.T) {
	f := newFixture(t)
	id := f.issueHybrid(t)

	grantedAt := time.Now()
	ctx := requesttime.WithTime(context.Background(), grantedAt)
	_, err := f.service.GrantAccess(ctx, holder, id, viewer, time.Hour)
	require.NoError(t, err)

	t.Run("valid up to and including expiry", func(t *testing.T) {
		for _, offset := range []time.Duration{0, 30 * time.Minute, time.Hour} {
			ctx := requesttime.WithTime(context.Background(), grantedAt.Add(offset))
			valid, err := f.service.HasValidAccess(ctx, id, viewer)
			require.NoError(t, err)
			assert.True(t, valid, "offset %s", offset)
		}
	})

	t.Run("invalid strictly after expiry", func(t *testing.T) {
		ctx := requesttime.WithTime(context.Background(), grantedAt.Add(time.Hour+time.Second))
		valid, err := f.service.HasValidAccess(ctx, id, viewer)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("never-expiring grant survives arbitrary simulated future", func(t *testing.T) {
		_, err := f.service.GrantAccess(requesttime.WithTime(context.Background(), grantedAt), holder, id, stranger, 0)
		require.NoError(t, err)

		ctx := requesttime.WithTime(context.Background(), grantedAt.AddDate(100, 0, 0))
		valid, err := f.service.HasValidAccess(ctx, id, stranger)
		require.NoError(t, err)
		assert.True(t, valid)
	})
}

func TestRevokeAccess(t *testing.T) {
	t.Run("revoked viewer loses access but stays listed", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)
		ctx := context.Background()

		_, err := f.service.GrantAccess(ctx, holder, id, viewer, 0)
		require.NoError(t, err)
		require.NoError(t, f.service.RevokeAccess(ctx, holder, id, viewer))

		valid, err := f.service.HasValidAccess(ctx, id, viewer)
		require.NoError(t, err)
		assert.False(t, valid)

		viewers, err := f.service.GetAccessList(ctx, holder, id)
		require.NoError(t, err)
		assert.Contains(t, viewers, viewer)

		require.Len(t, f.events.events, 2)
		assert.Equal(t, events.KindAccessRevoked, f.events.events[1].Kind)
	})

	t.Run("revoking an absent grant is a no-op", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		require.NoError(t, f.service.RevokeAccess(context.Background(), holder, id, viewer))
		assert.Empty(t, f.events.events)
	})

	t.Run("only the holder may revoke", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		err := f.service.RevokeAccess(context.Background(), stranger, id, viewer)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotHolder))
	})

	t.Run("regrant after revocation restores access", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)
		ctx := context.Background()

		_, err := f.service.GrantAccess(ctx, holder, id, viewer, 0)
		require.NoError(t, err)
		require.NoError(t, f.service.RevokeAccess(ctx, holder, id, viewer))
		_, err = f.service.GrantAccess(ctx, holder, id, viewer, 0)
		require.NoError(t, err)

		valid, err := f.service.HasValidAccess(ctx, id, viewer)
		require.NoError(t, err)
		assert.True(t, valid)

		// No duplicate access-list entry from the regrant.
		viewers, err := f.service.GetAccessList(ctx, holder, id)
		require.NoError(t, err)
		assert.Equal(t, []domain.Identity{viewer}, viewers)
	})
}

// failingGrantStore lets the first failAfter upserts through, then errors.
type failingGrantStore struct {
	*store.InMemory
	failAfter int
	calls     int
}

func (s *failingGrantStore) Upsert(ctx context.Context, grant *accessmodels.Grant) error {
	s.calls++
	if s.calls > s.failAfter {
		return errors.New("grant store down")
	}
	return s.InMemory.Upsert(ctx, grant)
}

func TestAutoGrant(t *testing.T) {
	t.Run("grants holder and issuer never-expiring access", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)
		ctx := context.Background()

		require.NoError(t, f.service.AutoGrant(ctx, id, holder, issuer, time.Now()))

		for _, v := range []domain.Identity{holder, issuer} {
			valid, err := f.service.HasValidAccess(ctx, id, v)
			require.NoError(t, err)
			assert.True(t, valid, "viewer %s", v)
		}

		valid, err := f.service.HasValidAccess(ctx, id, stranger)
		require.NoError(t, err)
		assert.False(t, valid)

		viewers, err := f.service.GetAccessList(ctx, holder, id)
		require.NoError(t, err)
		assert.Equal(t, []domain.Identity{holder, issuer}, viewers)
	})

	t.Run("failed upsert leaves no partial grants and no events", func(t *testing.T) {
		ctx := context.Background()
		credentials := credentialstore.NewInMemory()
		publisher := &capturingPublisher{}
		grants := &failingGrantStore{InMemory: store.NewInMemory(), failAfter: 1}
		svc := New(owner, ports.NewStoreAdapter(credentials), grants,
			WithEventPublisher(publisher),
		)

		cred, err := credentialmodels.NewHybrid(issuer, holder, "degree", "MSc", "", "",
			[]byte("enc:student"), []byte("enc:grade"), []byte("enc:personal"), time.Now())
		require.NoError(t, err)
		id, err := credentials.Create(ctx, cred)
		require.NoError(t, err)

		require.Error(t, svc.AutoGrant(ctx, id, holder, issuer, time.Now()))

		// The holder grant that made it in is rolled back with the rest.
		valid, err := svc.HasValidAccess(ctx, id, holder)
		require.NoError(t, err)
		assert.False(t, valid)

		viewers, err := grants.ListViewers(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, viewers)
		assert.Empty(t, publisher.events)
	})
}

func TestGetPrivateData(t *testing.T) {
	t.Run("viewer with valid access receives handles verbatim", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)
		ctx := context.Background()

		_, err := f.service.GrantAccess(ctx, holder, id, viewer, 0)
		require.NoError(t, err)

		handles, err := f.service.GetPrivateData(ctx, viewer, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("enc:student"), handles.StudentID)
		assert.Equal(t, []byte("enc:grade"), handles.Grade)
		assert.Equal(t, []byte("enc:personal"), handles.PersonalData)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		_, err := f.service.GetPrivateData(context.Background(), stranger, id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNoAccess))
	})

	t.Run("revoked viewer is denied", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)
		ctx := context.Background()

		_, err := f.service.GrantAccess(ctx, holder, id, viewer, 0)
		require.NoError(t, err)
		require.NoError(t, f.service.RevokeAccess(ctx, holder, id, viewer))

		_, err = f.service.GetPrivateData(ctx, viewer, id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNoAccess))
	})

	t.Run("expired viewer is denied", func(t *testing.T) {
		f := newFixture(t)
		id := f.issueHybrid(t)

		grantedAt := time.Now()
		_, err := f.service.GrantAccess(requesttime.WithTime(context.Background(), grantedAt), holder, id, viewer, time.Minute)
		require.NoError(t, err)

		ctx := requesttime.WithTime(context.Background(), grantedAt.Add(2*time.Minute))
		_, err = f.service.GetPrivateData(ctx, viewer, id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNoAccess))
	})

	t.Run("public credential has no private data", func(t *testing.T) {
		f := newFixture(t)
		id := f.issuePublic(t)

		_, err := f.service.GetPrivateData(context.Background(), holder, id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNoPrivateData))
	})
}

func TestGetAccessList(t *testing.T) {
	f := newFixture(t)
	id := f.issueHybrid(t)
	ctx := context.Background()

	_, err := f.service.GrantAccess(ctx, holder, id, viewer, 0)
	require.NoError(t, err)

	t.Run("holder and owner may list", func(t *testing.T) {
		for _, caller := range []domain.Identity{holder, owner} {
			viewers, err := f.service.GetAccessList(ctx, caller, id)
			require.NoError(t, err)
			assert.Equal(t, []domain.Identity{viewer}, viewers)
		}
	})

	t.Run("others may not", func(t *testing.T) {
		_, err := f.service.GetAccessList(ctx, stranger, id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotHolder))
	})
}
