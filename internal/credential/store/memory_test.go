package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/internal/credential/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
)

func newCredential(t *testing.T) *models.Credential {
	t.Helper()
	cred, err := models.NewPublic(
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"degree", "BSc", "", "", time.Now(),
	)
	require.NoError(t, err)
	return cred
}

func TestCreateAssignsSequentialIDsFromZero(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	first, err := s.Create(ctx, newCredential(t))
	require.NoError(t, err)
	second, err := s.Create(ctx, newCredential(t))
	require.NoError(t, err)

	assert.Equal(t, domain.CredentialID(0), first)
	assert.Equal(t, domain.CredentialID(1), second)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestFindByIDReturnsCopy(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	id, err := s.Create(ctx, newCredential(t))
	require.NoError(t, err)

	got, err := s.FindByID(ctx, id)
	require.NoError(t, err)

	// Mutating the returned value must not leak into the store.
	got.Revoked = true
	again, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, again.Revoked)
}

func TestFindByIDUnknown(t *testing.T) {
	s := NewInMemory()

	_, err := s.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	cred := newCredential(t)
	id, err := s.Create(ctx, cred)
	require.NoError(t, err)

	stored, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	require.NoError(t, stored.Revoke(cred.Issuer, time.Now()))
	require.NoError(t, s.Update(ctx, stored))

	got, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Revoked)
}

func TestUpdateUnknown(t *testing.T) {
	s := NewInMemory()

	cred := newCredential(t)
	cred.ID = 7
	assert.ErrorIs(t, s.Update(context.Background(), cred), sentinel.ErrNotFound)
}

func TestDeleteReleasesTopID(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	id, err := s.Create(ctx, newCredential(t))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))

	_, err = s.FindByID(ctx, id)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// The released id is handed out again.
	reused, err := s.Create(ctx, newCredential(t))
	require.NoError(t, err)
	assert.Equal(t, id, reused)
}

func TestDeleteKeepsCounterWhenNotTop(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	first, err := s.Create(ctx, newCredential(t))
	require.NoError(t, err)
	_, err = s.Create(ctx, newCredential(t))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, first))

	next, err := s.Create(ctx, newCredential(t))
	require.NoError(t, err)
	assert.Equal(t, domain.CredentialID(2), next)
}

func TestDeleteUnknown(t *testing.T) {
	s := NewInMemory()

	assert.ErrorIs(t, s.Delete(context.Background(), 5), sentinel.ErrNotFound)
}

func TestPrivateDataIsDeepCopied(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	cred, err := models.NewHybrid(
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"degree", "MSc", "", "",
		[]byte("a"), []byte("b"), []byte("c"), time.Now(),
	)
	require.NoError(t, err)

	id, err := s.Create(ctx, cred)
	require.NoError(t, err)

	got, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.PrivateData)
	got.PrivateData.StudentID[0] = 'x'

	again, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), again.PrivateData.StudentID)
}
