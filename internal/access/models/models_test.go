package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

const viewer = domain.Identity("0x5555555555555555555555555555555555555555")

func TestNewGrant(t *testing.T) {
	now := time.Now()

	t.Run("zero duration never expires", func(t *testing.T) {
		grant, err := NewGrant(1, viewer, 0, now)
		require.NoError(t, err)
		assert.True(t, grant.HasAccess)
		assert.True(t, grant.ExpiresAt.IsZero())
		assert.True(t, grant.ValidAt(now.Add(100*365*24*time.Hour)))
	})

	t.Run("positive duration sets window", func(t *testing.T) {
		grant, err := NewGrant(1, viewer, time.Hour, now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Hour), grant.ExpiresAt)
	})

	t.Run("negative duration is rejected", func(t *testing.T) {
		_, err := NewGrant(1, viewer, -time.Second, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestValidAt(t *testing.T) {
	now := time.Now()
	grant, err := NewGrant(1, viewer, time.Hour, now)
	require.NoError(t, err)

	assert.True(t, grant.ValidAt(now))
	assert.True(t, grant.ValidAt(now.Add(time.Hour)), "valid exactly at expiry")
	assert.False(t, grant.ValidAt(now.Add(time.Hour+time.Nanosecond)), "invalid strictly after expiry")
}

func TestRevokeRetainsRecord(t *testing.T) {
	now := time.Now()
	grant, err := NewGrant(1, viewer, 0, now)
	require.NoError(t, err)

	grant.Revoke()
	assert.False(t, grant.HasAccess)
	assert.False(t, grant.ValidAt(now))
	assert.Equal(t, viewer, grant.Viewer)
}

func TestRenew(t *testing.T) {
	now := time.Now()
	grant, err := NewGrant(1, viewer, time.Minute, now)
	require.NoError(t, err)

	grant.Revoke()

	later := now.Add(time.Hour)
	require.NoError(t, grant.Renew(0, later))
	assert.True(t, grant.HasAccess)
	assert.Equal(t, later, grant.GrantedAt)
	assert.True(t, grant.ExpiresAt.IsZero())

	require.Error(t, grant.Renew(-time.Minute, later))
}
