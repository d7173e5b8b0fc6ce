package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

var (
	issuer    = domain.Identity("0x1111111111111111111111111111111111111111")
	holder    = domain.Identity("0x2222222222222222222222222222222222222222")
	stranger  = domain.Identity("0x3333333333333333333333333333333333333333")
	ownerAddr = domain.Identity("0x9999999999999999999999999999999999999999")
)

func TestNewPublic(t *testing.T) {
	now := time.Now()
	cred, err := NewPublic(issuer, holder, "degree", "BSc", "computer science", "ipfs://meta", now)
	require.NoError(t, err)

	assert.Equal(t, issuer, cred.Issuer)
	assert.Equal(t, holder, cred.Holder)
	assert.Equal(t, now, cred.IssuedAt)
	assert.False(t, cred.HasPrivateData)
	assert.Nil(t, cred.PrivateData)
	assert.False(t, cred.Revoked)
}

func TestNewPublicRejectsZeroRecipient(t *testing.T) {
	_, err := NewPublic(issuer, domain.ZeroIdentity, "degree", "BSc", "", "", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidRecipient))
}

func TestNewPublicRejectsZeroIssuer(t *testing.T) {
	_, err := NewPublic("", holder, "degree", "BSc", "", "", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestNewHybridStoresHandlesVerbatim(t *testing.T) {
	studentID := []byte("enc:student")
	grade := []byte("enc:grade")
	personal := []byte("enc:personal")

	cred, err := NewHybrid(issuer, holder, "degree", "MSc", "", "", studentID, grade, personal, time.Now())
	require.NoError(t, err)

	assert.True(t, cred.HasPrivateData)
	require.NotNil(t, cred.PrivateData)
	assert.Equal(t, studentID, cred.PrivateData.StudentID)
	assert.Equal(t, grade, cred.PrivateData.Grade)
	assert.Equal(t, personal, cred.PrivateData.PersonalData)
}

func TestRevokeIsTerminal(t *testing.T) {
	cred, err := NewPublic(issuer, holder, "degree", "BSc", "", "", time.Now())
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, cred.Revoke(issuer, now))
	assert.True(t, cred.Revoked)
	assert.Equal(t, now, cred.RevokedAt)
	assert.Equal(t, issuer, cred.RevokedBy)

	err = cred.Revoke(ownerAddr, now.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))

	// First revoker's attribution survives the failed second attempt.
	assert.Equal(t, issuer, cred.RevokedBy)
	assert.Equal(t, now, cred.RevokedAt)
}

func TestCanRevoke(t *testing.T) {
	cred, err := NewPublic(issuer, holder, "degree", "BSc", "", "", time.Now())
	require.NoError(t, err)

	assert.True(t, cred.CanRevoke(issuer, ownerAddr))
	assert.True(t, cred.CanRevoke(ownerAddr, ownerAddr))
	assert.False(t, cred.CanRevoke(stranger, ownerAddr))
	assert.False(t, cred.CanRevoke(holder, ownerAddr))
	assert.False(t, cred.CanRevoke(domain.ZeroIdentity, ownerAddr))
}
