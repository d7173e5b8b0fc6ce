package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/pkg/domain"
)

const caller = domain.Identity("0x1111111111111111111111111111111111111111")

func TestGenerateValidateRoundTrip(t *testing.T) {
	svc := NewService("test-signing-key", "soulbound", time.Hour)

	token, err := svc.Generate(caller, time.Now())
	require.NoError(t, err)

	got, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, caller, got)
}

func TestGenerateRejectsZeroIdentity(t *testing.T) {
	svc := NewService("test-signing-key", "soulbound", time.Hour)

	_, err := svc.Generate(domain.ZeroIdentity, time.Now())
	require.Error(t, err)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	svc := NewService("test-signing-key", "soulbound", time.Hour)
	other := NewService("different-key", "soulbound", time.Hour)

	token, err := svc.Generate(caller, time.Now())
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	svc := NewService("test-signing-key", "soulbound", time.Hour)
	other := NewService("test-signing-key", "someone-else", time.Hour)

	token, err := other.Generate(caller, time.Now())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key", "soulbound", time.Minute)

	token, err := svc.Generate(caller, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "soulbound", time.Hour)

	_, err := svc.Validate("not-a-jwt")
	require.Error(t, err)
}
