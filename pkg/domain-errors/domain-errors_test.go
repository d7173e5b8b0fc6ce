package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeSoulbound, "credentials are soulbound")
	assert.True(t, HasCode(err, CodeSoulbound))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeSoulbound))
	assert.False(t, HasCode(nil, CodeSoulbound))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeAlreadyRevoked, "already revoked")
	wrapped := fmt.Errorf("revoke failed: %w", inner)
	assert.True(t, HasCode(wrapped, CodeAlreadyRevoked))
}

func TestWrapPreservesExistingCode(t *testing.T) {
	inner := New(CodeNotHolder, "only the holder")
	wrapped := Wrap(inner, CodeInternal, "grant failed")

	assert.True(t, HasCode(wrapped, CodeNotHolder))
	assert.Equal(t, "grant failed", wrapped.Error())
	assert.True(t, errors.Is(errors.Unwrap(wrapped), inner))
}

func TestWrapAssignsCodeToForeignErrors(t *testing.T) {
	inner := errors.New("connection refused")
	wrapped := Wrap(inner, CodeInternal, "store unavailable")

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestIsMatchesByCode(t *testing.T) {
	require.True(t, errors.Is(New(CodeNoAccess, "a"), New(CodeNoAccess, "b")))
	require.False(t, errors.Is(New(CodeNoAccess, "a"), New(CodeNoPrivateData, "b")))
}

func TestErrorMessageFallsBackToCode(t *testing.T) {
	err := &Error{Code: CodeConflict}
	assert.Equal(t, string(CodeConflict), err.Error())
}
