package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "soulbound/pkg/domain-errors"
)

func TestParseIdentity(t *testing.T) {
	t.Run("canonicalizes to lowercase", func(t *testing.T) {
		id, err := ParseIdentity("0xABCDEF0123456789abcdef0123456789ABCDEF01")
		require.NoError(t, err)
		assert.Equal(t, Identity("0xabcdef0123456789abcdef0123456789abcdef01"), id)
	})

	t.Run("accepts uppercase 0X prefix", func(t *testing.T) {
		id, err := ParseIdentity("0X" + "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12")
		require.NoError(t, err)
		assert.Equal(t, Identity("0xab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"), id)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		id, err := ParseIdentity("  0x1111111111111111111111111111111111111111  ")
		require.NoError(t, err)
		assert.Equal(t, Identity("0x1111111111111111111111111111111111111111"), id)
	})

	t.Run("zero identity parses and reports IsZero", func(t *testing.T) {
		id, err := ParseIdentity("0x0000000000000000000000000000000000000000")
		require.NoError(t, err)
		assert.Equal(t, ZeroIdentity, id)
		assert.True(t, id.IsZero())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		cases := map[string]string{
			"empty":       "",
			"no prefix":   "1111111111111111111111111111111111111111",
			"too short":   "0x1111",
			"too long":    "0x11111111111111111111111111111111111111111111",
			"non-hex":     "0x111111111111111111111111111111111111111g",
			"only prefix": "0x",
		}
		for name, input := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := ParseIdentity(input)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			})
		}
	})
}

func TestIdentityIsZero(t *testing.T) {
	assert.True(t, Identity("").IsZero())
	assert.True(t, ZeroIdentity.IsZero())
	assert.False(t, Identity("0x1111111111111111111111111111111111111111").IsZero())
}

func TestParseCredentialID(t *testing.T) {
	t.Run("parses decimal ids including zero", func(t *testing.T) {
		id, err := ParseCredentialID("0")
		require.NoError(t, err)
		assert.Equal(t, CredentialID(0), id)

		id, err = ParseCredentialID("42")
		require.NoError(t, err)
		assert.Equal(t, CredentialID(42), id)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		for _, input := range []string{"", "-1", "abc", "1.5"} {
			_, err := ParseCredentialID(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("round-trips through String", func(t *testing.T) {
		id, err := ParseCredentialID(CredentialID(7).String())
		require.NoError(t, err)
		assert.Equal(t, CredentialID(7), id)
	})
}
