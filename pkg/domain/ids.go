// Package domain provides the identifier types shared by every module:
// ledger identities (address-equivalent keys) and credential ids.
package domain

import (
	"strconv"
	"strings"

	dErrors "soulbound/pkg/domain-errors"
)

// Identity is an address-equivalent key identifying an institution, holder,
// or viewer. Canonical form is "0x" followed by 40 lowercase hex digits.
type Identity string

// ZeroIdentity is the null identity. Minting to it is rejected; an ownership
// transition to it models a burn.
const ZeroIdentity Identity = "0x0000000000000000000000000000000000000000"

const identityHexLen = 40

// ParseIdentity validates and canonicalizes an identity at trust boundaries
// (handlers, token claims, CLI input). The zero identity parses successfully;
// callers that must reject it use IsZero.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must start with 0x")
	}
	hex := s[2:]
	if len(hex) != identityHexLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must be 20 bytes of hex")
	}
	for _, c := range hex {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return "", dErrors.New(dErrors.CodeInvalidInput, "identity contains non-hex characters")
		}
	}
	return Identity("0x" + strings.ToLower(hex)), nil
}

func (id Identity) String() string { return string(id) }

// IsZero reports whether the identity is absent or the null address.
func (id Identity) IsZero() bool { return id == "" || id == ZeroIdentity }

// CredentialID is a sequential credential identifier assigned at issuance.
// Ids start at zero, never repeat, and are never reassigned.
type CredentialID uint64

// ParseCredentialID parses a decimal credential id from path or query input.
func ParseCredentialID(s string) (CredentialID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "credential id cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid credential id format")
	}
	return CredentialID(n), nil
}

func (id CredentialID) String() string { return strconv.FormatUint(uint64(id), 10) }
