// Package models defines the per-viewer access grant for a credential's
// private data.
package models

import (
	"time"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Grant records one (credential, viewer) access pair. A revoked grant is
// retained, never deleted, so repeated revocations stay idempotent and the
// access list keeps its historical entries.
//
// A zero ExpiresAt means the grant never expires. Expiry is evaluated lazily
// against the caller-visible clock; nothing sweeps grants in the background.
type Grant struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	Viewer       domain.Identity     `json:"viewer"`
	HasAccess    bool                `json:"has_access"`
	GrantedAt    time.Time           `json:"granted_at"`
	ExpiresAt    time.Time           `json:"expires_at,omitzero"`
}

// NewGrant creates an active grant. A zero duration encodes "never expires";
// a negative duration is a structural error rejected before any write.
func NewGrant(id domain.CredentialID, viewer domain.Identity, duration time.Duration, now time.Time) (*Grant, error) {
	expiresAt, err := expiryFor(duration, now)
	if err != nil {
		return nil, err
	}
	return &Grant{
		CredentialID: id,
		Viewer:       viewer,
		HasAccess:    true,
		GrantedAt:    now,
		ExpiresAt:    expiresAt,
	}, nil
}

// Renew reactivates the grant with a fresh window, overwriting any earlier
// expiry or revocation.
func (g *Grant) Renew(duration time.Duration, now time.Time) error {
	expiresAt, err := expiryFor(duration, now)
	if err != nil {
		return err
	}
	g.HasAccess = true
	g.GrantedAt = now
	g.ExpiresAt = expiresAt
	return nil
}

// Revoke turns the grant off. The record survives so the access list keeps
// the viewer as a historical entry.
func (g *Grant) Revoke() {
	g.HasAccess = false
}

// ValidAt reports whether the grant admits the viewer at the given instant:
// false when revoked, true when never-expiring, otherwise a pure comparison
// against the stored expiry.
func (g *Grant) ValidAt(now time.Time) bool {
	if !g.HasAccess {
		return false
	}
	if g.ExpiresAt.IsZero() {
		return true
	}
	return !now.After(g.ExpiresAt)
}

func expiryFor(duration time.Duration, now time.Time) (time.Time, error) {
	if duration < 0 {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "expiration duration must not be negative")
	}
	if duration == 0 {
		return time.Time{}, nil
	}
	return now.Add(duration), nil
}
