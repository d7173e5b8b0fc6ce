package models

import (
	"time"

	"soulbound/pkg/domain"
)

// Institution is an entry in the owner-controlled issuer allowlist.
// Authorization is toggled, never erased: a revoked institution keeps its
// row so credentials it already issued remain queryable (their derived
// validity simply flips to false).
type Institution struct {
	Identity   domain.Identity `json:"identity"`
	Authorized bool            `json:"authorized"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewInstitution creates an authorized allowlist entry.
func NewInstitution(identity domain.Identity, now time.Time) *Institution {
	return &Institution{
		Identity:   identity,
		Authorized: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Authorize marks the institution as authorized. Re-authorizing an already
// authorized institution is a no-op; the caller still emits a notification.
func (i *Institution) Authorize(now time.Time) (changed bool) {
	if i.Authorized {
		return false
	}
	i.Authorized = true
	i.UpdatedAt = now
	return true
}

// Revoke clears the authorization flag. Idempotent like Authorize.
func (i *Institution) Revoke(now time.Time) (changed bool) {
	if !i.Authorized {
		return false
	}
	i.Authorized = false
	i.UpdatedAt = now
	return true
}
