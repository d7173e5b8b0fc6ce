// Package ports defines what the access module needs from the credential
// store, expressed in domain types only.
package ports

import (
	"context"

	"soulbound/pkg/domain"
)

// CredentialView is the slice of a credential the access module cares
// about: who holds it, whether it carries private data, and the opaque
// handles themselves.
type CredentialView struct {
	Holder         domain.Identity
	HasPrivateData bool

	StudentID    []byte
	Grade        []byte
	PersonalData []byte
}

// CredentialReader resolves a credential id to its access-relevant view.
// Implementations return sentinel.ErrNotFound for unknown ids.
type CredentialReader interface {
	Find(ctx context.Context, id domain.CredentialID) (*CredentialView, error)
}
