package events

import (
	"time"

	"soulbound/pkg/domain"
)

// Kind names a ledger event consumed by off-service indexers.
type Kind string

const (
	KindInstitutionAuthorized Kind = "institution_authorized"
	KindInstitutionRevoked    Kind = "institution_revoked"
	KindCredentialIssued      Kind = "credential_issued"
	KindCredentialRevoked     Kind = "credential_revoked"
	KindAccessGranted         Kind = "private_data_access_granted"
	KindAccessRevoked         Kind = "private_data_access_revoked"
)

// Event is emitted from domain logic after every successful state change.
// It is the only notification mechanism: indexers and dashboards subscribe
// to the log instead of re-querying full state. Keep it transport-agnostic
// so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`

	// Actor is the identity that performed the state change (owner,
	// institution, holder) - the revoker for credential_revoked.
	Actor domain.Identity `json:"actor,omitempty"`

	// Institution is set on registry events.
	Institution domain.Identity `json:"institution,omitempty"`

	// Credential is set on issuance, revocation, and access events.
	Credential *domain.CredentialID `json:"credential_id,omitempty"`

	// Issuance payload. HasPrivateData lets consumers branch without
	// re-reading storage.
	Issuer         domain.Identity `json:"issuer,omitempty"`
	Recipient      domain.Identity `json:"recipient,omitempty"`
	CredentialType string          `json:"credential_type,omitempty"`
	HasPrivateData bool            `json:"has_private_data,omitempty"`

	// Access payload. A nil ExpiresAt on a grant means "never expires".
	Viewer    domain.Identity `json:"viewer,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}
