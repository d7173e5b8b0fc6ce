package models

import (
	"time"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// PrivateData holds the three opaque encrypted handles attached to a hybrid
// credential. The handles are produced and consumed by the external
// encryption service; this module stores and returns them verbatim and
// never interprets them.
type PrivateData struct {
	StudentID    []byte `json:"-"`
	Grade        []byte `json:"-"`
	PersonalData []byte `json:"-"`
}

// Credential is the aggregate for one issued credential. Every descriptive
// field is immutable after issuance; the only mutable field is the one-way
// revoked flag.
//
// Invariants:
//   - Holder never changes after mint (soulbound).
//   - Revoked never resets to false.
//   - HasPrivateData is fixed at issuance; PrivateData is set iff it is true.
type Credential struct {
	ID       domain.CredentialID `json:"id"`
	Issuer   domain.Identity     `json:"issuer"`
	Holder   domain.Identity     `json:"holder"`
	IssuedAt time.Time           `json:"issued_at"`

	CredentialType         string `json:"credential_type"`
	AchievementName        string `json:"achievement_name"`
	AchievementDescription string `json:"achievement_description"`
	MetadataURI            string `json:"metadata_uri"`

	HasPrivateData bool         `json:"has_private_data"`
	PrivateData    *PrivateData `json:"-"`

	Revoked   bool            `json:"revoked"`
	RevokedAt time.Time       `json:"revoked_at,omitzero"`
	RevokedBy domain.Identity `json:"revoked_by,omitempty"`
}

// NewPublic creates a credential without private data. The id is assigned by
// the store at insert so failed issuance never advances the counter.
func NewPublic(issuer, recipient domain.Identity, credentialType, name, description, metadataURI string, now time.Time) (*Credential, error) {
	if err := validateIssuance(issuer, recipient); err != nil {
		return nil, err
	}
	return &Credential{
		Issuer:                 issuer,
		Holder:                 recipient,
		IssuedAt:               now,
		CredentialType:         credentialType,
		AchievementName:        name,
		AchievementDescription: description,
		MetadataURI:            metadataURI,
	}, nil
}

// NewHybrid creates a credential carrying the three opaque private handles.
func NewHybrid(issuer, recipient domain.Identity, credentialType, name, description, metadataURI string, studentID, grade, personalData []byte, now time.Time) (*Credential, error) {
	cred, err := NewPublic(issuer, recipient, credentialType, name, description, metadataURI, now)
	if err != nil {
		return nil, err
	}
	cred.HasPrivateData = true
	cred.PrivateData = &PrivateData{
		StudentID:    studentID,
		Grade:        grade,
		PersonalData: personalData,
	}
	return cred, nil
}

// Revoke transitions the credential to revoked. Terminal: there is no
// un-revoke. A second revocation fails so racing revokers get a legible
// error instead of silently overwriting the first revoker's attribution.
func (c *Credential) Revoke(revoker domain.Identity, now time.Time) error {
	if c.Revoked {
		return dErrors.New(dErrors.CodeAlreadyRevoked, "credential is already revoked")
	}
	c.Revoked = true
	c.RevokedAt = now
	c.RevokedBy = revoker
	return nil
}

// CanRevoke reports whether the caller holds revocation authority: the
// original issuer or the global owner. Other institutions, even currently
// authorized ones, may not revoke someone else's credential.
func (c *Credential) CanRevoke(caller, owner domain.Identity) bool {
	if caller.IsZero() {
		return false
	}
	return caller == c.Issuer || caller == owner
}

func validateIssuance(issuer, recipient domain.Identity) error {
	if issuer.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "issuer identity required")
	}
	if recipient.IsZero() {
		return dErrors.New(dErrors.CodeInvalidRecipient, "cannot issue to the zero identity")
	}
	return nil
}
