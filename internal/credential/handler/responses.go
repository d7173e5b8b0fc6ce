package handler

import (
	"time"

	"soulbound/internal/credential/models"
	"soulbound/internal/credential/service"
	"soulbound/pkg/domain"
)

// CredentialResponse is the public view of a credential. Private handles are
// never part of this shape; they are only reachable through the access
// module's gated endpoint.
type CredentialResponse struct {
	ID       domain.CredentialID `json:"id"`
	Issuer   domain.Identity     `json:"issuer"`
	Holder   domain.Identity     `json:"holder"`
	IssuedAt time.Time           `json:"issued_at"`

	CredentialType         string `json:"credential_type"`
	AchievementName        string `json:"achievement_name"`
	AchievementDescription string `json:"achievement_description,omitempty"`
	MetadataURI            string `json:"metadata_uri,omitempty"`

	HasPrivateData bool `json:"has_private_data"`

	Revoked   bool            `json:"revoked"`
	RevokedAt *time.Time      `json:"revoked_at,omitempty"`
	RevokedBy domain.Identity `json:"revoked_by,omitempty"`
}

func toCredentialResponse(c *models.Credential) *CredentialResponse {
	resp := &CredentialResponse{
		ID:                     c.ID,
		Issuer:                 c.Issuer,
		Holder:                 c.Holder,
		IssuedAt:               c.IssuedAt,
		CredentialType:         c.CredentialType,
		AchievementName:        c.AchievementName,
		AchievementDescription: c.AchievementDescription,
		MetadataURI:            c.MetadataURI,
		HasPrivateData:         c.HasPrivateData,
		Revoked:                c.Revoked,
		RevokedBy:              c.RevokedBy,
	}
	if !c.RevokedAt.IsZero() {
		t := c.RevokedAt
		resp.RevokedAt = &t
	}
	return resp
}

// VerifyResponse reports derived validity alongside the fields a relying
// party needs to display the result.
type VerifyResponse struct {
	ID               domain.CredentialID `json:"id"`
	Valid            bool                `json:"valid"`
	Revoked          bool                `json:"revoked"`
	IssuerAuthorized bool                `json:"issuer_authorized"`
	Issuer           domain.Identity     `json:"issuer"`
	Holder           domain.Identity     `json:"holder"`
	IssuedAt         time.Time           `json:"issued_at"`
}

func toVerifyResponse(v *service.Verification) *VerifyResponse {
	return &VerifyResponse{
		ID:               v.Credential.ID,
		Valid:            v.Valid,
		Revoked:          v.Credential.Revoked,
		IssuerAuthorized: v.IssuerAuthorized,
		Issuer:           v.Credential.Issuer,
		Holder:           v.Credential.Holder,
		IssuedAt:         v.Credential.IssuedAt,
	}
}

// SupplyResponse reports the number of credentials ever issued.
type SupplyResponse struct {
	TotalSupply uint64 `json:"total_supply"`
}
