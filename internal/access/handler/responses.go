package handler

import (
	"time"

	"soulbound/internal/access/models"
	"soulbound/pkg/domain"
)

// GrantResponse is the wire shape of an access grant.
type GrantResponse struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	Viewer       domain.Identity     `json:"viewer"`
	HasAccess    bool                `json:"has_access"`
	GrantedAt    time.Time           `json:"granted_at"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
}

func toGrantResponse(grant *models.Grant) *GrantResponse {
	resp := &GrantResponse{
		CredentialID: grant.CredentialID,
		Viewer:       grant.Viewer,
		HasAccess:    grant.HasAccess,
		GrantedAt:    grant.GrantedAt,
	}
	if !grant.ExpiresAt.IsZero() {
		t := grant.ExpiresAt
		resp.ExpiresAt = &t
	}
	return resp
}

// AccessCheckResponse reports the lazily evaluated validity of a grant.
type AccessCheckResponse struct {
	CredentialID   domain.CredentialID `json:"credential_id"`
	Viewer         domain.Identity     `json:"viewer"`
	HasValidAccess bool                `json:"has_valid_access"`
}

// AccessListResponse enumerates every viewer ever granted access.
type AccessListResponse struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	Viewers      []domain.Identity   `json:"viewers"`
}

// PrivateDataResponse carries the three opaque handles, base64-encoded on
// the wire.
type PrivateDataResponse struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	StudentID    []byte              `json:"student_id"`
	Grade        []byte              `json:"grade"`
	PersonalData []byte              `json:"personal_data"`
}
