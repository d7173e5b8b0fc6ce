package handler

import (
	"time"

	"soulbound/internal/registry/models"
)

// InstitutionResponse is the HTTP representation of an allowlist entry.
type InstitutionResponse struct {
	Identity   string    `json:"identity"`
	Authorized bool      `json:"authorized"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InstitutionListResponse wraps the allowlist listing.
type InstitutionListResponse struct {
	Institutions []*InstitutionResponse `json:"institutions"`
}

func toInstitutionResponse(record *models.Institution) *InstitutionResponse {
	return &InstitutionResponse{
		Identity:   record.Identity.String(),
		Authorized: record.Authorized,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}
