package handler

import (
	"time"

	dErrors "soulbound/pkg/domain-errors"
)

// GrantRequest is the body for POST /credentials/{id}/access/{viewer}/grant.
// A zero duration encodes "never expires".
type GrantRequest struct {
	DurationSeconds int64 `json:"duration_seconds"`
}

func (r *GrantRequest) Validate() error {
	if r.DurationSeconds < 0 {
		return dErrors.New(dErrors.CodeValidation, "duration_seconds must not be negative")
	}
	return nil
}

func (r *GrantRequest) duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}
