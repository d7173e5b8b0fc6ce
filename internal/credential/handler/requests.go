package handler

import (
	"strings"

	"soulbound/internal/credential/service"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/validation"
)

// IssuePublicRequest is the body for POST /credentials.
type IssuePublicRequest struct {
	Recipient              string `json:"recipient" validate:"required,identity"`
	CredentialType         string `json:"credential_type" validate:"required,notblank,max=128"`
	AchievementName        string `json:"achievement_name" validate:"required,notblank,max=256"`
	AchievementDescription string `json:"achievement_description" validate:"max=2048"`
	MetadataURI            string `json:"metadata_uri" validate:"max=512"`
}

func (r *IssuePublicRequest) Normalize() {
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.CredentialType = strings.TrimSpace(r.CredentialType)
	r.AchievementName = strings.TrimSpace(r.AchievementName)
	r.AchievementDescription = strings.TrimSpace(r.AchievementDescription)
	r.MetadataURI = strings.TrimSpace(r.MetadataURI)
}

func (r *IssuePublicRequest) Validate() error {
	return validation.Validate(r)
}

func (r *IssuePublicRequest) toParams() (service.IssueParams, error) {
	recipient, err := domain.ParseIdentity(r.Recipient)
	if err != nil {
		return service.IssueParams{}, err
	}
	return service.IssueParams{
		Recipient:              recipient,
		CredentialType:         r.CredentialType,
		AchievementName:        r.AchievementName,
		AchievementDescription: r.AchievementDescription,
		MetadataURI:            r.MetadataURI,
	}, nil
}

// IssueHybridRequest is the body for POST /credentials/hybrid. The three
// handles arrive base64-encoded and are stored verbatim.
type IssueHybridRequest struct {
	IssuePublicRequest

	StudentID    []byte `json:"student_id" validate:"required"`
	Grade        []byte `json:"grade" validate:"required"`
	PersonalData []byte `json:"personal_data" validate:"required"`
}

func (r *IssueHybridRequest) Validate() error {
	if len(r.StudentID) == 0 || len(r.Grade) == 0 || len(r.PersonalData) == 0 {
		return dErrors.New(dErrors.CodeValidation, "all three private data handles are required")
	}
	return validation.Validate(&r.IssuePublicRequest)
}

func (r *IssueHybridRequest) toPrivateParams() service.PrivateParams {
	return service.PrivateParams{
		StudentID:    r.StudentID,
		Grade:        r.Grade,
		PersonalData: r.PersonalData,
	}
}

// TransferRequest is the body for POST /credentials/{id}/transfer. The
// operation always fails once decoded; the body exists so the rejection can
// name the attempted destination.
type TransferRequest struct {
	To string `json:"to" validate:"required"`
}

func (r *TransferRequest) Normalize() {
	r.To = strings.TrimSpace(r.To)
}

func (r *TransferRequest) Validate() error {
	return validation.Validate(r)
}

// ApproveRequest is the body for POST /credentials/{id}/approve.
type ApproveRequest struct {
	Spender string `json:"spender" validate:"required"`
}

func (r *ApproveRequest) Normalize() {
	r.Spender = strings.TrimSpace(r.Spender)
}

func (r *ApproveRequest) Validate() error {
	return validation.Validate(r)
}
