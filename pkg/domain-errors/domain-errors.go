package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in credential-lifecycle terms, not
// HTTP terms.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"

	// Credential lifecycle codes. Each names a caller-visible failure
	// condition from the contract surface.
	CodeSoulbound        Code = "soulbound_transfer"       // any holder-to-holder transition or approval
	CodeAlreadyRevoked   Code = "already_revoked"          // second revocation of the same credential
	CodeNoPrivateData    Code = "no_private_data"          // ACL operation on a public credential
	CodeNoAccess         Code = "no_private_data_access"   // viewer has no valid grant
	CodeInvalidRecipient Code = "invalid_recipient"        // issuance to the zero identity
	CodeNotInstitution   Code = "not_authorized_issuer"    // caller not in the institution allowlist
	CodeNotIssuer        Code = "only_issuer_can_revoke"   // revocation by a non-issuer, non-owner caller
	CodeNotHolder        Code = "only_holder_can_grant"    // ACL mutation by a non-holder caller
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
