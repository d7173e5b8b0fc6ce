package models

import (
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// TransitionKind classifies an attempted ownership transition. Every
// transfer-shaped entry point is reduced to one of these before any state
// is touched, so the soulbound rule lives in exactly one place and new
// entry points cannot diverge from it.
type TransitionKind int

const (
	// TransitionMint is the creation transition: no holder to a holder.
	TransitionMint TransitionKind = iota
	// TransitionBurn releases the credential: holder to no holder.
	TransitionBurn
	// TransitionTransfer is any holder-to-holder move. Always rejected.
	TransitionTransfer
)

// ClassifyTransition reduces a (from, to) pair to its transition kind.
func ClassifyTransition(from, to domain.Identity) TransitionKind {
	switch {
	case from.IsZero():
		return TransitionMint
	case to.IsZero():
		return TransitionBurn
	default:
		return TransitionTransfer
	}
}

// GuardTransition is the single choke-point for the soulbound rule: mint
// and burn pass, every holder-to-holder transition fails. All ownership
// entry points (direct transfer, safe-transfer variants, burn) must route
// through this guard.
func GuardTransition(from, to domain.Identity) error {
	if ClassifyTransition(from, to) == TransitionTransfer {
		return dErrors.New(dErrors.CodeSoulbound, "credentials are soulbound and cannot be transferred")
	}
	return nil
}

// GuardApproval rejects approval-granting operations outright. An approval
// is meaningless when transfer can never execute; failing early gives
// callers an immediate, legible error instead of a silent no-op.
func GuardApproval() error {
	return dErrors.New(dErrors.CodeSoulbound, "credentials are soulbound; approvals are not supported")
}
