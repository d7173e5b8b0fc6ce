// Package ports defines the interfaces the credential module needs from
// other modules. Adapters in the composition root satisfy them, keeping the
// module free of cross-domain imports.
package ports

import (
	"context"

	"soulbound/pkg/domain"
)

// RegistryReader exposes the institution registry to the credential module.
// Issuance authority and derived validity both depend on the issuer's
// current authorization, evaluated live at read time.
type RegistryReader interface {
	IsAuthorized(ctx context.Context, institution domain.Identity) (bool, error)
	IsOwner(caller domain.Identity) bool
}
