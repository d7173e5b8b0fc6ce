package ports

import (
	"context"

	credstore "soulbound/internal/credential/service"
	"soulbound/pkg/domain"
)

// StoreAdapter exposes a credential store as a CredentialReader. Reading the
// store directly, instead of the credential service, keeps construction
// acyclic: the credential service depends on the access service for the
// issuance auto-grant, not the other way around.
type StoreAdapter struct {
	store credstore.Store
}

// NewStoreAdapter wraps a credential store.
func NewStoreAdapter(store credstore.Store) *StoreAdapter {
	return &StoreAdapter{store: store}
}

// Find resolves the credential's access-relevant view.
func (a *StoreAdapter) Find(ctx context.Context, id domain.CredentialID) (*CredentialView, error) {
	cred, err := a.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &CredentialView{
		Holder:         cred.Holder,
		HasPrivateData: cred.HasPrivateData,
	}
	if cred.PrivateData != nil {
		view.StudentID = cred.PrivateData.StudentID
		view.Grade = cred.PrivateData.Grade
		view.PersonalData = cred.PrivateData.PersonalData
	}
	return view, nil
}

var _ CredentialReader = (*StoreAdapter)(nil)
