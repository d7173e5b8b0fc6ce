package store

import (
	"context"
	"sync"

	"soulbound/internal/access/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
)

// InMemory is an in-memory grant store for tests and local development. It
// keeps the denormalized viewer list per credential in first-grant order;
// revoked grants stay in both structures.
type InMemory struct {
	mu     sync.RWMutex
	grants map[domain.CredentialID]map[domain.Identity]*models.Grant
	order  map[domain.CredentialID][]domain.Identity
}

// NewInMemory creates an empty in-memory grant store.
func NewInMemory() *InMemory {
	return &InMemory{
		grants: make(map[domain.CredentialID]map[domain.Identity]*models.Grant),
		order:  make(map[domain.CredentialID][]domain.Identity),
	}
}

// Upsert creates or replaces the grant, appending the viewer to the access
// list on first sight.
func (s *InMemory) Upsert(ctx context.Context, grant *models.Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byViewer, ok := s.grants[grant.CredentialID]
	if !ok {
		byViewer = make(map[domain.Identity]*models.Grant)
		s.grants[grant.CredentialID] = byViewer
	}
	if _, seen := byViewer[grant.Viewer]; !seen {
		s.order[grant.CredentialID] = append(s.order[grant.CredentialID], grant.Viewer)
	}

	clone := *grant
	byViewer[grant.Viewer] = &clone
	return nil
}

// Find returns a copy of the grant for the pair.
func (s *InMemory) Find(ctx context.Context, id domain.CredentialID, viewer domain.Identity) (*models.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[id][viewer]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *grant
	return &clone, nil
}

// DeleteByCredential removes all grants and the viewer list for the
// credential.
func (s *InMemory) DeleteByCredential(ctx context.Context, id domain.CredentialID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.grants, id)
	delete(s.order, id)
	return nil
}

// ListViewers returns every viewer ever granted access, in first-grant
// order.
func (s *InMemory) ListViewers(ctx context.Context, id domain.CredentialID) ([]domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	viewers := s.order[id]
	out := make([]domain.Identity, len(viewers))
	copy(out, viewers)
	return out, nil
}
