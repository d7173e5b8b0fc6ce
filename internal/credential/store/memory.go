package store

import (
	"context"
	"sync"

	"soulbound/internal/credential/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
)

// InMemory is an in-memory credential store for tests and local development.
// Identifiers are assigned inside Create under the store lock, so they are
// sequential with no gaps: a failed issuance never consumes an id because it
// never reaches the store.
type InMemory struct {
	mu          sync.RWMutex
	credentials map[domain.CredentialID]*models.Credential
	nextID      uint64
}

// NewInMemory creates an empty in-memory credential store.
func NewInMemory() *InMemory {
	return &InMemory{
		credentials: make(map[domain.CredentialID]*models.Credential),
	}
}

// Create assigns the next sequential identifier and persists a copy.
func (s *InMemory) Create(ctx context.Context, credential *models.Credential) (domain.CredentialID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ids start at zero and advance only on successful insert.
	id := domain.CredentialID(s.nextID)
	s.nextID++

	clone := cloneCredential(credential)
	clone.ID = id
	s.credentials[id] = clone
	return id, nil
}

// FindByID returns a copy of the credential.
func (s *InMemory) FindByID(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.credentials[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneCredential(cred), nil
}

// Update replaces the stored credential. The credential must already exist.
func (s *InMemory) Update(ctx context.Context, credential *models.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credentials[credential.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.credentials[credential.ID] = cloneCredential(credential)
	return nil
}

// Delete removes the credential. When the credential carries the most
// recently assigned identifier the counter rolls back, so an issuance that
// fails after Create leaves neither a record nor a consumed id.
func (s *InMemory) Delete(ctx context.Context, id domain.CredentialID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credentials[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.credentials, id)
	if uint64(id)+1 == s.nextID {
		s.nextID--
	}
	return nil
}

// Count returns the number of credentials ever issued.
func (s *InMemory) Count(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}

func cloneCredential(c *models.Credential) *models.Credential {
	clone := *c
	if c.PrivateData != nil {
		clone.PrivateData = &models.PrivateData{
			StudentID:    append([]byte(nil), c.PrivateData.StudentID...),
			Grade:        append([]byte(nil), c.PrivateData.Grade...),
			PersonalData: append([]byte(nil), c.PrivateData.PersonalData...),
		}
	}
	return &clone
}
