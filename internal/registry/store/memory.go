package store

import (
	"context"
	"sort"
	"sync"

	"soulbound/internal/registry/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
)

// ErrNotFound is returned when an institution has no allowlist entry.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores the institution allowlist in memory.
type InMemory struct {
	mu           sync.RWMutex
	institutions map[domain.Identity]*models.Institution
}

// NewInMemory creates an in-memory allowlist store.
func NewInMemory() *InMemory {
	return &InMemory{
		institutions: make(map[domain.Identity]*models.Institution),
	}
}

// Upsert creates or replaces the allowlist entry.
func (s *InMemory) Upsert(_ context.Context, institution *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *institution
	s.institutions[institution.Identity] = &cp
	return nil
}

// Find retrieves an allowlist entry by identity.
func (s *InMemory) Find(_ context.Context, identity domain.Identity) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.institutions[identity]; ok {
		cp := *record
		return &cp, nil
	}
	return nil, ErrNotFound
}

// List returns all entries ordered by identity for stable output.
func (s *InMemory) List(_ context.Context) ([]*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Institution, 0, len(s.institutions))
	for _, record := range s.institutions {
		cp := *record
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out, nil
}
