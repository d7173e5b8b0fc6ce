package events

import (
	"context"
	"sync"

	"soulbound/pkg/domain"
)

// InMemoryStore is the authoritative append-only event log for the demo
// environment and for tests. The list only grows; events are never rewritten.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns all events in append order.
func (s *InMemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}

// ListByCredential returns the events referencing a credential, in append order.
func (s *InMemoryStore) ListByCredential(_ context.Context, id domain.CredentialID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Credential != nil && *e.Credential == id {
			out = append(out, e)
		}
	}
	return out, nil
}
