package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/pkg/domain"
)

type capturingSink struct {
	published []Event
	err       error
}

func (s *capturingSink) Publish(_ context.Context, event Event) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, event)
	return nil
}

func TestEmitFillsIDAndTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)

	require.NoError(t, p.Emit(context.Background(), Event{Kind: KindCredentialIssued}))

	logged, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.NotEmpty(t, logged[0].ID)
	assert.False(t, logged[0].Timestamp.IsZero())
}

func TestEmitPreservesProvidedTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)

	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, p.Emit(context.Background(), Event{Kind: KindInstitutionAuthorized, Timestamp: stamp}))

	logged, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, stamp, logged[0].Timestamp)
}

func TestEmitFansOutToSinks(t *testing.T) {
	store := NewInMemoryStore()
	sink := &capturingSink{}
	p := NewPublisher(store, WithSink(sink))

	require.NoError(t, p.Emit(context.Background(), Event{Kind: KindAccessGranted}))

	require.Len(t, sink.published, 1)
	assert.Equal(t, KindAccessGranted, sink.published[0].Kind)
}

func TestSinkFailureDoesNotFailEmit(t *testing.T) {
	store := NewInMemoryStore()
	sink := &capturingSink{err: errors.New("broker down")}
	p := NewPublisher(store, WithSink(sink))

	require.NoError(t, p.Emit(context.Background(), Event{Kind: KindCredentialRevoked}))

	// The authoritative log still records the event.
	logged, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, logged, 1)
}

func TestAsyncPublisherDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(16))

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Emit(context.Background(), Event{Kind: KindCredentialIssued}))
	}
	p.Close()

	logged, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, logged, 5)
}

func TestListByCredential(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)
	ctx := context.Background()

	one := domain.CredentialID(1)
	two := domain.CredentialID(2)
	require.NoError(t, p.Emit(ctx, Event{Kind: KindCredentialIssued, Credential: &one}))
	require.NoError(t, p.Emit(ctx, Event{Kind: KindCredentialIssued, Credential: &two}))
	require.NoError(t, p.Emit(ctx, Event{Kind: KindCredentialRevoked, Credential: &one}))
	require.NoError(t, p.Emit(ctx, Event{Kind: KindInstitutionAuthorized}))

	got, err := store.ListByCredential(ctx, one)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KindCredentialIssued, got[0].Kind)
	assert.Equal(t, KindCredentialRevoked, got[1].Kind)
}
