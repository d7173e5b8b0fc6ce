// Package sync provides keyed mutual exclusion for serializing operations
// on a single resource, the per-credential discipline that replaces the
// ledger's global transaction ordering.
package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 64

// KeyedMutex serializes operations per key using sharded mutexes. All
// read-then-write sequences touching the same credential id acquire the same
// shard, so conflicting mutations are applied one at a time and the loser of
// a race observes the already-updated state.
type KeyedMutex struct {
	shards [shardCount]sync.Mutex
}

// NewKeyedMutex creates a KeyedMutex with a fixed shard count.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the shard for the given key.
func (m *KeyedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the shard for the given key.
func (m *KeyedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

func (m *KeyedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}
