package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()

	const goroutines = 50
	const increments = 100

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				m.Lock("42")
				counter++
				m.Unlock("42")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter)
}

func TestKeyedMutexIndependentKeysDoNotDeadlock(t *testing.T) {
	m := NewKeyedMutex()

	// Holding one key must not block another key on a different shard.
	m.Lock("0")
	done := make(chan struct{})
	go func() {
		m.Lock("1")
		m.Unlock("1")
		close(done)
	}()
	<-done
	m.Unlock("0")
}

func TestKeyedMutexEmptyKey(t *testing.T) {
	m := NewKeyedMutex()
	m.Lock("")
	m.Unlock("")
}
