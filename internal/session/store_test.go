package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get(42)

	assert.False(t, ok)
}

func TestPutReplacesPrevious(t *testing.T) {
	store := NewMemoryStore()

	store.Put(42, "first recording")
	store.Put(42, "second recording")

	got, ok := store.Get(42)
	require.True(t, ok)
	assert.Equal(t, "second recording", got)
	assert.Equal(t, 1, store.Len())
}

func TestUsersAreIsolated(t *testing.T) {
	store := NewMemoryStore()

	store.Put(1, "alpha")
	store.Put(2, "beta")

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "alpha", got)
	got, ok = store.Get(2)
	require.True(t, ok)
	assert.Equal(t, "beta", got)
}

func TestConcurrentPutLastValueWins(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Put(7, fmt.Sprintf("transcript %d", i))
		}(i)
	}
	wg.Wait()

	got, ok := store.Get(7)
	require.True(t, ok)
	assert.Contains(t, got, "transcript ")
	assert.Equal(t, 1, store.Len())
}
