package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore[string](0)
	defer store.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set("k", "v", time.Minute)
	v, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get("k")
	assert.False(t, ok)

	store.sweep()
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore[int](time.Hour)
	defer store.Close()

	store.Set("a", 1, time.Hour)
	store.Delete("a")
	_, ok := store.Get("a")
	assert.False(t, ok)

	store.Close()
	store.Close()
}
