package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type counts struct {
	ok, failed int
}

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory[counts]()

	_, ok := m.Get("latest")
	assert.False(t, ok)

	m.Set("latest", counts{3, 0}, time.Hour)
	got, ok := m.Get("latest")
	assert.True(t, ok)
	assert.Equal(t, counts{3, 0}, got)

	m.Set("latest", counts{2, 1}, time.Hour)
	got, _ = m.Get("latest")
	assert.Equal(t, counts{2, 1}, got, "last write wins")
}

func TestMemory_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory[counts]().WithClock(func() time.Time { return now })

	m.Set("latest", counts{1, 1}, time.Hour)

	now = now.Add(59 * time.Minute)
	_, ok := m.Get("latest")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = m.Get("latest")
	assert.False(t, ok, "entry expires after its ttl")
}

func TestMemory_NonPositiveTTLDeletes(t *testing.T) {
	m := NewMemory[string]()
	m.Set("k", "v", time.Minute)
	m.Set("k", "v", 0)
	_, ok := m.Get("k")
	assert.False(t, ok)
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Set("k", i, time.Minute)
			m.Get("k")
		}(i)
	}
	wg.Wait()
	_, ok := m.Get("k")
	assert.True(t, ok)
}
