// Package cache holds short-lived values shared between the background
// pipeline and the HTTP views.
package cache

import (
	"sync"
	"time"
)

// Store is a key-value store whose entries expire.
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is an in-process Store. Writes are last-write-wins.
type Memory[V any] struct {
	items sync.Map // key -> entry[V]
	now   func() time.Time
}

func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{now: time.Now}
}

// WithClock replaces the time source. Tests use it to step past expiry.
func (m *Memory[V]) WithClock(now func() time.Time) *Memory[V] {
	m.now = now
	return m
}

func (m *Memory[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := m.items.Load(key)
	if !ok {
		return zero, false
	}
	e := val.(entry[V])
	if !m.now().Before(e.expiresAt) {
		m.items.CompareAndDelete(key, val)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl deletes the key.
func (m *Memory[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		m.items.Delete(key)
		return
	}
	m.items.Store(key, entry[V]{value: value, expiresAt: m.now().Add(ttl)})
}
