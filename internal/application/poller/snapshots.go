package poller

import (
	"strings"
	"sync"
	"time"
)

// Snapshot is the last value a feed produced.
type Snapshot[T any] struct {
	Value     T
	FetchedAt time.Time
}

// Snapshots caches the latest poll result per key.
type Snapshots[T any] struct {
	mu    sync.RWMutex
	items map[string]Snapshot[T]
}

func NewSnapshots[T any]() *Snapshots[T] {
	return &Snapshots[T]{items: make(map[string]Snapshot[T])}
}

// Put stores v as the latest value for key.
func (s *Snapshots[T]) Put(key string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = Snapshot[T]{Value: v, FetchedAt: time.Now()}
}

// Get returns the latest value for key.
func (s *Snapshots[T]) Get(key string) (Snapshot[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.items[key]
	return snap, ok
}

func (s *Snapshots[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// DeletePrefix drops every key that starts with prefix.
func (s *Snapshots[T]) DeletePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			delete(s.items, k)
		}
	}
}
