// Package memory provides the in-process tagcache backend: a mutex-guarded
// map with lazy expiry checked on Get, native set support for the tag index,
// and lock-with-expiry support so single-process deployments can exercise the
// same code paths as distributed ones.
//
// The store is deliberately unbounded; there is no eviction policy beyond
// TTL. Put a capacity-managed store (ristretto, bigcache) in front of real
// memory pressure instead.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/tagcache/backend"
)

type entry struct {
	value   []byte
	expires time.Time // zero => no expiry
}

// Store implements backend.Backend and backend.Locker.
type Store struct {
	mu    sync.Mutex
	items map[string]entry
	sets  map[string]map[string]struct{}
	locks map[string]time.Time // lock name -> expiry deadline
}

var (
	_ backend.Backend = (*Store)(nil)
	_ backend.Locker  = (*Store)(nil)
)

func New() *Store {
	return &Store{
		items: make(map[string]entry),
		sets:  make(map[string]map[string]struct{}),
		locks: make(map[string]time.Time),
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !time.Now().Before(e.expires) {
		delete(s.items, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = entry{value: value, expires: exp}
	s.mu.Unlock()
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) DelMany(_ context.Context, keys []string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.items, k)
	}
	s.mu.Unlock()
	return nil
}

// Clear wipes values, sets and locks alike; tag metadata lives in the same
// store as the values it indexes.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.items = make(map[string]entry)
	s.sets = make(map[string]map[string]struct{})
	s.locks = make(map[string]time.Time)
	s.mu.Unlock()
	return nil
}

func (s *Store) SetAdd(_ context.Context, setKey, member string) error {
	s.mu.Lock()
	set, ok := s.sets[setKey]
	if !ok {
		set = make(map[string]struct{})
		s.sets[setKey] = set
	}
	set[member] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *Store) SetMembers(_ context.Context, setKey string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[setKey]
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) SetDrop(_ context.Context, setKey string) error {
	s.mu.Lock()
	delete(s.sets, setKey)
	s.mu.Unlock()
	return nil
}

func (s *Store) AcquireLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if deadline, held := s.locks[key]; held && now.Before(deadline) {
		return false, nil
	}
	s.locks[key] = now.Add(ttl)
	return true, nil
}

func (s *Store) ReleaseLock(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.locks, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Close(_ context.Context) error { return nil }

// Len reports the number of live (possibly expired-but-unswept) value
// entries. Intended for tests and diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
