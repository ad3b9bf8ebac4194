// Package ristretto adapts dgraph-io/ristretto to the tagcache backend
// contract. Entry cost is the payload length, so MaxCost is roughly a byte
// budget. Ristretto may refuse admission under pressure; a refused write is
// simply a future miss, never an error. Tag sets live in an adapter-side
// locked map (ristretto values are eviction-prone, set metadata must not be).
package ristretto

import (
	"context"
	"errors"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/tagcache/backend"
)

type Store struct {
	c *rc.Cache

	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

var _ backend.Backend = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto backend: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c, sets: make(map[string]map[string]struct{})}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		s.c.Set(key, value, int64(len(value)))
		return nil
	}
	s.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.c.Del(key)
	return nil
}

func (s *Store) DelMany(_ context.Context, keys []string) error {
	for _, k := range keys {
		s.c.Del(k)
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.sets = make(map[string]map[string]struct{})
	s.mu.Unlock()
	s.c.Clear()
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

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's counters when Config.Metrics was set. Not part
// of the backend contract.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
