// Package bigcache adapts allegro/bigcache to the tagcache backend contract.
//
// BigCache has no per-entry TTL; entries age out with the global LifeWindow,
// so choose a LifeWindow at least as long as the largest TTL the engine will
// request. Tag sets live in an adapter-side locked map: the store is
// in-process anyway, so the sets share its lifetime.
package bigcache

import (
	"context"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/tagcache/backend"
)

type Store struct {
	c *bc.BigCache

	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

var _ backend.Backend = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c, sets: make(map[string]map[string]struct{})}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (s *Store) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	// Per-entry TTL unsupported; the global LifeWindow applies.
	return s.c.Set(key, value)
}

func (s *Store) Del(_ context.Context, key string) error {
	if err := s.c.Delete(key); err != nil && err != bc.ErrEntryNotFound {
		return err
	}
	return nil
}

func (s *Store) DelMany(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := s.Del(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.sets = make(map[string]map[string]struct{})
	s.mu.Unlock()
	return s.c.Reset()
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
	return s.c.Close()
}
