// Package asynchook decouples hook execution from the cache hot path: events
// are queued to a bounded channel and replayed on worker goroutines; when the
// queue is full, events are dropped rather than blocking a cache call.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := tagcache.New[User](tagcache.Options[User]{
//	    Namespace: "user",
//	    Backend:   be,
//	    Codec:     codec.JSON[User]{},
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/tagcache"
)

type Hooks struct {
	inner tagcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ tagcache.Hooks = (*Hooks)(nil)

func New(inner tagcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHeal(k, r string)             { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) ReadDegraded(k string, err error) { h.try(func() { h.inner.ReadDegraded(k, err) }) }
func (h *Hooks) StoreFailed(k string, err error)  { h.try(func() { h.inner.StoreFailed(k, err) }) }
func (h *Hooks) TagSweep(tag string, n int)       { h.try(func() { h.inner.TagSweep(tag, n) }) }
func (h *Hooks) FlightFallback(k string)          { h.try(func() { h.inner.FlightFallback(k) }) }
