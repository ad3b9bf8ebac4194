package tagcache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/tagcache/backend"
	c "github.com/unkn0wn-root/tagcache/codec"
	"github.com/unkn0wn-root/tagcache/internal/wire"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 5 * time.Second
	defaultPoll     = 50 * time.Millisecond
)

type cache[V any] struct {
	ns      string
	be      backend.Backend
	codec   c.Codec[V]
	log     Logger
	hooks   Hooks
	enabled bool

	defaultTTL time.Duration

	flight singleflight.Group

	distFlight   bool
	locker       backend.Locker
	lockTTL      time.Duration
	lockWait     time.Duration
	pollInterval time.Duration

	stats statCounters
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("tagcache: backend is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("tagcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("tagcache: namespace is required")
	}

	cc := &cache[V]{
		ns:      opts.Namespace,
		be:      opts.Backend,
		codec:   opts.Codec,
		enabled: !opts.Disabled,
	}

	// defaults
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.defaultTTL = opts.DefaultTTL
	cc.lockTTL = coalesce[time.Duration](opts.LockTTL, defaultLockTTL)
	cc.lockWait = coalesce[time.Duration](opts.LockWait, defaultLockWait)
	cc.pollInterval = coalesce[time.Duration](opts.PollInterval, defaultPoll)

	if opts.DistributedFlight {
		locker, ok := opts.Backend.(backend.Locker)
		if !ok {
			return nil, fmt.Errorf("tagcache: DistributedFlight requires a backend implementing backend.Locker")
		}
		cc.distFlight = true
		cc.locker = locker
	}

	return cc, nil
}

func (cc *cache[V]) Enabled() bool { return cc.enabled }

func (cc *cache[V]) Close(ctx context.Context) error {
	return cc.be.Close(ctx)
}

func (cc *cache[V]) Stats() Stats { return cc.stats.snapshot() }

func (cc *cache[V]) GetOrCompute(ctx context.Context, key KeyRef, tags TagsRef, ttl time.Duration, compute Compute[V]) (V, error) {
	var zero V
	k := key.resolve()
	if k == "" {
		return zero, ErrKeyEmpty
	}
	ttl, err := cc.resolveTTL(ttl)
	if err != nil {
		return zero, err
	}
	if !cc.enabled {
		return compute(ctx)
	}

	if v, ok := cc.lookupDegraded(ctx, k); ok {
		cc.stats.hits.Add(1)
		return v, nil
	}
	cc.stats.misses.Add(1)

	out, err, shared := cc.flight.Do(k, func() (any, error) {
		// A waiter queued behind a winner that already stored may land here
		// after the record is gone; re-check before computing.
		if v, ok := cc.lookupDegraded(ctx, k); ok {
			return v, nil
		}
		return cc.computeAndStore(ctx, k, tags.resolve(), ttl, compute)
	})
	if shared {
		cc.stats.sharedHits.Add(1)
	}
	if out == nil {
		return zero, err
	}
	return out.(V), err
}

// computeAndStore is the winner's path: run the callback, frame and write the
// value, register tags. The computed value is returned even when storing
// fails, paired with a *StoreError so the caller can proceed uncached.
func (cc *cache[V]) computeAndStore(ctx context.Context, k string, tags []string, ttl time.Duration, compute Compute[V]) (any, error) {
	if cc.distFlight {
		if v, ok, done := cc.flightAcquire(ctx, k); done {
			return v, nil
		} else if ok {
			defer cc.flightRelease(k)
		}
	}

	cc.stats.computes.Add(1)
	v, err := compute(ctx)
	if err != nil {
		// Propagated verbatim to every waiter; nothing is cached.
		return nil, err
	}
	if err := cc.store(ctx, k, v, ttl, tags); err != nil {
		cc.stats.errors.Add(1)
		cc.hooks.StoreFailed(cc.valueKey(k), err)
		return v, err
	}
	return v, nil
}

func (cc *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !cc.enabled || key == "" {
		return zero, false, nil
	}
	v, ok, err := cc.lookup(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if ok {
		cc.stats.hits.Add(1)
		return v, true, nil
	}
	cc.stats.misses.Add(1)
	return zero, false, nil
}

func (cc *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration, tags ...string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	ttl, err := cc.resolveTTL(ttl)
	if err != nil {
		return err
	}
	if !cc.enabled {
		return nil
	}
	if err := cc.store(ctx, key, value, ttl, tags); err != nil {
		cc.stats.errors.Add(1)
		cc.hooks.StoreFailed(cc.valueKey(key), err)
		return err
	}
	return nil
}

func (cc *cache[V]) Contains(ctx context.Context, key string) (bool, error) {
	if !cc.enabled || key == "" {
		return false, nil
	}
	sk := cc.valueKey(key)
	raw, ok, err := cc.be.Get(ctx, sk)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if _, err := wire.DecodeEntry(raw); err != nil {
		_ = cc.be.Del(ctx, sk)
		cc.hooks.SelfHeal(sk, "corrupt")
		return false, nil
	}
	return true, nil
}

func (cc *cache[V]) InvalidateKey(ctx context.Context, key string) error {
	if !cc.enabled {
		return nil
	}
	if key == "" {
		return ErrKeyEmpty
	}
	if err := cc.be.Del(ctx, cc.valueKey(key)); err != nil {
		cc.stats.errors.Add(1)
		return err
	}
	cc.stats.invalidations.Add(1)
	cc.log.Debug("invalidated key", Fields{"key": key})
	return nil
}

func (cc *cache[V]) Clear(ctx context.Context) error {
	if !cc.enabled {
		return nil
	}
	if err := cc.be.Clear(ctx); err != nil {
		cc.stats.errors.Add(1)
		return err
	}
	cc.stats.invalidations.Add(1)
	cc.log.Debug("cleared namespace", Fields{"ns": cc.ns})
	return nil
}

// lookup reads and decodes an entry. Backend failures are returned; malformed
// entries degrade to a miss and are deleted so the next write starts clean.
func (cc *cache[V]) lookup(ctx context.Context, key string) (V, bool, error) {
	var zero V
	sk := cc.valueKey(key)
	raw, ok, err := cc.be.Get(ctx, sk)
	if err != nil {
		cc.stats.errors.Add(1)
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	payload, err := wire.DecodeEntry(raw)
	if err != nil {
		_ = cc.be.Del(ctx, sk) // self-heal corrupt
		cc.hooks.SelfHeal(sk, "corrupt")
		return zero, false, nil
	}
	v, err := cc.codec.Decode(payload)
	if err != nil {
		_ = cc.be.Del(ctx, sk) // self-heal undecodable
		cc.hooks.SelfHeal(sk, "value_decode")
		return zero, false, nil
	}
	return v, true, nil
}

// lookupDegraded is the compute-path read: a backend failure degrades to a
// miss so an outage means "always recompute" instead of failing reads.
func (cc *cache[V]) lookupDegraded(ctx context.Context, key string) (V, bool) {
	v, ok, err := cc.lookup(ctx, key)
	if err != nil {
		cc.hooks.ReadDegraded(cc.valueKey(key), err)
		cc.log.Warn("backend get failed; treating as miss", Fields{"key": key, "err": err})
		var zero V
		return zero, false
	}
	return v, ok
}

// store writes the framed value first, then registers tag membership, so a
// tag set never references a key that was never written. If registration
// fails the value is removed again: an entry must not outlive the promise
// that it is reachable from its tags.
func (cc *cache[V]) store(ctx context.Context, key string, value V, ttl time.Duration, tags []string) error {
	payload, err := cc.codec.Encode(value)
	if err != nil {
		return err
	}
	sk := cc.valueKey(key)
	if err := cc.be.Set(ctx, sk, wire.EncodeEntry(payload), ttl); err != nil {
		return &StoreError{Key: key, PutErr: err}
	}
	if err := cc.registerTags(ctx, sk, tags); err != nil {
		_ = cc.be.Del(ctx, sk)
		return &StoreError{Key: key, TagErr: err}
	}
	return nil
}

func (cc *cache[V]) resolveTTL(ttl time.Duration) (time.Duration, error) {
	if ttl > 0 {
		return ttl, nil
	}
	if ttl == 0 && cc.defaultTTL > 0 {
		return cc.defaultTTL, nil
	}
	return 0, ErrTTLNonPositive
}

func (cc *cache[V]) valueKey(userKey string) string {
	// isolate by namespace
	return "v:" + cc.ns + ":" + userKey
}

func (cc *cache[V]) tagKey(tag string) string {
	return "tag:" + cc.ns + ":" + tag
}

func (cc *cache[V]) lockKey(userKey string) string {
	return "lock:" + cc.ns + ":" + userKey
}
