package tagcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/tagcache/backend"
	c "github.com/unkn0wn-root/tagcache/codec"
)

// Compute is the unit of work guarded by the cache. It runs at most once per
// key per flight; its failure is propagated verbatim to every caller sharing
// the flight and nothing is cached.
type Compute[V any] func(ctx context.Context) (V, error)

// Cache is the high-level, backend-agnostic function-result cache with
// tag-based invalidation and single-flight compute coordination.
// V is the caller's value type; serialization is handled by a pluggable
// Codec[V].
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// GetOrCompute returns the cached value for key, or runs compute once,
	// stores the result for ttl and registers it under tags. Concurrent
	// callers for the same key share one computation and its outcome.
	// ttl <= 0 is rejected unless Options.DefaultTTL is set, in which case
	// ttl == 0 resolves to the default.
	GetOrCompute(ctx context.Context, key KeyRef, tags TagsRef, ttl time.Duration, compute Compute[V]) (V, error)

	// Get is a plain lookup; no compute, no flight. Backend failures are
	// returned, not degraded to a miss; only GetOrCompute degrades.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Set writes a value directly, bypassing the compute path.
	Set(ctx context.Context, key string, value V, ttl time.Duration, tags ...string) error

	// Contains reports whether a live, well-formed entry exists for key.
	Contains(ctx context.Context, key string) (bool, error)

	// Invalidate deletes every entry registered under any of the given tags,
	// then drops the tags' membership sets. Idempotent.
	Invalidate(ctx context.Context, tags ...string) error

	// InvalidateKey deletes one entry directly. Tag membership is not
	// pruned; a later tag sweep deleting the already-gone key is harmless.
	InvalidateKey(ctx context.Context, key string) error

	// Clear wipes the backend, tag sets included.
	Clear(ctx context.Context) error

	// Stats returns a snapshot of the engine counters.
	Stats() Stats
}

// Options tune the generic cache. Only Namespace, Backend and Codec are
// required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "user", "report"
	Backend   backend.Backend
	Codec     c.Codec[V]

	Logger     Logger        // if nil, NopLogger is used
	Hooks      Hooks         // if nil, NopHooks is used
	DefaultTTL time.Duration // applied when GetOrCompute/Set get ttl == 0; 0 => non-positive TTLs are rejected
	Disabled   bool          // passthrough mode: computes run, nothing is stored

	// DistributedFlight serializes computation across processes via a
	// lock-with-expiry on the Backend. Requires the Backend to implement
	// backend.Locker.
	DistributedFlight bool
	LockTTL           time.Duration // safety-net lock expiry; 0 => 10s
	LockWait          time.Duration // how long losers wait for the winner's write; 0 => 5s
	PollInterval      time.Duration // loser poll cadence; 0 => 50ms
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
