// Package backend defines the storage abstraction driven by tagcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a store
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Set.
//
// Important: the keyspaces "v:<ns>:", "tag:<ns>:" and "lock:<ns>:" are owned
// by tagcache. External code MUST NOT write values under these prefixes.
// Foreign writes may be treated as corruption by strict entry-frame
// validation and deleted on read.
package backend

import (
	"context"
	"time"
)

// Backend is a byte store with per-key TTLs plus the set primitives the tag
// index is built on. Must be safe for concurrent use.
//
// Set-membership keys behave like ordinary keys for DelMany/Clear purposes:
// tag metadata lives in the same store as the values it indexes, so a Clear
// wipes both.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss or
	// natural expiry. An expired key is a miss, never an error. IO/remote
	// failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. ttl <= 0 means "no expiry" at this level;
	// TTL validation policy is the engine's job, not the adapter's.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// DelMany removes all given keys. Idempotent per key.
	DelMany(ctx context.Context, keys []string) error

	// Clear removes every key this backend instance owns, set keys included.
	Clear(ctx context.Context) error

	// SetAdd adds member to the set stored at setKey, creating it if absent.
	SetAdd(ctx context.Context, setKey, member string) error

	// SetMembers returns the members of the set at setKey; an absent set
	// yields an empty slice, not an error. Order is unspecified.
	SetMembers(ctx context.Context, setKey string) ([]string, error)

	// SetDrop removes the whole set at setKey. Idempotent.
	SetDrop(ctx context.Context, setKey string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Locker is an optional capability used for cross-process single-flight.
// Backends shared between processes (e.g. Redis) should implement it;
// purely in-process stores may skip it.
type Locker interface {
	// AcquireLock attempts to take the lock named key, expiring after ttl
	// even if never released. Returns false without error when someone else
	// holds it.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// ReleaseLock frees the lock. Releasing an expired or absent lock is a
	// no-op.
	ReleaseLock(ctx context.Context, key string) error
}
