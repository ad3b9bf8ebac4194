package tagcache

import (
	"context"
	"time"
)

// Cross-process flight coordination. The in-process singleflight group
// already collapsed local callers; at most one goroutine per process runs
// this code for a given key. The backend lock then serializes winners across
// processes: the holder computes and stores, everyone else polls for the
// winner's write.
//
// The lock always carries a TTL so a crashed winner cannot leave the key
// locked forever; explicit release on completion is the fast path, expiry is
// the safety net.

// flightAcquire tries to become the cross-process winner for key.
// Returns (v, false, true) when another process's value landed while
// waiting, (nil, true, false) when the lock is held and the caller must
// release it, and (nil, false, false) when coordination failed and the
// caller should compute locally (duplicate work beats unavailability).
func (cc *cache[V]) flightAcquire(ctx context.Context, key string) (any, bool, bool) {
	lk := cc.lockKey(key)
	acquired, err := cc.locker.AcquireLock(ctx, lk, cc.lockTTL)
	if err != nil {
		cc.log.Warn("flight lock acquire failed; computing locally", Fields{"key": key, "err": err})
		cc.hooks.FlightFallback(key)
		return nil, false, false
	}
	if acquired {
		return nil, true, false
	}

	// Another process holds the lock. Poll for its write.
	deadline := time.NewTimer(cc.lockWait)
	defer deadline.Stop()
	tick := time.NewTicker(cc.pollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			cc.hooks.FlightFallback(key)
			return nil, false, false
		case <-deadline.C:
			// Winner never wrote (slow compute, failure, or crash pending
			// lock expiry). Compute locally rather than blocking further.
			cc.hooks.FlightFallback(key)
			return nil, false, false
		case <-tick.C:
			if v, ok := cc.lookupDegraded(ctx, key); ok {
				cc.stats.hits.Add(1)
				return v, false, true
			}
		}
	}
}

// flightRelease drops the cross-process lock. Runs under defer on the winner
// path, so the lock is released on compute panic as well; a fresh context is
// used because the caller's may already be cancelled.
func (cc *cache[V]) flightRelease(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), cc.lockTTL)
	defer cancel()
	if err := cc.locker.ReleaseLock(ctx, cc.lockKey(key)); err != nil {
		// Bounded lock TTL cleans up after us.
		cc.log.Warn("flight lock release failed", Fields{"key": key, "err": err})
	}
}
