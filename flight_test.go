package tagcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/tagcache/backend"
	"github.com/unkn0wn-root/tagcache/backend/memory"
	c "github.com/unkn0wn-root/tagcache/codec"
)

type flightHooks struct {
	NopHooks
	mu        sync.Mutex
	fallbacks []string
}

func (h *flightHooks) FlightFallback(key string) {
	h.mu.Lock()
	h.fallbacks = append(h.fallbacks, key)
	h.mu.Unlock()
}

func (h *flightHooks) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.fallbacks)
}

// Two cache instances over one shared store stand in for two processes.
func newFlightPair(t *testing.T, be backend.Backend, hooks Hooks) (Cache[user], Cache[user]) {
	t.Helper()
	mk := func() Cache[user] {
		cc, err := New[user](Options[user]{
			Namespace:         "user",
			Backend:           be,
			Codec:             c.JSON[user]{},
			Hooks:             hooks,
			DistributedFlight: true,
			LockWait:          2 * time.Second,
			PollInterval:      5 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		t.Cleanup(func() { _ = cc.Close(context.Background()) })
		return cc
	}
	return mk(), mk()
}

// TestDistributedFlightPollerObservesWinner: the process that loses the lock
// polls until the winner's write lands instead of computing.
func TestDistributedFlightPollerObservesWinner(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	a, b := newFlightPair(t, be, nil)

	gate := make(chan struct{})
	var winnerCalls, loserCalls atomic.Int32

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = a.GetOrCompute(ctx, Key("u:1"), NoTags, time.Minute, func(context.Context) (user, error) {
			winnerCalls.Add(1)
			<-gate
			return user{ID: "1", Name: "Ada"}, nil
		})
	}()

	// Let a take the cross-process lock before b arrives.
	time.Sleep(30 * time.Millisecond)

	bDone := make(chan struct{})
	var got user
	var gotErr error
	go func() {
		defer close(bDone)
		got, gotErr = b.GetOrCompute(ctx, Key("u:1"), NoTags, time.Minute, func(context.Context) (user, error) {
			loserCalls.Add(1)
			return user{ID: "1", Name: "duplicate"}, nil
		})
	}()

	time.Sleep(30 * time.Millisecond) // b should now be polling
	close(gate)
	<-done
	<-bDone

	if winnerCalls.Load() != 1 {
		t.Fatalf("winner compute ran %d times, want 1", winnerCalls.Load())
	}
	if loserCalls.Load() != 0 {
		t.Fatalf("loser must observe the winner's write, not compute; ran %d times", loserCalls.Load())
	}
	if gotErr != nil || got.Name != "Ada" {
		t.Fatalf("loser result: v=%v err=%v", got, gotErr)
	}
}

// TestDistributedFlightLockWaitFallback: when the lock holder never writes,
// the waiter gives up after LockWait and computes locally.
func TestDistributedFlightLockWaitFallback(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	hooks := &flightHooks{}

	cc, err := New[user](Options[user]{
		Namespace:         "user",
		Backend:           be,
		Codec:             c.JSON[user]{},
		Hooks:             hooks,
		DistributedFlight: true,
		LockWait:          40 * time.Millisecond,
		PollInterval:      5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close(context.Background()) })
	impl := mustImpl(t, cc)

	// A "crashed" holder: lock taken, value never written.
	if ok, err := be.AcquireLock(ctx, impl.lockKey("stuck"), time.Minute); err != nil || !ok {
		t.Fatalf("seed lock: ok=%v err=%v", ok, err)
	}

	var calls atomic.Int32
	v, err := cc.GetOrCompute(ctx, Key("stuck"), NoTags, time.Minute, fixedCompute(&calls, user{ID: "s", Name: "local"}))
	if err != nil || v.Name != "local" {
		t.Fatalf("fallback compute: v=%v err=%v", v, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a local compute after lock wait expired, ran %d", calls.Load())
	}
	if hooks.count() == 0 {
		t.Fatalf("expected FlightFallback hook")
	}
}

// TestComputePanicReleasesFlightLock: a panicking winner must not leave the
// key locked. The panic reaches the caller, the cross-process lock is
// released during unwind, and the in-flight record is dropped so a follow-up
// call computes normally.
func TestComputePanicReleasesFlightLock(t *testing.T) {
	ctx := context.Background()
	be := memory.New()

	cc, err := New[user](Options[user]{
		Namespace:         "user",
		Backend:           be,
		Codec:             c.JSON[user]{},
		DistributedFlight: true,
		PollInterval:      5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close(context.Background()) })
	impl := mustImpl(t, cc)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("compute panic must reach the caller")
			}
		}()
		_, _ = cc.GetOrCompute(ctx, Key("p"), NoTags, time.Minute, func(context.Context) (user, error) {
			panic("compute exploded")
		})
	}()

	ok, err := be.AcquireLock(ctx, impl.lockKey("p"), time.Minute)
	if err != nil || !ok {
		t.Fatalf("lock must be immediately re-acquirable after a panic: ok=%v err=%v", ok, err)
	}
	if err := be.ReleaseLock(ctx, impl.lockKey("p")); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}

	var calls atomic.Int32
	v, err := cc.GetOrCompute(ctx, Key("p"), NoTags, time.Minute, fixedCompute(&calls, user{ID: "p", Name: "ok"}))
	if err != nil || v.Name != "ok" {
		t.Fatalf("follow-up call after panic: v=%v err=%v", v, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("follow-up call must compute, ran %d times", calls.Load())
	}
	if _, ok, _ := cc.Get(ctx, "p"); !ok {
		t.Fatalf("follow-up result should be cached")
	}
}

type plainBackend struct {
	backend.Backend
}

func TestDistributedFlightRequiresLocker(t *testing.T) {
	_, err := New[user](Options[user]{
		Namespace:         "user",
		Backend:           plainBackend{Backend: memory.New()},
		Codec:             c.JSON[user]{},
		DistributedFlight: true,
	})
	if err == nil {
		t.Fatalf("DistributedFlight without a Locker backend must be rejected")
	}
}
