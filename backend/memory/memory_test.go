package memory

import (
	"context"
	"testing"
	"time"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("deleted key still present")
	}
	// deleting again is a no-op
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("repeat Del: %v", err)
	}
}

func TestLazyExpiry(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Set(ctx, "k", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expired key must read as absent")
	}
	if s.Len() != 0 {
		t.Fatalf("expired key should be swept on read, len=%d", s.Len())
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("ttl=0 entries must not expire")
	}
}

func TestDelMany(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{"a", "b", "c"} {
		_ = s.Set(ctx, k, []byte(k), time.Minute)
	}
	if err := s.DelMany(ctx, []string{"a", "c", "missing"}); err != nil {
		t.Fatalf("DelMany: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "b"); !ok {
		t.Fatalf("untouched key dropped")
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d, want 1", s.Len())
	}
}

func TestSets(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.SetAdd(ctx, "tag", "k1"); err != nil {
		t.Fatalf("SetAdd: %v", err)
	}
	_ = s.SetAdd(ctx, "tag", "k2")
	_ = s.SetAdd(ctx, "tag", "k1") // duplicate member

	members, err := s.SetMembers(ctx, "tag")
	if err != nil || len(members) != 2 {
		t.Fatalf("SetMembers: %v err=%v", members, err)
	}
	if err := s.SetDrop(ctx, "tag"); err != nil {
		t.Fatalf("SetDrop: %v", err)
	}
	members, _ = s.SetMembers(ctx, "tag")
	if len(members) != 0 {
		t.Fatalf("dropped set still has members: %v", members)
	}
	// dropping a missing set is a no-op
	if err := s.SetDrop(ctx, "never"); err != nil {
		t.Fatalf("SetDrop missing: %v", err)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Set(ctx, "k", []byte("v"), time.Minute)
	_ = s.SetAdd(ctx, "tag", "k")
	if ok, _ := s.AcquireLock(ctx, "l", time.Minute); !ok {
		t.Fatalf("AcquireLock")
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("values survived Clear")
	}
	if members, _ := s.SetMembers(ctx, "tag"); len(members) != 0 {
		t.Fatalf("sets survived Clear")
	}
	if ok, _ := s.AcquireLock(ctx, "l", time.Minute); !ok {
		t.Fatalf("locks survived Clear")
	}
}

func TestLockExpiry(t *testing.T) {
	ctx := context.Background()
	s := New()

	if ok, err := s.AcquireLock(ctx, "l", 20*time.Millisecond); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, _ := s.AcquireLock(ctx, "l", time.Minute); ok {
		t.Fatalf("held lock re-acquired")
	}
	time.Sleep(40 * time.Millisecond)
	if ok, _ := s.AcquireLock(ctx, "l", time.Minute); !ok {
		t.Fatalf("expired lock must be acquirable")
	}
}

func TestLockRelease(t *testing.T) {
	ctx := context.Background()
	s := New()
	if ok, _ := s.AcquireLock(ctx, "l", time.Minute); !ok {
		t.Fatalf("acquire")
	}
	if err := s.ReleaseLock(ctx, "l"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := s.AcquireLock(ctx, "l", time.Minute); !ok {
		t.Fatalf("released lock must be acquirable")
	}
}
