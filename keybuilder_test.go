package tagcache

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/tagcache/backend/memory"
)

func TestKeyBuilderStable(t *testing.T) {
	kb := KeyBuilder{Prefix: "myapp", Namespace: "v1"}

	k1, err := kb.Build("get_user", "42", map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Same logical arguments, different map construction order.
	k2, err := kb.Build("get_user", "42", map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("same arguments must derive the same key: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "myapp:v1:get_user:") {
		t.Fatalf("unexpected key shape: %q", k1)
	}
}

func TestKeyBuilderDistinguishes(t *testing.T) {
	kb := KeyBuilder{Prefix: "myapp"}

	a, _ := kb.Build("get_user", "1")
	b, _ := kb.Build("get_user", "2")
	c, _ := kb.Build("get_order", "1")
	if a == b {
		t.Fatalf("different arguments must derive different keys")
	}
	if a == c {
		t.Fatalf("different functions must derive different keys")
	}
}

func TestKeyBuilderOptionalParts(t *testing.T) {
	k, err := KeyBuilder{}.Build("fn")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.HasPrefix(k, ":") || !strings.HasPrefix(k, "fn:") {
		t.Fatalf("empty prefix/namespace must not leave separators: %q", k)
	}
	if _, err := (KeyBuilder{}).Build(""); err == nil {
		t.Fatalf("empty function name must be rejected")
	}
}

func TestKeyBuilderRef(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "user", memory.New(), nil)
	kb := KeyBuilder{Prefix: "myapp"}

	var calls atomic.Int32
	key := kb.BuildRef("get_user", "7")
	if _, err := cc.GetOrCompute(ctx, key, NoTags, time.Minute, fixedCompute(&calls, user{ID: "7"})); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	// The derived key is addressable directly.
	lit, err := kb.Build("get_user", "7")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok, _ := cc.Get(ctx, lit); !ok {
		t.Fatalf("BuildRef and Build must address the same entry")
	}

	// Unencodable argument resolves to an empty key and is rejected.
	bad := kb.BuildRef("fn", make(chan int))
	if _, err := cc.GetOrCompute(ctx, bad, NoTags, time.Minute, fixedCompute(&calls, user{})); err == nil {
		t.Fatalf("unencodable key argument must surface an error")
	}
}
