package tagcache

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/tagcache/internal/util"
)

// KeyBuilder derives stable cache keys from a function identity plus its
// argument values: same logical call, same key; unrelated calls never
// collide (function name is part of the key, arguments are hashed).
//
//	kb := tagcache.KeyBuilder{Prefix: "myapp", Namespace: "v1"}
//	k, _ := kb.Build("get_user_profile", userID)
//	v, err := cache.GetOrCompute(ctx, tagcache.Key(k), ...)
type KeyBuilder struct {
	Prefix    string // application prefix, e.g. "myapp"
	Namespace string // version or tenant scope, e.g. "v1"
}

// Build returns "<prefix>:<namespace>:<fn>:<hash>" where hash covers a
// canonical JSON rendering of args (map keys sorted). Arguments must be
// JSON-encodable.
func (kb KeyBuilder) Build(fn string, args ...any) (string, error) {
	if fn == "" {
		return "", ErrKeyEmpty
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		b, err := util.Canonical(a)
		if err != nil {
			return "", fmt.Errorf("tagcache: key arg %d: %w", i, err)
		}
		sb.Write(b)
	}
	sb.WriteByte(']')

	parts := make([]string, 0, 4)
	if kb.Prefix != "" {
		parts = append(parts, kb.Prefix)
	}
	if kb.Namespace != "" {
		parts = append(parts, kb.Namespace)
	}
	parts = append(parts, fn, util.ShortHash([]byte(sb.String())))
	return strings.Join(parts, ":"), nil
}

// BuildRef is Build wrapped for direct use as a GetOrCompute key, deferring
// derivation to call time.
func (kb KeyBuilder) BuildRef(fn string, args ...any) KeyRef {
	return KeyFunc(func() string {
		k, err := kb.Build(fn, args...)
		if err != nil {
			return "" // resolves to ErrKeyEmpty at the call site
		}
		return k
	})
}
