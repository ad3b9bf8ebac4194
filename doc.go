// Package tagcache implements a backend-agnostic function-result cache with
// TTL expiry, tag-based bulk invalidation and single-flight compute
// coordination: concurrent callers missing on the same key share one
// computation and its outcome, in-process always and across processes when a
// lock-capable backend is configured.
//
// Components:
//   - Backend: byte store with TTL and set primitives (memory, Redis,
//     BigCache, Ristretto adapters included).
//   - Codec[V]: (de)serializes V <-> []byte (JSON, msgpack, CBOR, protobuf).
//   - Engine: lookup -> miss -> coordinated compute -> store -> tag
//     registration, plus Invalidate/InvalidateKey/Clear.
//
// Keys:
//
//	v:<ns>:<key>    - value entries
//	tag:<ns>:<tag>  - tag membership sets (storage keys of tagged entries)
//	lock:<ns>:<key> - cross-process flight locks (expiring)
//
// Typical use:
//
//	cache, _ := tagcache.New[User](tagcache.Options[User]{
//	    Namespace: "user",
//	    Backend:   memory.New(),
//	    Codec:     codec.JSON[User]{},
//	})
//	u, err := cache.GetOrCompute(ctx, tagcache.Key("user:1"),
//	    tagcache.Tags("users"), time.Minute, fetchUser1)
//	...
//	_ = cache.Invalidate(ctx, "users") // drop every entry tagged "users"
//
// Compute failures are surfaced, never retried and never cached. A backend
// outage degrades reads to "always recompute"; writes fail loudly with a
// *StoreError that still carries the computed value.
package tagcache
