package tagcache

// KeyRef names the cache entry for one call: either a literal string or a
// derivation function evaluated once when the call starts. The two forms are
// indistinguishable to the engine after resolution.
type KeyRef struct {
	lit string
	fn  func() string
}

// Key wraps a literal cache key.
func Key(s string) KeyRef { return KeyRef{lit: s} }

// KeyFunc wraps a key derivation evaluated once per call.
func KeyFunc(f func() string) KeyRef { return KeyRef{fn: f} }

func (r KeyRef) resolve() string {
	if r.fn != nil {
		return r.fn()
	}
	return r.lit
}

// TagsRef supplies the tag set for one call, literal or derived. The zero
// value means "no tags": the entry is cached but reachable only by direct
// key invalidation or natural expiry.
type TagsRef struct {
	lit []string
	fn  func() []string
}

// Tags wraps a literal tag set.
func Tags(tags ...string) TagsRef { return TagsRef{lit: tags} }

// NoTags is the explicit empty tag set.
var NoTags = TagsRef{}

// TagsFunc wraps a tag-set derivation evaluated once per call.
func TagsFunc(f func() []string) TagsRef { return TagsRef{fn: f} }

func (r TagsRef) resolve() []string {
	if r.fn != nil {
		return r.fn()
	}
	return r.lit
}
