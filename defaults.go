package tagcache

// coalesce picks def when v is T's zero value, v otherwise. Options handling
// uses it for every knob with a non-zero default.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
