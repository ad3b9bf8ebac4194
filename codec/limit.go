package codec

import "fmt"

// Limit wraps another codec and refuses to Decode payloads larger than
// MaxDecode bytes. Encode passes through untouched. MaxDecode <= 0 disables
// the check.
//
// Typical use: protect against oversized entries coming back from a shared
// backend another tenant may have written to.
type Limit[V any] struct {
	// Inner is the wrapped codec. Must be set.
	Inner Codec[V]
	// MaxDecode caps the incoming payload length for Decode; larger payloads
	// error without invoking Inner.
	MaxDecode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
