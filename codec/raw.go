package codec

// Bytes passes []byte values through untouched, for callers that already
// hold serialized bytes and only want entry framing and tag bookkeeping on
// top.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String stores Go strings as their raw bytes. No escaping, no validation;
// whatever went in comes back out.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
