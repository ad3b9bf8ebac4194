package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes with vmihailenco/msgpack/v5. Noticeably smaller than
// JSON for struct-heavy values; the zero value is ready to use.
//
// msgpack does not read `json:` struct tags. Add `msgpack:"name"` tags when
// the stored field names matter, e.g. when another reader shares the
// backend.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}
func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
