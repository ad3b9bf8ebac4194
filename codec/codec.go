// Package codec turns computed values into bytes for the backend and back.
// The engine treats payloads as opaque; pick the format per value type.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
