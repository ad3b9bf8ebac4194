// Package wire frames codec payloads before they reach the backend. The
// frame lets the read path tell a genuine entry from foreign or truncated
// bytes, so corruption degrades to a self-healed miss instead of a decode
// error surfacing to callers.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("tagcache: corrupt entry")
	magic4     = [...]byte{'T', 'A', 'G', 'C'}
)

const headerLen = 4 + 1 + 4 // magic | ver | vlen

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// EncodeEntry frames payload as: magic(4) | ver(1) | vlen(u32 be) | payload.
func EncodeEntry(payload []byte) []byte {
	out := make([]byte, 0, headerLen+len(payload))
	out = append(out, magic4[:]...)
	out = append(out, version)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	out = append(out, u4[:]...)

	return append(out, payload...)
}

// DecodeEntry validates the frame strictly (trailing bytes are corruption)
// and returns the payload.
func DecodeEntry(b []byte) ([]byte, error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version {
		return nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[5:9]))
	if vlen != len(b)-headerLen {
		return nil, ErrCorrupt
	}
	return b[headerLen:], nil
}
