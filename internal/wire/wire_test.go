package wire

import (
	"bytes"
	"testing"
)

func TestEntryRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		[]byte("x"),
		bytes.Repeat([]byte{0xAB}, 1<<16),
	}
	for _, p := range payloads {
		enc := EncodeEntry(p)
		got, err := DecodeEntry(enc)
		if err != nil {
			t.Fatalf("DecodeEntry(%d bytes): %v", len(p), err)
		}
		if !bytes.Equal(got, p) {
			t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(p))
		}
	}
}

func TestDecodeEntryRejectsTrailing(t *testing.T) {
	b := EncodeEntry([]byte("x"))
	b = append(b, 0xDE, 0xAD)
	if _, err := DecodeEntry(b); err != ErrCorrupt {
		t.Fatalf("DecodeEntry should reject trailing bytes, got %v", err)
	}
}

func TestDecodeEntryRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("short"),
		[]byte("not-a-frame-but-long-enough"),
		{'T', 'A', 'G', 'C', 99, 0, 0, 0, 0}, // wrong version
		{'T', 'A', 'G', 'C', 1, 0, 0, 0, 9},  // declared length > actual
	}
	for i, b := range cases {
		if _, err := DecodeEntry(b); err != ErrCorrupt {
			t.Fatalf("case %d: expected ErrCorrupt, got %v", i, err)
		}
	}
}
