package png

import (
	"testing"

	"pgregory.net/rapid"
)

// Feature: pngstash, Property 5: Chunk Type Round-Trip
// Every four-letter ASCII string parses as a chunk type and renders back
// to the same string, and its byte form reparses to the same value.
func TestProperty_ChunkTypeRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringMatching(`[a-zA-Z]{4}`).Draw(rt, "s")

		typ, err := ParseChunkType(s)
		if err != nil {
			t.Fatalf("ParseChunkType(%q) failed: %v", s, err)
		}
		if typ.String() != s {
			t.Fatalf("String() = %q, want %q", typ.String(), s)
		}

		again, err := NewChunkType(typ.Bytes())
		if err != nil {
			t.Fatalf("NewChunkType(Bytes()) failed: %v", err)
		}
		if again != typ {
			t.Fatalf("byte round trip changed the type: %v != %v", again, typ)
		}
	})
}

// Feature: pngstash, Property 6: Non-Letter Bytes Are Rejected
// A chunk type containing any byte outside A-Z and a-z never parses, and
// the error reports the offending position.
func TestProperty_ChunkTypeRejectsNonLetters(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var raw [4]byte
		for i := range raw {
			raw[i] = rapid.ByteRange('A', 'Z').Draw(rt, "letter")
		}

		pos := rapid.IntRange(0, 3).Draw(rt, "pos")
		bad := rapid.Byte().Filter(func(b byte) bool {
			return !(b >= 'A' && b <= 'Z') && !(b >= 'a' && b <= 'z')
		}).Draw(rt, "bad")
		raw[pos] = bad

		_, err := NewChunkType(raw)
		if err == nil {
			t.Fatalf("NewChunkType(%v) accepted a non-letter byte", raw)
		}
	})
}
