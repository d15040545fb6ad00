package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func newTestChunk(t *testing.T, typ, msg string) Chunk {
	t.Helper()
	return NewChunk(mustChunkType(t, typ), []byte(msg))
}

// testFile builds a three-chunk file used across the suite.
func testFile(t *testing.T) *File {
	t.Helper()
	return FromChunks([]Chunk{
		newTestChunk(t, "FrSt", "I am the first chunk"),
		newTestChunk(t, "miDl", "I am another chunk"),
		newTestChunk(t, "LASt", "I am the last chunk"),
	})
}

// appendRawChunk writes a chunk in wire form with an explicit checksum,
// bypassing NewChunk, so known reference vectors can be exercised.
func appendRawChunk(buf []byte, typ string, data []byte, crc uint32) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, typ...)
	buf = append(buf, data...)
	return binary.BigEndian.AppendUint32(buf, crc)
}

func TestParse_ValidFile(t *testing.T) {
	parsed, err := Parse(testFile(t).Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := parsed.Chunks()
	if len(chunks) != 3 {
		t.Fatalf("len(Chunks()) = %d, want 3", len(chunks))
	}

	want := []struct {
		typ string
		msg string
	}{
		{"FrSt", "I am the first chunk"},
		{"miDl", "I am another chunk"},
		{"LASt", "I am the last chunk"},
	}
	for i, w := range want {
		if got := chunks[i].Type().String(); got != w.typ {
			t.Errorf("chunk %d type = %q, want %q", i, got, w.typ)
		}
		if got := chunks[i].DataAsString(); got != w.msg {
			t.Errorf("chunk %d data = %q, want %q", i, got, w.msg)
		}
	}
}

func TestParse_KnownVectors(t *testing.T) {
	// IHDR for a 1x1 RGBA image and an empty IEND, with checksums
	// computed by an independent CRC-32 implementation.
	ihdrData := []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}
	raw := append([]byte{}, Signature[:]...)
	raw = appendRawChunk(raw, "IHDR", ihdrData, 521520265)
	raw = appendRawChunk(raw, "IEND", nil, 2923585666)

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Chunks()) != 2 {
		t.Fatalf("len(Chunks()) = %d, want 2", len(parsed.Chunks()))
	}
	if got := parsed.Chunks()[0].Type().String(); got != "IHDR" {
		t.Errorf("first chunk type = %q, want IHDR", got)
	}
	if got := parsed.Chunks()[1].Type().String(); got != "IEND" {
		t.Errorf("second chunk type = %q, want IEND", got)
	}
}

func TestParse_SignatureOnly(t *testing.T) {
	parsed, err := Parse(Signature[:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Chunks()) != 0 {
		t.Errorf("len(Chunks()) = %d, want 0", len(parsed.Chunks()))
	}
}

func TestParse_InvalidSignature(t *testing.T) {
	corrupted := testFile(t).Bytes()
	corrupted[0] = 13

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty input", nil},
		{"shorter than signature", Signature[:4]},
		{"wrong first byte", corrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if !errors.Is(err, ErrInvalidSignature) {
				t.Errorf("error = %v, want ErrInvalidSignature", err)
			}
		})
	}
}

func TestParse_TruncatedChunk(t *testing.T) {
	full := testFile(t).Bytes()

	tests := []struct {
		name string
		raw  []byte
	}{
		{"partial header", full[:len(Signature)+5]},
		{"partial data", full[:len(Signature)+15]},
		{"missing crc", full[:len(full)-2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("error = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestParse_CRCMismatch(t *testing.T) {
	raw := testFile(t).Bytes()
	// Flip a data byte of the first chunk; its stored checksum is now wrong.
	raw[len(Signature)+8] ^= 0xFF

	_, err := Parse(raw)
	var crcErr *CRCError
	if !errors.As(err, &crcErr) {
		t.Fatalf("expected CRCError, got %v", err)
	}
}

func TestParse_ChunksAfterIEND(t *testing.T) {
	f := FromChunks([]Chunk{
		newTestChunk(t, "IHDR", ""),
		newTestChunk(t, "IEND", ""),
	})
	f.AppendChunk(newTestChunk(t, "stSh", "tucked away"))

	parsed, err := Parse(f.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Chunks()) != 3 {
		t.Fatalf("len(Chunks()) = %d, want 3", len(parsed.Chunks()))
	}

	chunk, err := parsed.ChunkByType("stSh")
	if err != nil {
		t.Fatalf("ChunkByType failed: %v", err)
	}
	if got := chunk.DataAsString(); got != "tucked away" {
		t.Errorf("data = %q, want %q", got, "tucked away")
	}
}

func TestDecodeWithLimits_ChunkTooLarge(t *testing.T) {
	f := FromChunks([]Chunk{newTestChunk(t, "biGG", "0123456789abcdef0123456789abcdef")})

	_, err := DecodeWithLimits(bytes.NewReader(f.Bytes()), Limits{MaxChunkBytes: 16})
	if !errors.Is(err, ErrChunkTooLarge) {
		t.Fatalf("error = %v, want ErrChunkTooLarge", err)
	}

	// The same file decodes under the default limits.
	if _, err := Parse(f.Bytes()); err != nil {
		t.Errorf("unexpected error under default limits: %v", err)
	}
}

func TestFile_ChunkByType(t *testing.T) {
	f := testFile(t)

	chunk, err := f.ChunkByType("miDl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := chunk.DataAsString(); got != "I am another chunk" {
		t.Errorf("data = %q, want %q", got, "I am another chunk")
	}

	if _, err := f.ChunkByType("noPe"); !errors.Is(err, ErrChunkNotFound) {
		t.Errorf("error = %v, want ErrChunkNotFound", err)
	}
}

func TestFile_RemoveChunk(t *testing.T) {
	f := testFile(t)

	removed, err := f.RemoveChunk("miDl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := removed.DataAsString(); got != "I am another chunk" {
		t.Errorf("removed data = %q, want %q", got, "I am another chunk")
	}
	if len(f.Chunks()) != 2 {
		t.Fatalf("len(Chunks()) = %d, want 2", len(f.Chunks()))
	}
	if _, err := f.ChunkByType("miDl"); !errors.Is(err, ErrChunkNotFound) {
		t.Errorf("removed chunk still present")
	}
	if _, err := f.RemoveChunk("miDl"); !errors.Is(err, ErrChunkNotFound) {
		t.Errorf("second removal error = %v, want ErrChunkNotFound", err)
	}

	// Remaining chunks keep their order.
	if got := f.Chunks()[0].Type().String(); got != "FrSt" {
		t.Errorf("first remaining chunk = %q, want FrSt", got)
	}
	if got := f.Chunks()[1].Type().String(); got != "LASt" {
		t.Errorf("second remaining chunk = %q, want LASt", got)
	}
}

func TestFile_RemoveChunk_FirstMatchOnly(t *testing.T) {
	f := FromChunks([]Chunk{
		newTestChunk(t, "same", "one"),
		newTestChunk(t, "same", "two"),
	})

	removed, err := f.RemoveChunk("same")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := removed.DataAsString(); got != "one" {
		t.Errorf("removed data = %q, want %q", got, "one")
	}
	if len(f.Chunks()) != 1 {
		t.Fatalf("len(Chunks()) = %d, want 1", len(f.Chunks()))
	}
	if got := f.Chunks()[0].DataAsString(); got != "two" {
		t.Errorf("remaining data = %q, want %q", got, "two")
	}
}

func TestFile_AppendChunk(t *testing.T) {
	f := testFile(t)
	f.AppendChunk(newTestChunk(t, "TeSt", "Message"))

	chunks := f.Chunks()
	if len(chunks) != 4 {
		t.Fatalf("len(Chunks()) = %d, want 4", len(chunks))
	}
	if got := chunks[3].Type().String(); got != "TeSt" {
		t.Errorf("last chunk type = %q, want TeSt", got)
	}
}

func TestFile_InsertChunk(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		wantPos int
	}{
		{"middle", 1, 1},
		{"negative clamps to front", -5, 0},
		{"past end clamps to back", 99, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFile(t)
			f.InsertChunk(tt.index, newTestChunk(t, "neWc", "inserted"))

			if len(f.Chunks()) != 4 {
				t.Fatalf("len(Chunks()) = %d, want 4", len(f.Chunks()))
			}
			if got := f.Chunks()[tt.wantPos].Type().String(); got != "neWc" {
				t.Errorf("chunk at %d = %q, want neWc", tt.wantPos, got)
			}
		})
	}
}

func TestFile_BytesRoundTrip(t *testing.T) {
	f := testFile(t)

	parsed, err := Parse(f.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(parsed.Bytes(), f.Bytes()) {
		t.Error("serialized form changed after a parse round trip")
	}
}

func TestFromChunks_CopiesSlice(t *testing.T) {
	chunks := []Chunk{newTestChunk(t, "FrSt", "original")}
	f := FromChunks(chunks)
	chunks[0] = newTestChunk(t, "oTHr", "replaced")

	if got := f.Chunks()[0].Type().String(); got != "FrSt" {
		t.Errorf("chunk type = %q, want FrSt (FromChunks must copy the slice)", got)
	}
}

func TestFile_WriteTo(t *testing.T) {
	f := testFile(t)

	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != int64(len(f.Bytes())) {
		t.Errorf("WriteTo wrote %d bytes, want %d", n, len(f.Bytes()))
	}
	if !bytes.Equal(buf.Bytes(), f.Bytes()) {
		t.Error("WriteTo output differs from Bytes()")
	}
}
