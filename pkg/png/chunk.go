package png

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode/utf8"
)

var (
	// ErrTruncated reports input that ends before the declared chunk layout
	// is complete.
	ErrTruncated = errors.New("png: chunk truncated")

	// ErrTrailingData reports bytes left over after a single complete chunk.
	ErrTrailingData = errors.New("png: trailing data after chunk")
)

// CRCError reports a mismatch between the checksum declared in a chunk and
// the one computed over its type and data.
type CRCError struct {
	Declared uint32
	Computed uint32
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("png: crc mismatch: declared %d, computed %d", e.Declared, e.Computed)
}

// chunkOverhead is the wire size of the length, type, and crc fields.
const chunkOverhead = 12

// Chunk is a single PNG chunk: declared data length, type code, data, and
// the CRC-32 over type and data. Chunks are immutable values; construct them
// with NewChunk or ParseChunk.
type Chunk struct {
	length uint32
	typ    ChunkType
	data   []byte
	crc    uint32
}

// NewChunk builds a chunk carrying data under the given type, computing the
// checksum. The data is copied.
func NewChunk(typ ChunkType, data []byte) Chunk {
	d := make([]byte, len(data))
	copy(d, data)
	return Chunk{
		length: uint32(len(d)),
		typ:    typ,
		data:   d,
		crc:    crcOver(typ, d),
	}
}

// crcOver computes the chunk checksum: CRC-32 (IEEE polynomial, the PNG
// standard) over the type bytes followed by the data bytes.
func crcOver(typ ChunkType, data []byte) uint32 {
	crc := crc32.Update(0, crc32.IEEETable, typ[:])
	return crc32.Update(crc, crc32.IEEETable, data)
}

// ParseChunk decodes exactly one chunk from raw. It fails with ErrTruncated
// when any field is short, a TypeByteError for an out-of-range type byte, a
// CRCError when the declared checksum does not match the data, and
// ErrTrailingData when bytes remain after the chunk.
func ParseChunk(raw []byte) (Chunk, error) {
	if len(raw) < 8 {
		return Chunk{}, fmt.Errorf("%w: need at least 8 bytes for length and type, have %d", ErrTruncated, len(raw))
	}

	length := binary.BigEndian.Uint32(raw[0:4])
	typ, err := NewChunkType([4]byte(raw[4:8]))
	if err != nil {
		return Chunk{}, err
	}

	need := int64(8) + int64(length) + 4
	if int64(len(raw)) < need {
		return Chunk{}, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, need, len(raw))
	}

	dataEnd := 8 + int(length)
	data := make([]byte, length)
	copy(data, raw[8:dataEnd])

	declared := binary.BigEndian.Uint32(raw[dataEnd : dataEnd+4])
	computed := crcOver(typ, data)
	if computed != declared {
		return Chunk{}, &CRCError{Declared: declared, Computed: computed}
	}

	if int64(len(raw)) > need {
		return Chunk{}, fmt.Errorf("%w: %d extra bytes", ErrTrailingData, int64(len(raw))-need)
	}

	return Chunk{length: length, typ: typ, data: data, crc: declared}, nil
}

// Length returns the declared data length.
func (c Chunk) Length() int {
	return int(c.length)
}

// Type returns the chunk's type code.
func (c Chunk) Type() ChunkType {
	return c.typ
}

// Data returns the chunk's payload. The returned slice is shared with the
// chunk and must not be modified.
func (c Chunk) Data() []byte {
	return c.data
}

// CRC returns the chunk's checksum.
func (c Chunk) CRC() uint32 {
	return c.crc
}

// DataAsString renders the payload as UTF-8 text, replacing invalid byte
// sequences with the replacement character U+FFFD.
func (c Chunk) DataAsString() string {
	return strings.ToValidUTF8(string(c.data), string(utf8.RuneError))
}

// Bytes returns the chunk in wire form: length, type, data, crc, with the
// integers big-endian.
func (c Chunk) Bytes() []byte {
	buf := make([]byte, 0, chunkOverhead+len(c.data))
	buf = binary.BigEndian.AppendUint32(buf, c.length)
	buf = append(buf, c.typ[:]...)
	buf = append(buf, c.data...)
	buf = binary.BigEndian.AppendUint32(buf, c.crc)
	return buf
}

// String returns a human-readable multi-line description of the chunk.
func (c Chunk) String() string {
	return fmt.Sprintf("Chunk {\n  length: %d\n  type: %s\n  data: %d bytes\n  crc: %d\n}", c.length, c.typ, len(c.data), c.crc)
}
