package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Signature is the fixed 8-byte sequence that opens every PNG file.
var Signature = [8]byte{137, 80, 78, 71, 13, 10, 26, 10}

var (
	// ErrInvalidSignature reports input that does not begin with Signature.
	ErrInvalidSignature = errors.New("png: invalid file signature")

	// ErrChunkNotFound reports a lookup for a chunk type the file does not
	// contain.
	ErrChunkNotFound = errors.New("png: chunk not found")

	// ErrChunkTooLarge reports a chunk whose declared data length exceeds
	// the decode limit.
	ErrChunkTooLarge = errors.New("png: chunk exceeds size limit")
)

// Limits constrains decode memory use. A hostile length field can otherwise
// force an allocation of up to 4 GiB for a single chunk.
type Limits struct {
	// MaxChunkBytes is the largest declared data length accepted for one
	// chunk.
	MaxChunkBytes uint32
}

// DefaultLimits returns the limits used by Decode: 32 MiB per chunk.
func DefaultLimits() Limits {
	return Limits{MaxChunkBytes: 1 << 25}
}

// File is a parsed PNG: the ordered sequence of its chunks. The zero value
// is an empty file. Parse and serialize preserve chunk order exactly.
type File struct {
	chunks []Chunk
}

// FromChunks builds a file from the given chunk sequence. The slice is
// copied; the chunks themselves are immutable values.
func FromChunks(chunks []Chunk) *File {
	f := &File{chunks: make([]Chunk, len(chunks))}
	copy(f.chunks, chunks)
	return f
}

// Parse decodes a complete PNG from a byte slice using DefaultLimits.
func Parse(b []byte) (*File, error) {
	return Decode(bytes.NewReader(b))
}

// Decode reads a complete PNG from r using DefaultLimits.
func Decode(r io.Reader) (*File, error) {
	return DecodeWithLimits(r, DefaultLimits())
}

// DecodeWithLimits reads the signature and then consumes chunks until EOF.
// Chunks appearing after IEND are parsed like any other; that is where
// stowed payloads live. A chunk whose declared length exceeds
// limits.MaxChunkBytes fails the decode before any allocation.
func DecodeWithLimits(r io.Reader, limits Limits) (*File, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: file shorter than signature", ErrInvalidSignature)
		}
		return nil, err
	}
	if sig != Signature {
		return nil, ErrInvalidSignature
	}

	f := &File{}
	var header [8]byte
	for {
		// Length and type. A clean EOF here is the end of the file.
		_, err := io.ReadFull(r, header[:])
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: partial header for chunk %d", ErrTruncated, len(f.chunks))
		}
		if err != nil {
			return nil, err
		}

		length := binary.BigEndian.Uint32(header[0:4])
		typ, err := NewChunkType([4]byte(header[4:8]))
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", len(f.chunks), err)
		}
		if length > limits.MaxChunkBytes {
			return nil, fmt.Errorf("%w: chunk %q declares %d bytes, limit is %d", ErrChunkTooLarge, typ, length, limits.MaxChunkBytes)
		}

		body := make([]byte, int(length)+4)
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: chunk %q declares %d data bytes", ErrTruncated, typ, length)
			}
			return nil, err
		}

		data := body[:length]
		declared := binary.BigEndian.Uint32(body[length:])
		if computed := crcOver(typ, data); computed != declared {
			return nil, fmt.Errorf("chunk %q: %w", typ, &CRCError{Declared: declared, Computed: computed})
		}

		f.chunks = append(f.chunks, Chunk{length: length, typ: typ, data: data, crc: declared})
	}
}

// Chunks returns the file's chunks in order. The returned slice is shared
// with the file and must not be modified.
func (f *File) Chunks() []Chunk {
	return f.chunks
}

// ChunkByType returns the first chunk whose type renders as typ, or
// ErrChunkNotFound.
func (f *File) ChunkByType(typ string) (Chunk, error) {
	for _, c := range f.chunks {
		if c.typ.String() == typ {
			return c, nil
		}
	}
	return Chunk{}, fmt.Errorf("%w: %q", ErrChunkNotFound, typ)
}

// AppendChunk adds c after every existing chunk.
func (f *File) AppendChunk(c Chunk) {
	f.chunks = append(f.chunks, c)
}

// InsertChunk adds c at index i, shifting later chunks. Out-of-range indices
// are clamped to the ends of the sequence.
func (f *File) InsertChunk(i int, c Chunk) {
	if i < 0 {
		i = 0
	}
	if i > len(f.chunks) {
		i = len(f.chunks)
	}
	f.chunks = append(f.chunks, Chunk{})
	copy(f.chunks[i+1:], f.chunks[i:])
	f.chunks[i] = c
}

// RemoveChunk removes and returns the first chunk whose type renders as typ,
// or ErrChunkNotFound.
func (f *File) RemoveChunk(typ string) (Chunk, error) {
	for i, c := range f.chunks {
		if c.typ.String() == typ {
			f.chunks = append(f.chunks[:i], f.chunks[i+1:]...)
			return c, nil
		}
	}
	return Chunk{}, fmt.Errorf("%w: %q", ErrChunkNotFound, typ)
}

// Bytes returns the file in wire form: the signature followed by every chunk
// in order.
func (f *File) Bytes() []byte {
	size := len(Signature)
	for _, c := range f.chunks {
		size += chunkOverhead + len(c.data)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, Signature[:]...)
	for _, c := range f.chunks {
		buf = append(buf, c.Bytes()...)
	}
	return buf
}

// WriteTo writes the file in wire form to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}
