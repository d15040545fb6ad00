package png

import (
	"errors"
	"fmt"
)

// ErrTypeLength reports a chunk type string that is not exactly 4 characters.
var ErrTypeLength = errors.New("png: chunk type must be exactly 4 characters")

// TypeByteError reports a chunk type byte outside the ASCII letter range.
type TypeByteError struct {
	Pos  int  // position of the offending byte, 0-3
	Byte byte // the offending value
}

func (e *TypeByteError) Error() string {
	return fmt.Sprintf("png: invalid chunk type byte 0x%02x at position %d: must be an ASCII letter", e.Byte, e.Pos)
}

// propertyBit is bit 5 of each type byte, the bit that distinguishes upper
// from lower case in ASCII. The PNG format assigns a meaning to it per byte
// position: critical/ancillary, public/private, reserved, safe-to-copy.
const propertyBit = 0x20

// ChunkType is the 4-byte type code of a PNG chunk. Every byte is an ASCII
// letter; the case of each byte carries a property flag. Construct values
// with NewChunkType or ParseChunkType so the byte range is always enforced.
type ChunkType [4]byte

// NewChunkType validates b and returns it as a ChunkType. Each byte must be
// an ASCII letter (A-Z or a-z); the first offending byte is reported via
// TypeByteError.
func NewChunkType(b [4]byte) (ChunkType, error) {
	for i, c := range b {
		if !isASCIILetter(c) {
			return ChunkType{}, &TypeByteError{Pos: i, Byte: c}
		}
	}
	return ChunkType(b), nil
}

// ParseChunkType validates a 4-character string form of a chunk type.
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != 4 {
		return ChunkType{}, fmt.Errorf("%w: got %d", ErrTypeLength, len(s))
	}
	var b [4]byte
	copy(b[:], s)
	return NewChunkType(b)
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Bytes returns the four type bytes.
func (t ChunkType) Bytes() [4]byte {
	return t
}

// String renders the type as four ASCII letters.
func (t ChunkType) String() string {
	return string(t[:])
}

// IsCritical reports whether the chunk is required to display the image
// (byte 0 upper case). Ancillary chunks may be ignored by decoders.
func (t ChunkType) IsCritical() bool {
	return t[0]&propertyBit == 0
}

// IsPublic reports whether the type is registered in the public specification
// (byte 1 upper case). Application-specific types are private.
func (t ChunkType) IsPublic() bool {
	return t[1]&propertyBit == 0
}

// IsReservedBitValid reports whether byte 2 is upper case, as required of all
// types conforming to the current version of the format.
func (t ChunkType) IsReservedBitValid() bool {
	return t[2]&propertyBit == 0
}

// IsSafeToCopy reports whether editors that do not recognize the chunk may
// carry it over to a modified file (byte 3 lower case).
func (t ChunkType) IsSafeToCopy() bool {
	return t[3]&propertyBit != 0
}

// IsValid reports whether the type conforms to the current version of the
// format. The byte range is enforced at construction, so this reduces to the
// reserved bit check.
func (t ChunkType) IsValid() bool {
	return t.IsReservedBitValid()
}
