package core

import (
	"fmt"

	"github.com/pngstash/pngstash/pkg/png"
)

// Placement selects where an embedded chunk is placed in the file.
type Placement string

const (
	// PlacementEnd appends the chunk after every existing chunk, including
	// IEND. Decoders stop at IEND, so the payload never affects rendering.
	PlacementEnd Placement = "end"

	// PlacementBeforeIEND inserts the chunk directly ahead of the IEND
	// chunk when the file has one, falling back to appending otherwise.
	PlacementBeforeIEND Placement = "before-iend"
)

// ParsePlacement converts a user-supplied string to a Placement.
func ParsePlacement(s string) (Placement, error) {
	switch Placement(s) {
	case PlacementEnd, PlacementBeforeIEND:
		return Placement(s), nil
	default:
		return "", fmt.Errorf("invalid placement %q, must be one of: end, before-iend", s)
	}
}

// MessageCodec defines the interface for hiding, reading, and removing
// text messages carried in PNG chunks.
type MessageCodec interface {
	Embed(f *png.File, chunkType, message string, placement Placement) (png.Chunk, error)
	Extract(f *png.File, chunkType string) (string, error)
	Remove(f *png.File, chunkType string) (string, error)
}

// messageCodec implements MessageCodec on top of the pkg/png chunk model.
type messageCodec struct{}

// NewMessageCodec creates a new MessageCodec.
func NewMessageCodec() MessageCodec {
	return &messageCodec{}
}

// Embed wraps message in a chunk of the given type and adds it to f at the
// requested placement. The modified file is not persisted here; callers
// decide where it goes.
func (mc *messageCodec) Embed(f *png.File, chunkType, message string, placement Placement) (png.Chunk, error) {
	typ, err := png.ParseChunkType(chunkType)
	if err != nil {
		return png.Chunk{}, fmt.Errorf("embedding message: %w", err)
	}
	if _, err := ParsePlacement(string(placement)); err != nil {
		return png.Chunk{}, fmt.Errorf("embedding message: %w", err)
	}

	chunk := png.NewChunk(typ, []byte(message))

	if placement == PlacementBeforeIEND {
		if i := indexOfType(f, "IEND"); i >= 0 {
			f.InsertChunk(i, chunk)
			return chunk, nil
		}
	}
	f.AppendChunk(chunk)
	return chunk, nil
}

// Extract returns the message stored in the first chunk of the given type.
func (mc *messageCodec) Extract(f *png.File, chunkType string) (string, error) {
	chunk, err := f.ChunkByType(chunkType)
	if err != nil {
		return "", err
	}
	return chunk.DataAsString(), nil
}

// Remove deletes the first chunk of the given type from f and returns the
// message it carried.
func (mc *messageCodec) Remove(f *png.File, chunkType string) (string, error) {
	chunk, err := f.RemoveChunk(chunkType)
	if err != nil {
		return "", err
	}
	return chunk.DataAsString(), nil
}

// indexOfType returns the index of the first chunk whose type renders as
// typ, or -1.
func indexOfType(f *png.File, typ string) int {
	for i, c := range f.Chunks() {
		if c.Type().String() == typ {
			return i
		}
	}
	return -1
}
