// Package png implements a chunk-level model of the PNG file format.
//
// A PNG file is an 8-byte signature followed by a sequence of chunks. Each
// chunk is a 4-byte big-endian data length, a 4-byte type code, the data
// itself, and a CRC-32 checksum computed over the type and data. Decoders
// ignore chunk types they do not recognize, which makes it possible to stow
// arbitrary payloads in a file without affecting how the image renders.
//
// The package parses, validates, and serializes chunks and whole files. It
// performs no image decoding: pixel data passes through untouched.
package png
