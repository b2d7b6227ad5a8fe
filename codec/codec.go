// Package codec implements the four byte-plane codec engines — RLE,
// Huffman, LZW, and DCT — and their container (de)serialization. Each
// codec consumes the per-channel planes of a raster.Planar and
// produces a self-describing binary blob (and vice versa); file I/O
// and name-based routing live one layer up, in package dispatch.
package codec

import "github.com/pkg/errors"

// Error kinds surfaced by every codec, per the error taxonomy.
var (
	// ErrBadMagic is returned when a container's leading 4 bytes do
	// not match the codec being asked to decode it.
	ErrBadMagic = errors.New("codec: magic mismatch")

	// ErrUnsupportedChannelCount is returned when a codec is handed a
	// plane count it cannot process (DCT compresses 1 or 3 planes and
	// decodes only single-plane containers).
	ErrUnsupportedChannelCount = errors.New("codec: unsupported channel count")

	// ErrEmptyInput is returned when a codec that cannot represent a
	// zero-length channel (Huffman) is asked to compress one.
	ErrEmptyInput = errors.New("codec: empty channel input")

	// ErrMalformedStream is returned when a decoder encounters data
	// that violates its own format invariants: a corrupt dictionary
	// reference, a bit count that isn't a multiple of the code width,
	// a truncated payload, or a frequency table with no live symbols.
	ErrMalformedStream = errors.New("codec: malformed stream")
)

// Codec is implemented by each of the four codec engines. Compress
// and Decompress operate on already-decomposed channel planes; the
// container framing (magic + W/H/C header) is handled uniformly by
// the codec itself so that Decompress can validate its own magic.
type Codec interface {
	// Name is the dispatcher-facing identifier ("rle", "huffman", ...).
	Name() string

	// Magic is the 4-byte ASCII tag this codec's containers begin with.
	Magic() string

	// Compress encodes planes (and their W/H/C header) into a
	// self-describing container. quality is only meaningful to the
	// DCT codec; other codecs ignore it.
	Compress(w, h, c int, planes [][]byte, quality int) ([]byte, error)

	// Decompress parses a container produced by Compress and returns
	// its width, height, channel count, and decoded planes.
	Decompress(data []byte) (w, h, c int, planes [][]byte, err error)
}
