// Package container implements the little-endian binary layout shared
// by every codec's on-disk format: a 4-byte magic, a fixed-size
// header, and a sequence of per-channel side tables and payloads.
//
// All multi-byte integers are explicit little-endian, matching the
// host-native layout the format specifies (see the module's design
// notes on endianness).
package container

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrShortBuffer is returned when a read or skip runs past the end of
// the buffer. Writes never fail with it, since Writer grows as needed.
var ErrShortBuffer = errors.New("container: buffer too short")

// ByteOrder is the byte order used throughout the container formats.
var ByteOrder = binary.LittleEndian

// MagicSize is the length in bytes of every container's magic prefix.
const MagicSize = 4

// Writer is a growing little-endian byte buffer builder.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given initial capacity hint.
func NewWriter(capacityHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capacityHint)}
}

// Bytes returns the bytes written so far. The returned slice aliases
// the Writer's internal buffer and is only valid until the next write.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteMagic appends a 4-byte ASCII magic value, e.g. "RLE ".
func (w *Writer) WriteMagic(magic string) {
	w.buf = append(w.buf, magic...)
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteBytes appends a byte slice verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WritePad appends n zero bytes.
func (w *Writer) WritePad(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// WriteUint8 appends an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

// WriteUint16 appends an unsigned 16-bit integer, little-endian.
func (w *Writer) WriteUint16(v uint16) {
	var tmp [2]byte
	ByteOrder.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteInt16 appends a signed 16-bit integer, little-endian.
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

// WriteUint32 appends an unsigned 32-bit integer, little-endian.
func (w *Writer) WriteUint32(v uint32) {
	var tmp [4]byte
	ByteOrder.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteUint64 appends an unsigned 64-bit integer, little-endian.
func (w *Writer) WriteUint64(v uint64) {
	var tmp [8]byte
	ByteOrder.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteFloat64 appends a 64-bit IEEE 754 float, little-endian.
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// Reader provides bounds-checked little-endian reads over a byte
// slice, tracking a read position.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// ReadMagic reads and returns the next 4 bytes.
func (r *Reader) ReadMagic() (string, error) {
	b, err := r.ReadBytes(MagicSize)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrShortBuffer
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, ErrShortBuffer
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return ErrShortBuffer
	}
	r.pos += n
	return nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) { return r.ReadByte() }

// ReadUint16 reads an unsigned 16-bit integer, little-endian.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadInt16 reads a signed 16-bit integer, little-endian.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads an unsigned 32-bit integer, little-endian.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadUint64 reads an unsigned 64-bit integer, little-endian.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadFloat64 reads a 64-bit IEEE 754 float, little-endian.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}
