package codec

import "github.com/basaltimg/rastercodec/container"

// RLE run-length encodes each channel plane independently as a flat
// sequence of (value, runHi, runLo) triples: the byte value, then its
// run length as a big-endian uint16. This is the simplest of the four
// codecs and the one least adapted from the teacher repository's own
// RLE (OpenEXR's RLE alternates signed literal/run markers; this
// format instead always emits a fixed-width triple, per the
// specification's container layout).
type RLE struct{}

// rleMaxRun is the longest run a single triple can encode.
const rleMaxRun = 0xFFFF

// Name implements Codec.
func (RLE) Name() string { return "rle" }

// Magic implements Codec.
func (RLE) Magic() string { return "RLE " }

// rleEncodePlane walks plane left to right, emitting one triple per
// maximal run of identical bytes capped at rleMaxRun.
func rleEncodePlane(plane []byte) []byte {
	out := make([]byte, 0, len(plane)/2+3)
	i := 0
	for i < len(plane) {
		val := plane[i]
		run := 1
		for i+run < len(plane) && plane[i+run] == val && run < rleMaxRun {
			run++
		}
		out = append(out, val, byte(run>>8), byte(run&0xFF))
		i += run
	}
	return out
}

// rleDecodePlane expands a triple-encoded payload back into bytes. A
// trailing remainder shorter than a full triple is treated as
// malformed input rather than silently dropped (see the module's
// design notes on the source's original truncation behavior).
func rleDecodePlane(data []byte) ([]byte, error) {
	if len(data)%3 != 0 {
		return nil, ErrMalformedStream
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i += 3 {
		val := data[i]
		run := int(data[i+1])<<8 | int(data[i+2])
		for k := 0; k < run; k++ {
			out = append(out, val)
		}
	}
	return out, nil
}

// Compress implements Codec.
func (c RLE) Compress(w, h, ch int, planes [][]byte, quality int) ([]byte, error) {
	cw := container.NewWriter(64)
	cw.WriteMagic(c.Magic())
	cw.WriteUint32(uint32(w))
	cw.WriteUint32(uint32(h))
	cw.WriteUint8(uint8(ch))
	cw.WritePad(3)
	for _, plane := range planes {
		encoded := rleEncodePlane(plane)
		cw.WriteUint32(uint32(len(encoded)))
		cw.WriteBytes(encoded)
	}
	return cw.Bytes(), nil
}

// Decompress implements Codec.
func (c RLE) Decompress(data []byte) (int, int, int, [][]byte, error) {
	cr := container.NewReader(data)
	magic, err := cr.ReadMagic()
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if magic != c.Magic() {
		return 0, 0, 0, nil, ErrBadMagic
	}
	w32, err := cr.ReadUint32()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	h32, err := cr.ReadUint32()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	chB, err := cr.ReadUint8()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	if err := cr.Skip(3); err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}

	planes := make([][]byte, chB)
	for k := range planes {
		sz, err := cr.ReadUint32()
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		payload, err := cr.ReadBytes(int(sz))
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		plane, err := rleDecodePlane(payload)
		if err != nil {
			return 0, 0, 0, nil, err
		}
		planes[k] = plane
	}
	return int(w32), int(h32), int(chB), planes, nil
}
