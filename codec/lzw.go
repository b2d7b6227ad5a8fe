package codec

import (
	"bytes"

	"github.com/basaltimg/rastercodec/bitio"
	cio "github.com/basaltimg/rastercodec/container"
)

// lzwCodeBits is the fixed code width: every emitted code occupies
// exactly 12 bits, MSB-first.
const lzwCodeBits = 12

// lzwDictCap is the number of addressable codes (0..4095); growth
// halts once the dictionary reaches this size.
const lzwDictCap = 4096

// LZW dictionary-codes each channel plane with classic 12-bit LZW:
// entries 0..255 are pre-seeded as single-byte sequences, and the
// dictionary grows by one entry per emitted code until it fills.
type LZW struct{}

// Name implements Codec.
func (LZW) Name() string { return "lzw" }

// Magic implements Codec.
func (LZW) Magic() string { return "LZW " }

// lzwEncodePlane runs the standard LZW match-extend loop and returns
// the emitted code sequence.
func lzwEncodePlane(plane []byte) []uint16 {
	dict := make(map[string]uint16, 512)
	for i := 0; i < 256; i++ {
		dict[string([]byte{byte(i)})] = uint16(i)
	}
	nextFree := 256

	var codes []uint16
	var w []byte
	for _, c := range plane {
		wc := make([]byte, len(w)+1)
		copy(wc, w)
		wc[len(w)] = c
		if _, ok := dict[string(wc)]; ok {
			w = wc
			continue
		}
		codes = append(codes, dict[string(w)])
		if nextFree < lzwDictCap {
			dict[string(wc)] = uint16(nextFree)
			nextFree++
		}
		w = []byte{c}
	}
	if len(w) > 0 {
		codes = append(codes, dict[string(w)])
	}
	return codes
}

// lzwDecodePlane inverts lzwEncodePlane, handling the KwKwK case
// (current code equals the next free slot) per §4.5.
func lzwDecodePlane(codes []uint16) ([]byte, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	dict := make([][]byte, lzwDictCap)
	for i := 0; i < 256; i++ {
		dict[i] = []byte{byte(i)}
	}
	nextFree := 256

	if int(codes[0]) >= nextFree {
		return nil, ErrMalformedStream
	}
	w := dict[codes[0]]
	out := append([]byte{}, w...)

	for _, k := range codes[1:] {
		var entry []byte
		switch {
		case int(k) < nextFree:
			entry = dict[k]
		case int(k) == nextFree:
			entry = append(append([]byte{}, w...), w[0])
		default:
			return nil, ErrMalformedStream
		}
		out = append(out, entry...)
		if nextFree < lzwDictCap {
			dict[nextFree] = append(append([]byte{}, w...), entry[0])
			nextFree++
		}
		w = entry
	}
	return out, nil
}

// Compress implements Codec.
func (c LZW) Compress(w, h, ch int, planes [][]byte, quality int) ([]byte, error) {
	cw := cio.NewWriter(64)
	cw.WriteMagic(c.Magic())
	cw.WriteUint32(uint32(w))
	cw.WriteUint32(uint32(h))
	cw.WriteUint8(uint8(ch))
	cw.WritePad(3)
	for _, plane := range planes {
		codes := lzwEncodePlane(plane)

		var buf bytes.Buffer
		bw := bitio.NewWriter(&buf)
		for _, code := range codes {
			if err := bw.WriteBits(uint32(code), lzwCodeBits); err != nil {
				return nil, err
			}
		}
		if err := bw.Flush(); err != nil {
			return nil, err
		}

		validBits := uint64(len(codes)) * lzwCodeBits
		cw.WriteUint64(validBits)
		cw.WriteUint32(uint32(buf.Len()))
		cw.WriteBytes(buf.Bytes())
	}
	return cw.Bytes(), nil
}

// Decompress implements Codec.
func (c LZW) Decompress(data []byte) (int, int, int, [][]byte, error) {
	cr := cio.NewReader(data)
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
		validBits, err := cr.ReadUint64()
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		if validBits%lzwCodeBits != 0 {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		sz, err := cr.ReadUint32()
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		payload, err := cr.ReadBytes(int(sz))
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}

		numCodes := int(validBits / lzwCodeBits)
		codes := make([]uint16, numCodes)
		br := bitio.NewReader(bytes.NewReader(payload))
		for i := 0; i < numCodes; i++ {
			v, ok := br.ReadBits(lzwCodeBits)
			if !ok {
				return 0, 0, 0, nil, ErrMalformedStream
			}
			codes[i] = uint16(v)
		}

		plane, err := lzwDecodePlane(codes)
		if err != nil {
			return 0, 0, 0, nil, err
		}
		planes[k] = plane
	}
	return int(w32), int(h32), int(chB), planes, nil
}
