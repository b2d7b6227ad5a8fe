package codec

import (
	"bytes"
	"testing"
)

func TestLZWDegenerateEmpty(t *testing.T) {
	codes := lzwEncodePlane(nil)
	if len(codes) != 0 {
		t.Errorf("codes = %v, want empty", codes)
	}
}

func TestLZWDegenerateSingleByte(t *testing.T) {
	codes := lzwEncodePlane([]byte{'Z'})
	if len(codes) != 1 {
		t.Fatalf("codes = %v, want exactly one code", codes)
	}
	if codes[0] != uint16('Z') {
		t.Errorf("codes[0] = %d, want %d", codes[0], 'Z')
	}
}

func TestLZWTobeornotTextbookExample(t *testing.T) {
	plane := []byte("TOBEORNOTTOBEORTOBEORNOT")
	codes := lzwEncodePlane(plane)

	decoded, err := lzwDecodePlane(codes)
	if err != nil {
		t.Fatalf("lzwDecodePlane: %v", err)
	}
	if !bytes.Equal(decoded, plane) {
		t.Fatalf("round trip = %q, want %q", decoded, plane)
	}

	// The textbook walk-through emits the 9 literal bytes before any
	// repetition is found, then progressively longer dictionary
	// matches for the remaining "TOBEORTOBEORNOT" tail.
	if len(codes) >= len(plane) {
		t.Errorf("expected dictionary compression to shorten the code count: got %d codes for %d bytes", len(codes), len(plane))
	}
	for _, c := range codes[:9] {
		if c > 255 {
			t.Errorf("expected the first 9 codes to be literal bytes, got %d", c)
		}
	}
	if codes[9] < 256 {
		t.Errorf("expected the 10th code to reference a dictionary entry, got %d", codes[9])
	}
}

func TestLZWKwKwKCase(t *testing.T) {
	// "ABABAB..." repeatedly forces the decoder's current-code ==
	// next-free-slot branch.
	plane := bytes.Repeat([]byte("AB"), 50)
	data, err := LZW{}.Compress(len(plane), 1, 1, [][]byte{plane}, 0)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	_, _, _, planes, err := LZW{}.Decompress(data)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(planes[0], plane) {
		t.Error("round trip mismatch for repeating pattern")
	}
}

func TestLZWDictionaryFillsWithoutReset(t *testing.T) {
	// Enough distinct short sequences to exhaust the 4096-entry table;
	// growth should simply stop, not reset or error.
	plane := make([]byte, 20000)
	seed := uint32(1)
	for i := range plane {
		seed = seed*1664525 + 1013904223
		plane[i] = byte(seed >> 24)
	}
	data, err := LZW{}.Compress(len(plane), 1, 1, [][]byte{plane}, 0)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	_, _, _, planes, err := LZW{}.Decompress(data)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(planes[0], plane) {
		t.Error("round trip mismatch once dictionary saturates")
	}
}

func TestLZWMalformedBitCount(t *testing.T) {
	cw := containerFor(t, "LZW ", 1, 1, 1)
	cw.WriteUint64(13) // not a multiple of 12
	cw.WriteUint32(0)
	if _, _, _, _, err := (LZW{}).Decompress(cw.Bytes()); err != ErrMalformedStream {
		t.Errorf("err = %v, want ErrMalformedStream", err)
	}
}

func TestLZWBadMagic(t *testing.T) {
	data, _ := LZW{}.Compress(1, 1, 1, [][]byte{{1}}, 0)
	data[3] = 'X'
	if _, _, _, _, err := (LZW{}).Decompress(data); err != ErrBadMagic {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}
