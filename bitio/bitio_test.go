package bitio

import (
	"bytes"
	"testing"
)

func TestWriteBitRoundTrip(t *testing.T) {
	bits := []int{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, b := range bits {
		if err := w.WriteBit(b); err != nil {
			t.Fatalf("WriteBit: %v", err)
		}
	}
	if got := w.TotalBitsWritten(); got != uint64(len(bits)) {
		t.Errorf("TotalBitsWritten = %d, want %d", got, len(bits))
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for i, want := range bits {
		got, ok := r.ReadBit()
		if !ok {
			t.Fatalf("ReadBit %d: unexpected end of stream", i)
		}
		if got != want {
			t.Errorf("bit %d = %d, want %d", i, got, want)
		}
	}
}

func TestWriteBitsMSBFirst(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	// 12-bit code 0xABC = 1010 1011 1100
	if err := w.WriteBits(0xABC, 12); err != nil {
		t.Fatalf("WriteBits: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got, ok := r.ReadBits(12)
	if !ok {
		t.Fatal("ReadBits: unexpected end of stream")
	}
	if got != 0xABC {
		t.Errorf("ReadBits = %#x, want %#x", got, 0xABC)
	}
}

func TestFlushIdempotent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBit(1); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	lenAfterFirst := buf.Len()
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != lenAfterFirst {
		t.Errorf("second Flush emitted bytes: %d -> %d", lenAfterFirst, buf.Len())
	}
}

func TestFlushPadsLeftAligned(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	// Three bits: 1,0,1 should flush to 0b10100000 = 0xA0
	for _, b := range []int{1, 0, 1} {
		if err := w.WriteBit(b); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := buf.Bytes()[0]; got != 0xA0 {
		t.Errorf("flushed byte = %#02x, want %#02x", got, 0xA0)
	}
}

func TestReadBitEndOfStream(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if _, ok := r.ReadBit(); ok {
		t.Error("ReadBit on empty source should report end of stream")
	}
}

func TestReadBitsPartialAtEOF(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.WriteBits(0x5, 4)
	_ = w.Flush()

	r := NewReader(bytes.NewReader(buf.Bytes()))
	// Consume the 4 real bits plus the 4 padding bits, then ask for more.
	if _, ok := r.ReadBits(8); !ok {
		t.Fatal("expected 8 bits (4 data + 4 pad) to be available")
	}
	if _, ok := r.ReadBit(); ok {
		t.Error("expected end of stream after consuming the single flushed byte")
	}
}

func TestLongSequenceRoundTrip(t *testing.T) {
	const n = 997 // deliberately not a multiple of 8
	bits := make([]int, n)
	seed := uint32(12345)
	for i := range bits {
		seed = seed*1664525 + 1013904223
		bits[i] = int((seed >> 30) & 1)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, b := range bits {
		_ = w.WriteBit(b)
	}
	_ = w.Flush()

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for i, want := range bits {
		got, ok := r.ReadBit()
		if !ok {
			t.Fatalf("bit %d: unexpected end of stream", i)
		}
		if got != want {
			t.Fatalf("bit %d = %d, want %d", i, got, want)
		}
	}
}
