package codec

import "testing"

func TestDCTFlatBlockExactRoundTrip(t *testing.T) {
	plane := make([]byte, 64)
	for i := range plane {
		plane[i] = 128
	}
	data, err := DCT{}.Compress(8, 8, 1, [][]byte{plane}, 50)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	w, h, ch, planes, err := DCT{}.Decompress(data)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if w != 8 || h != 8 || ch != 1 {
		t.Fatalf("dims = %d,%d,%d, want 8,8,1", w, h, ch)
	}
	for i, v := range planes[0] {
		if v != 128 {
			t.Fatalf("planes[0][%d] = %d, want 128 (flat DC-only block, zero AC, zero quantization error)", i, v)
		}
	}
}

func TestDCTBoundedErrorRoundTrip(t *testing.T) {
	const w, h = 13, 11 // deliberately not a multiple of 8, to exercise padding
	plane := make([]byte, w*h)
	for i := range plane {
		plane[i] = byte((i*37 + 5) % 256)
	}

	prevMax := -1
	for _, q := range []int{10, 50, 90, 100} {
		data, err := DCT{}.Compress(w, h, 1, [][]byte{plane}, q)
		if err != nil {
			t.Fatalf("q=%d: Compress: %v", q, err)
		}
		gotW, gotH, ch, planes, err := DCT{}.Decompress(data)
		if err != nil {
			t.Fatalf("q=%d: Decompress: %v", q, err)
		}
		if gotW != w || gotH != h || ch != 1 {
			t.Fatalf("q=%d: dims = %d,%d,%d, want %d,%d,1", q, gotW, gotH, ch, w, h)
		}
		var maxDiff int
		for i, v := range planes[0] {
			diff := int(v) - int(plane[i])
			if diff < 0 {
				diff = -diff
			}
			if diff > maxDiff {
				maxDiff = diff
			}
		}
		// The error bound is non-increasing in quality: each higher
		// quality's max abs error must not exceed the previous one's.
		if prevMax >= 0 && maxDiff > prevMax {
			t.Errorf("q=%d: max abs error = %d, want <= %d (the max at the next lower quality)", q, maxDiff, prevMax)
		}
		prevMax = maxDiff
	}
}

func TestDCTQualityMonotonicError(t *testing.T) {
	const w, h = 16, 16
	plane := make([]byte, w*h)
	for i := range plane {
		plane[i] = byte((i * 53) % 256)
	}

	errAt := func(q int) int {
		data, err := DCT{}.Compress(w, h, 1, [][]byte{plane}, q)
		if err != nil {
			t.Fatalf("q=%d: Compress: %v", q, err)
		}
		_, _, _, planes, err := DCT{}.Decompress(data)
		if err != nil {
			t.Fatalf("q=%d: Decompress: %v", q, err)
		}
		var sum int
		for i, v := range planes[0] {
			diff := int(v) - int(plane[i])
			if diff < 0 {
				diff = -diff
			}
			sum += diff
		}
		return sum
	}

	lowQErr := errAt(5)
	highQErr := errAt(95)
	if highQErr > lowQErr {
		t.Errorf("total abs error at q=95 (%d) exceeds q=5 (%d); error should be non-increasing in quality", highQErr, lowQErr)
	}
}

func TestDCTThreeChannelConvertsToLuma(t *testing.T) {
	b := make([]byte, 64)
	g := make([]byte, 64)
	r := make([]byte, 64)
	for i := range b {
		b[i], g[i], r[i] = 10, 20, 30
	}
	data, err := DCT{}.Compress(8, 8, 3, [][]byte{b, g, r}, 50)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	_, _, ch, planes, err := DCT{}.Decompress(data)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if ch != 1 {
		t.Fatalf("ch = %d, want 1", ch)
	}
	want := int(clampSample(0.114*10 + 0.587*20 + 0.299*30))
	for i, v := range planes[0] {
		if diff := int(v) - want; diff < -1 || diff > 1 {
			t.Fatalf("planes[0][%d] = %d, want within 1 of %d (flat luma block)", i, v, want)
		}
	}
}

func TestDCTUnsupportedChannelCount(t *testing.T) {
	if _, err := (DCT{}).Compress(1, 1, 2, [][]byte{{1}, {2}}, 50); err != ErrUnsupportedChannelCount {
		t.Errorf("err = %v, want ErrUnsupportedChannelCount", err)
	}
}

func TestDCTBadMagic(t *testing.T) {
	data, _ := DCT{}.Compress(8, 8, 1, [][]byte{make([]byte, 64)}, 50)
	data[0] = 'X'
	if _, _, _, _, err := (DCT{}).Decompress(data); err != ErrBadMagic {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}
