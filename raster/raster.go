// Package raster converts between an interleaved row-major image buffer
// and the per-channel planar layout the codec engines operate on.
package raster

import "github.com/pkg/errors"

// ErrUnsupportedChannelCount is returned when a raster's channel count
// is not one of the values this module understands (1, 3, or 4 on the
// way in; 1 or 3 once alpha has been dropped).
var ErrUnsupportedChannelCount = errors.New("raster: unsupported channel count")

// Image is a rectangular raster of 8-bit samples in interleaved
// row-major order: row 0 first, pixel 0 of each row first, channels
// 0..C-1 contiguous within a pixel. Color channels are ordered BGR.
type Image struct {
	W, H int
	C    int
	Pix  []byte // len == W*H*C
}

// Planar is the per-channel decomposition of an Image: Planes[k] holds
// channel k's samples in row-major order, Planes[k][y*W+x] being the
// sample at (x, y).
type Planar struct {
	W, H int
	C    int
	Planes [][]byte // len(Planes) == C, len(Planes[k]) == W*H
}

// FromImage decomposes img into its channel planes. A 4-channel
// (BGRA) image is first reduced to 3 channels by dropping alpha, since
// this module never preserves alpha across the codec boundary. Any
// other channel count fails with ErrUnsupportedChannelCount.
func FromImage(img Image) (*Planar, error) {
	c := img.C
	pix := img.Pix
	if c == 4 {
		pix = dropAlpha(img.Pix, img.W, img.H)
		c = 3
	}
	if c != 1 && c != 3 {
		return nil, errors.Wrapf(ErrUnsupportedChannelCount, "C=%d", img.C)
	}
	if len(pix) != img.W*img.H*c {
		return nil, errors.Wrap(ErrUnsupportedChannelCount, "raster: pixel buffer size does not match W*H*C")
	}

	n := img.W * img.H
	planes := make([][]byte, c)
	for k := range planes {
		planes[k] = make([]byte, n)
	}
	for i := 0; i < n; i++ {
		base := i * c
		for k := 0; k < c; k++ {
			planes[k][i] = pix[base+k]
		}
	}
	return &Planar{W: img.W, H: img.H, C: c, Planes: planes}, nil
}

// dropAlpha converts a BGRA interleaved buffer to BGR by discarding
// every fourth byte.
func dropAlpha(pix []byte, w, h int) []byte {
	n := w * h
	out := make([]byte, n*3)
	for i := 0; i < n; i++ {
		copy(out[i*3:i*3+3], pix[i*4:i*4+3])
	}
	return out
}

// ToImage reassembles a Planar back into an interleaved Image.
func (p *Planar) ToImage() Image {
	n := p.W * p.H
	pix := make([]byte, n*p.C)
	for i := 0; i < n; i++ {
		base := i * p.C
		for k := 0; k < p.C; k++ {
			pix[base+k] = p.Planes[k][i]
		}
	}
	return Image{W: p.W, H: p.H, C: p.C, Pix: pix}
}

// Validate checks the PlanarImage invariant from §3: len(Planes) == C
// and every plane has length W*H.
func (p *Planar) Validate() error {
	if len(p.Planes) != p.C {
		return errors.Wrap(ErrUnsupportedChannelCount, "raster: plane count does not match C")
	}
	want := p.W * p.H
	for k, plane := range p.Planes {
		if len(plane) != want {
			return errors.Wrapf(ErrUnsupportedChannelCount, "raster: plane %d has length %d, want %d", k, len(plane), want)
		}
	}
	return nil
}

// ToGray converts a raster to a single luminance plane via the
// BT.601-like BGR weighting used by the DCT codec. If img is already
// 1-channel, its plane is returned unchanged. Any other channel count
// fails with ErrUnsupportedChannelCount.
func ToGray(img Image) ([]byte, error) {
	switch img.C {
	case 1:
		out := make([]byte, len(img.Pix))
		copy(out, img.Pix)
		return out, nil
	case 3, 4:
		p, err := FromImage(img)
		if err != nil {
			return nil, err
		}
		n := p.W * p.H
		gray := make([]byte, n)
		b, g, r := p.Planes[0], p.Planes[1], p.Planes[2]
		for i := 0; i < n; i++ {
			// BT.601-like luma weighting over BGR samples.
			y := 0.114*float64(b[i]) + 0.587*float64(g[i]) + 0.299*float64(r[i])
			gray[i] = clamp255(y)
		}
		return gray, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedChannelCount, "C=%d", img.C)
	}
}

func clamp255(v float64) byte {
	iv := int(v + 0.5)
	if iv < 0 {
		return 0
	}
	if iv > 255 {
		return 255
	}
	return byte(iv)
}
