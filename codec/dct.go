package codec

import (
	"math"

	cio "github.com/basaltimg/rastercodec/container"
	"github.com/basaltimg/rastercodec/raster"
	"gonum.org/v1/gonum/mat"
)

// dctBlockSize is the side length of a DCT block; the codec only
// operates in units of 8x8 blocks.
const dctBlockSize = 8

// dctBasis is the separable 8x8 DCT-II basis matrix: row u holds
// alpha(u)*cos((2x+1)u*pi/16) for x in 0..7. Forward and inverse
// transforms both reuse it (A*B*A^T forward, A^T*F*A inverse), so it
// is computed once at package init rather than per block.
var dctBasis = buildDCTBasis()

func buildDCTBasis() *mat.Dense {
	a := mat.NewDense(dctBlockSize, dctBlockSize, nil)
	for u := 0; u < dctBlockSize; u++ {
		alpha := math.Sqrt(2.0 / float64(dctBlockSize))
		if u == 0 {
			alpha = math.Sqrt(1.0 / float64(dctBlockSize))
		}
		for x := 0; x < dctBlockSize; x++ {
			theta := (2*float64(x) + 1) * float64(u) * math.Pi / (2 * float64(dctBlockSize))
			a.Set(u, x, alpha*math.Cos(theta))
		}
	}
	return a
}

// dctLumaBase is the standard JPEG luminance quantization base table.
var dctLumaBase = [dctBlockSize][dctBlockSize]float64{
	{16, 11, 10, 16, 24, 40, 51, 61},
	{12, 12, 14, 19, 26, 58, 60, 55},
	{14, 13, 16, 24, 40, 57, 69, 56},
	{14, 17, 22, 29, 51, 87, 80, 62},
	{18, 22, 37, 56, 68, 109, 103, 77},
	{24, 35, 55, 64, 81, 104, 113, 92},
	{49, 64, 78, 87, 103, 121, 120, 101},
	{72, 92, 95, 98, 112, 100, 103, 99},
}

// dctQuantMatrix derives the §3 quantization matrix for quality q
// (already clamped to [1,100] by the caller). Entries are floored at
// 1: at q=100 the raw scale factor is zero, and a zero divisor would
// make every coefficient undefined rather than merely high-fidelity.
func dctQuantMatrix(q int) [dctBlockSize][dctBlockSize]float64 {
	var scale float64
	if q < 50 {
		scale = 50.0 / float64(q)
	} else {
		scale = (200.0 - 2.0*float64(q)) / 100.0
	}
	var out [dctBlockSize][dctBlockSize]float64
	for i := 0; i < dctBlockSize; i++ {
		for j := 0; j < dctBlockSize; j++ {
			v := dctLumaBase[i][j] * scale
			if v < 1 {
				v = 1
			}
			out[i][j] = v
		}
	}
	return out
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

// DCT applies a JPEG-like lossy transform to a single luminance plane:
// 8x8 blocks, forward/inverse DCT-II via the separable basis matrix,
// and scalar quantization scaled by a quality factor.
type DCT struct{}

// Name implements Codec.
func (DCT) Name() string { return "dct" }

// Magic implements Codec.
func (DCT) Magic() string { return "DCT " }

// padPlane pads plane (w x h) up to multiples of 8 in each dimension
// by replicating the last row and column.
func padPlane(plane []byte, w, h int) ([]byte, int, int) {
	padW := ((w + dctBlockSize - 1) / dctBlockSize) * dctBlockSize
	padH := ((h + dctBlockSize - 1) / dctBlockSize) * dctBlockSize
	out := make([]byte, padW*padH)
	for y := 0; y < padH; y++ {
		sy := y
		if sy >= h {
			sy = h - 1
		}
		for x := 0; x < padW; x++ {
			sx := x
			if sx >= w {
				sx = w - 1
			}
			out[y*padW+x] = plane[sy*w+sx]
		}
	}
	return out, padW, padH
}

func cropPlane(padded []byte, padW, w, h int) []byte {
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:y*w+w], padded[y*padW:y*padW+w])
	}
	return out
}

// dctForwardBlock returns A*B*A^T, the separable forward transform of
// an 8x8 centered-sample block.
func dctForwardBlock(b *mat.Dense) *mat.Dense {
	var tmp, f mat.Dense
	tmp.Mul(dctBasis, b)
	f.Mul(&tmp, dctBasis.T())
	return &f
}

// dctInverseBlock returns A^T*F*A, the inverse of dctForwardBlock.
func dctInverseBlock(f *mat.Dense) *mat.Dense {
	var tmp, b mat.Dense
	tmp.Mul(dctBasis.T(), f)
	b.Mul(&tmp, dctBasis)
	return &b
}

func clampSample(v float64) byte {
	iv := int(math.Round(v))
	if iv < 0 {
		return 0
	}
	if iv > 255 {
		return 255
	}
	return byte(iv)
}

// dctEncodePlane pads plane to block multiples, transforms and
// quantizes every 8x8 block in raster order, and returns the
// concatenated coefficients plus the padded dimensions.
func dctEncodePlane(plane []byte, w, h, quality int) (coeffs []int16, padW, padH int) {
	padded, padW, padH := padPlane(plane, w, h)
	q := dctQuantMatrix(quality)
	blocksX, blocksY := padW/dctBlockSize, padH/dctBlockSize
	coeffs = make([]int16, 0, blocksX*blocksY*dctBlockSize*dctBlockSize)

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			blockData := make([]float64, dctBlockSize*dctBlockSize)
			for i := 0; i < dctBlockSize; i++ {
				for j := 0; j < dctBlockSize; j++ {
					px := padded[(by*dctBlockSize+i)*padW+bx*dctBlockSize+j]
					blockData[i*dctBlockSize+j] = float64(px) - 128
				}
			}
			b := mat.NewDense(dctBlockSize, dctBlockSize, blockData)
			f := dctForwardBlock(b)
			for i := 0; i < dctBlockSize; i++ {
				for j := 0; j < dctBlockSize; j++ {
					coeffs = append(coeffs, int16(math.Round(f.At(i, j)/q[i][j])))
				}
			}
		}
	}
	return coeffs, padW, padH
}

// dctDecodePlane dequantizes and inverse-transforms every block back
// into the padded sample grid.
func dctDecodePlane(coeffs []int16, padW, padH, quality int) []byte {
	q := dctQuantMatrix(quality)
	blocksX, blocksY := padW/dctBlockSize, padH/dctBlockSize
	out := make([]byte, padW*padH)

	idx := 0
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			fData := make([]float64, dctBlockSize*dctBlockSize)
			for i := 0; i < dctBlockSize; i++ {
				for j := 0; j < dctBlockSize; j++ {
					fData[i*dctBlockSize+j] = float64(coeffs[idx]) * q[i][j]
					idx++
				}
			}
			f := mat.NewDense(dctBlockSize, dctBlockSize, fData)
			b := dctInverseBlock(f)
			for i := 0; i < dctBlockSize; i++ {
				for j := 0; j < dctBlockSize; j++ {
					out[(by*dctBlockSize+i)*padW+bx*dctBlockSize+j] = clampSample(b.At(i, j) + 128)
				}
			}
		}
	}
	return out
}

// lumaFromPlanes reduces the input channels to the single luminance
// plane the DCT codec transforms. Three channels are folded via the
// same BT.601-like weighting PlanarImage uses elsewhere; any other
// channel count is unsupported.
func lumaFromPlanes(w, h, ch int, planes [][]byte) ([]byte, error) {
	switch ch {
	case 1:
		return planes[0], nil
	case 3:
		p := &raster.Planar{W: w, H: h, C: ch, Planes: planes}
		return raster.ToGray(p.ToImage())
	default:
		return nil, ErrUnsupportedChannelCount
	}
}

// Compress implements Codec.
func (c DCT) Compress(w, h, ch int, planes [][]byte, quality int) ([]byte, error) {
	gray, err := lumaFromPlanes(w, h, ch, planes)
	if err != nil {
		return nil, err
	}
	q := clampQuality(quality)
	coeffs, padW, padH := dctEncodePlane(gray, w, h, q)

	cw := cio.NewWriter(32 + len(coeffs)*2)
	cw.WriteMagic(c.Magic())
	cw.WriteUint32(uint32(w))
	cw.WriteUint32(uint32(h))
	cw.WriteUint8(1)
	cw.WritePad(3)
	cw.WriteUint8(uint8(q))
	cw.WritePad(3)
	cw.WriteUint32(uint32(padW))
	cw.WriteUint32(uint32(padH))
	for _, v := range coeffs {
		cw.WriteInt16(v)
	}
	return cw.Bytes(), nil
}

// Decompress implements Codec.
func (c DCT) Decompress(data []byte) (int, int, int, [][]byte, error) {
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
	if chB != 1 {
		return 0, 0, 0, nil, ErrUnsupportedChannelCount
	}
	if err := cr.Skip(3); err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	qB, err := cr.ReadUint8()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	if err := cr.Skip(3); err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	padW32, err := cr.ReadUint32()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	padH32, err := cr.ReadUint32()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}

	w, h := int(w32), int(h32)
	padW, padH := int(padW32), int(padH32)
	if padW%dctBlockSize != 0 || padH%dctBlockSize != 0 || padW < w || padH < h {
		return 0, 0, 0, nil, ErrMalformedStream
	}

	numCoeffs := (padW / dctBlockSize) * (padH / dctBlockSize) * dctBlockSize * dctBlockSize
	coeffs := make([]int16, numCoeffs)
	for i := range coeffs {
		v, err := cr.ReadInt16()
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		coeffs[i] = v
	}

	padded := dctDecodePlane(coeffs, padW, padH, int(qB))
	plane := cropPlane(padded, padW, w, h)
	return w, h, 1, [][]byte{plane}, nil
}
