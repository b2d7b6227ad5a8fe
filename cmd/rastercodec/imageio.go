package main

import (
	"image"
	"image/color"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"github.com/basaltimg/rastercodec/raster"
)

// loadBMP reads a BMP file and converts it to the BGR(A) interleaved
// layout raster.FromImage expects. Pixel I/O is an external
// collaborator to the core codec engines; this is its only boundary
// with them.
func loadBMP(path string) (raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return raster.Image{}, errors.Wrap(err, "rastercodec: open input image")
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		return raster.Image{}, errors.Wrap(err, "rastercodec: decode input image")
	}
	return toRasterImage(img), nil
}

// saveBMP writes a raster.Image back out as a BMP file.
func saveBMP(path string, img raster.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "rastercodec: create output image")
	}
	defer f.Close()

	if err := bmp.Encode(f, fromRasterImage(img)); err != nil {
		return errors.Wrap(err, "rastercodec: encode output image")
	}
	return nil
}

// toRasterImage converts a decoded image.Image into the module's BGR
// interleaved layout, preserving the source's grayscale-ness so
// single-channel inputs stay single-channel.
func toRasterImage(src image.Image) raster.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if _, ok := src.(*image.Gray); ok {
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, _, _, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				pix[y*w+x] = byte(r >> 8)
			}
		}
		return raster.Image{W: w, H: h, C: 1, Pix: pix}
	}

	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			base := (y*w + x) * 3
			pix[base+0] = byte(b >> 8)
			pix[base+1] = byte(g >> 8)
			pix[base+2] = byte(r >> 8)
		}
	}
	return raster.Image{W: w, H: h, C: 3, Pix: pix}
}

// fromRasterImage converts the module's BGR(A) interleaved layout
// back into a standard library image.Image suitable for bmp.Encode.
func fromRasterImage(img raster.Image) image.Image {
	if img.C == 1 {
		out := image.NewGray(image.Rect(0, 0, img.W, img.H))
		copy(out.Pix, img.Pix)
		return out
	}

	out := image.NewNRGBA(image.Rect(0, 0, img.W, img.H))
	n := img.W * img.H
	for i := 0; i < n; i++ {
		base := i * img.C
		b := img.Pix[base+0]
		g := img.Pix[base+1]
		r := img.Pix[base+2]
		var a byte = 255
		if img.C == 4 {
			a = img.Pix[base+3]
		}
		out.SetNRGBA(i%img.W, i/img.W, color.NRGBA{R: r, G: g, B: b, A: a})
	}
	return out
}
