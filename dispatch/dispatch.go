// Package dispatch routes a codec name to its engine and owns the
// file I/O boundary: reading a container from disk, decoding it, and
// reassembling a raster, or decomposing a raster and writing the
// encoded container back out. It carries no format knowledge of its
// own.
package dispatch

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/basaltimg/rastercodec/codec"
	"github.com/basaltimg/rastercodec/raster"
)

// ErrUnknownCodec is returned when the requested name is outside the
// closed set {"huffman", "rle", "lzw", "dct"}.
var ErrUnknownCodec = errors.New("dispatch: unknown codec")

// DefaultDCTQuality is substituted when a caller passes 0 (meaning
// "unspecified") for DCT compression.
const DefaultDCTQuality = 75

// Registry maps a codec name to its engine.
type Registry map[string]codec.Codec

// NewRegistry returns the standard closed-set registry: the four
// codec engines keyed by their dispatcher-facing names.
func NewRegistry() Registry {
	return Registry{
		"huffman": codec.Huffman{},
		"rle":     codec.RLE{},
		"lzw":     codec.LZW{},
		"dct":     codec.DCT{},
	}
}

// Dispatcher is a pure routing layer: it selects a Codec by name and
// drives the file I/O around it, with no format knowledge of its own.
type Dispatcher struct {
	Registry Registry
}

// New returns a Dispatcher wired to the standard codec registry.
func New() *Dispatcher {
	return &Dispatcher{Registry: NewRegistry()}
}

// lookup resolves a codec name, wrapping ErrUnknownCodec with the
// offending name for caller-facing diagnostics.
func (d *Dispatcher) lookup(name string) (codec.Codec, error) {
	c, ok := d.Registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCodec, "%q", name)
	}
	return c, nil
}

// resolveQuality defaults an unspecified (zero) quality to
// DefaultDCTQuality and clamps the result to [1,100]. Codecs other
// than DCT ignore the value entirely.
func resolveQuality(quality int) int {
	if quality == 0 {
		quality = DefaultDCTQuality
	}
	if quality < 1 {
		return 1
	}
	if quality > 100 {
		return 100
	}
	return quality
}

// Compress decomposes img into channel planes, encodes them with the
// named codec, and writes the resulting container to outPath. quality
// only affects the DCT codec; pass 0 to take the default.
func (d *Dispatcher) Compress(codecName string, img raster.Image, outPath string, quality int) error {
	c, err := d.lookup(codecName)
	if err != nil {
		return err
	}
	planar, err := raster.FromImage(img)
	if err != nil {
		return err
	}
	if err := planar.Validate(); err != nil {
		return err
	}

	data, err := c.Compress(planar.W, planar.H, planar.C, planar.Planes, resolveQuality(quality))
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "dispatch: create output file")
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, "dispatch: write output file")
	}
	return nil
}

// Decompress reads the container at inPath, decodes it with the named
// codec, and reassembles the channel planes into a raster.
func (d *Dispatcher) Decompress(codecName string, inPath string) (raster.Image, error) {
	c, err := d.lookup(codecName)
	if err != nil {
		return raster.Image{}, err
	}

	f, err := os.Open(inPath)
	if err != nil {
		return raster.Image{}, errors.Wrap(err, "dispatch: open input file")
	}
	defer f.Close()
	data, err := readAll(f)
	if err != nil {
		return raster.Image{}, errors.Wrap(err, "dispatch: read input file")
	}

	w, h, ch, planes, err := c.Decompress(data)
	if err != nil {
		return raster.Image{}, err
	}
	planar := &raster.Planar{W: w, H: h, C: ch, Planes: planes}
	if err := planar.Validate(); err != nil {
		return raster.Image{}, err
	}
	return planar.ToImage(), nil
}

// defaultDispatcher backs the package-level Compress/Decompress
// convenience functions below.
var defaultDispatcher = New()

// Compress is a convenience wrapper around a default Dispatcher.
func Compress(codecName string, img raster.Image, outPath string, quality int) error {
	return defaultDispatcher.Compress(codecName, img, outPath, quality)
}

// Decompress is a convenience wrapper around a default Dispatcher.
func Decompress(codecName string, inPath string) (raster.Image, error) {
	return defaultDispatcher.Decompress(codecName, inPath)
}

// readAll drains f into memory. Containers are never streamed (see
// the module's Non-goals), so the whole file is read up front.
func readAll(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
