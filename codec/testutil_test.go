package codec

import (
	"testing"

	"github.com/basaltimg/rastercodec/container"
)

// containerFor writes a minimal magic+W/H/C header, letting the
// caller append the codec-specific body that follows.
func containerFor(t *testing.T, magic string, w, h, c int) *container.Writer {
	t.Helper()
	cw := container.NewWriter(32)
	cw.WriteMagic(magic)
	cw.WriteUint32(uint32(w))
	cw.WriteUint32(uint32(h))
	cw.WriteUint8(uint8(c))
	cw.WritePad(3)
	return cw
}
