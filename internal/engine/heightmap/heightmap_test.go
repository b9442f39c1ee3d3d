package heightmap

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestDecodePPM_P5(t *testing.T) {
	data := append([]byte("P5\n# made by hand\n3 2\n255\n"), 0, 51, 255, 102, 153, 204)
	g, err := DecodePPM(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 3, g.W)
	assert.Equal(t, 2, g.H)
	assert.InDelta(t, 0.2, g.At(1, 0), 1e-6)
	assert.InDelta(t, 1.0, g.At(2, 0), 1e-6)
	assert.InDelta(t, 0.8, g.At(2, 1), 1e-6)
}

func TestDecodePPM_P6Sixteen(t *testing.T) {
	// 2x1 pixmap, maxval 65535, big-endian samples; only red matters.
	data := append([]byte("P6 2 1 65535\n"),
		0x80, 0x00, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0x00, 0x00, 0x00, 0x00,
	)
	g, err := DecodePPM(bytes.NewReader(data))
	require.NoError(t, err)

	assert.InDelta(t, float32(0x8000)/0xffff, g.At(0, 0), 1e-6)
	assert.InDelta(t, 1.0, g.At(1, 0), 1e-6)
}

func TestDecodePPM_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"ascii pixmap", "P3 1 1 255\n0 0 0"},
		{"missing fields", "P5 2"},
		{"zero width", "P5 0 2 255\n"},
		{"bad maxval", "P5 1 1 70000\n\x00"},
		{"garbage", "P5 x 1 255\n"},
		{"truncated raster", "P5 2 2 255\n\x00\x01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePPM(bytes.NewReader([]byte(tt.data)))
			assert.ErrorIs(t, err, ErrInvalidPPM)
		})
	}
}

// ddsFile assembles a DDS header with the given pixel format followed by body.
func ddsFile(w, h int, flags uint32, fourCC string, bitCount, rmask uint32, body ...[]byte) []byte {
	hdr := make([]byte, 4+ddsHeaderSize)
	copy(hdr, ddsMagic)
	le := binary.LittleEndian
	le.PutUint32(hdr[4:], ddsHeaderSize)
	le.PutUint32(hdr[4+8:], uint32(h))
	le.PutUint32(hdr[4+12:], uint32(w))
	pf := hdr[4+72:]
	le.PutUint32(pf[0:], 32)
	le.PutUint32(pf[4:], flags)
	copy(pf[8:12], fourCC)
	le.PutUint32(pf[12:], bitCount)
	le.PutUint32(pf[16:], rmask)
	for _, b := range body {
		hdr = append(hdr, b...)
	}
	return hdr
}

func TestDecodeDDS_Luminance8(t *testing.T) {
	data := ddsFile(2, 2, ddpfLuminance, "", 8, 0xff, []byte{0, 255, 51, 102})
	g, err := DecodeDDS(data)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, g.At(1, 0), 1e-6)
	assert.InDelta(t, 0.4, g.At(1, 1), 1e-6)
}

func TestDecodeDDS_Luminance16(t *testing.T) {
	data := ddsFile(1, 1, ddpfLuminance, "", 16, 0xffff, []byte{0x00, 0x80})
	g, err := DecodeDDS(data)
	require.NoError(t, err)
	assert.InDelta(t, float32(0x8000)/0xffff, g.At(0, 0), 1e-6)
}

func TestDecodeDDS_RGBAUsesRed(t *testing.T) {
	// BGRA byte order in memory, red mask 0x00ff0000
	data := ddsFile(1, 1, ddpfRGB|ddpfAlphaPixels, "", 32, 0x00ff0000, []byte{10, 20, 204, 255})
	g, err := DecodeDDS(data)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, g.At(0, 0), 1e-6)
}

func TestDecodeDDS_BC1(t *testing.T) {
	block := []byte{
		0x00, 0xf8, // c0: pure red
		0x00, 0x00, // c1: black
		0xe4, 0, 0, 0, // texels 0..3 use indices 0,1,2,3
	}
	g, err := DecodeDDS(ddsFile(4, 4, ddpfFourCC, "DXT1", 0, 0, block))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, g.At(0, 0), 1e-6)
	assert.InDelta(t, 0.0, g.At(1, 0), 1e-6)
	assert.InDelta(t, 2.0/3, g.At(2, 0), 1e-6)
	assert.InDelta(t, 1.0/3, g.At(3, 0), 1e-6)
	assert.InDelta(t, 1.0, g.At(3, 3), 1e-6)
}

func TestDecodeDDS_BC4(t *testing.T) {
	block := []byte{255, 0, 0x11, 0, 0, 0, 0, 0}
	g, err := DecodeDDS(ddsFile(4, 4, ddpfFourCC, "ATI1", 0, 0, block))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, g.At(0, 0), 1e-6)
	assert.InDelta(t, 6.0/7, g.At(1, 0), 1e-6)
	assert.InDelta(t, 1.0, g.At(2, 0), 1e-6)
}

func TestDecodeDDS_PartialBlocks(t *testing.T) {
	// 5x5 needs 2x2 blocks; every texel uses r0.
	block := []byte{128, 0, 0, 0, 0, 0, 0, 0}
	blocks := bytes.Repeat(block, 4)
	g, err := DecodeDDS(ddsFile(5, 5, ddpfFourCC, "BC4U", 0, 0, blocks))
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, g.At(4, 4), 1e-6)
}

func TestDecodeDDS_DX10(t *testing.T) {
	dx10 := make([]byte, ddsDX10Size)
	binary.LittleEndian.PutUint32(dx10, dxgiR16Unorm)
	g, err := DecodeDDS(ddsFile(1, 1, ddpfFourCC, "DX10", 0, 0, dx10, []byte{0xff, 0xff}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, g.At(0, 0), 1e-6)
}

func TestDecodeDDS_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", []byte("DDS "), ErrInvalidDDS},
		{"bad magic", append([]byte("XXXX"), make([]byte, ddsHeaderSize)...), ErrInvalidDDS},
		{"truncated pixels", ddsFile(4, 4, ddpfLuminance, "", 8, 0xff, []byte{1, 2}), ErrInvalidDDS},
		{"truncated blocks", ddsFile(8, 8, ddpfFourCC, "DXT1", 0, 0, make([]byte, 8)), ErrInvalidDDS},
		{"zero size", ddsFile(0, 4, ddpfLuminance, "", 8, 0xff), ErrInvalidDDS},
		{"dxt5", ddsFile(4, 4, ddpfFourCC, "DXT5", 0, 0, make([]byte, 16)), ErrUnsupportedFormat},
		{"odd bit count", ddsFile(1, 1, ddpfRGB, "", 12, 0xfff, make([]byte, 2)), ErrUnsupportedFormat},
		{"no format flags", ddsFile(1, 1, 0, "", 8, 0xff, []byte{1}), ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDDS(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_Dispatch(t *testing.T) {
	dir := t.TempDir()

	gray16 := image.NewGray16(image.Rect(0, 0, 2, 2))
	gray16.SetGray16(1, 1, color.Gray16{Y: 0x8000})
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, gray16))
	pngPath := filepath.Join(dir, "h.png")
	require.NoError(t, os.WriteFile(pngPath, pngBuf.Bytes(), 0o644))

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(0, 1, color.Gray{Y: 255})
	var tiffBuf bytes.Buffer
	require.NoError(t, tiff.Encode(&tiffBuf, gray, nil))
	tiffPath := filepath.Join(dir, "h.TIF")
	require.NoError(t, os.WriteFile(tiffPath, tiffBuf.Bytes(), 0o644))

	ppmPath := filepath.Join(dir, "h.pgm")
	require.NoError(t, os.WriteFile(ppmPath, append([]byte("P5 1 1 255\n"), 255), 0o644))

	g, err := Load(pngPath)
	require.NoError(t, err)
	assert.InDelta(t, float32(0x8000)/0xffff, g.At(1, 1), 1e-6)

	g, err = Load(tiffPath)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, g.At(0, 1), 1e-6)

	g, err = Load(ppmPath)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, g.At(0, 0), 1e-6)

	_, err = Load(filepath.Join(dir, "h.raw"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.dds"))
	assert.Error(t, err)
}

func TestSamplers(t *testing.T) {
	g := NewGrid(3, 2)
	for i := range g.Heights {
		g.Heights[i] = float32(i)
	}

	clamp := g.Clamp()
	assert.Equal(t, float32(0), clamp(-1, -1))
	assert.Equal(t, float32(5), clamp(7, 9))
	assert.Equal(t, float32(3), clamp(-4, 1))

	wrap := g.Wrap()
	assert.Equal(t, float32(5), wrap(-1, -1))
	assert.Equal(t, float32(1), wrap(4, 2))

	scaled := Scaled(clamp, 2, -1)
	assert.Equal(t, float32(9), scaled(2, 1))

	shifted := Shifted(clamp, 1, 1)
	assert.Equal(t, float32(4), shifted(0, 0))

	assert.Equal(t, 3, g.Size().W)
}
