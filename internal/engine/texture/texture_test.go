package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

// tgaHeader builds an 18 byte header for a true-color image.
func tgaHeader(kind byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, 18)
	hdr[2] = kind
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGA_Uncompressed(t *testing.T) {
	// 2x1, bottom-up, BGRA
	data := append(tgaHeader(2, 2, 1, 32, 0),
		0, 0, 255, 255, // red
		255, 0, 0, 128, // blue, half alpha
	)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel 0 = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{0, 0, 255, 128}) {
		t.Errorf("pixel 1 = %v", got)
	}
}

func TestDecodeTGA_Orientation(t *testing.T) {
	// 1x2, 24 bpp: first stored pixel is white, second black.
	pixels := []byte{255, 255, 255, 0, 0, 0}

	bottomUp, err := DecodeTGA(append(tgaHeader(2, 1, 2, 24, 0), pixels...))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bottomUp.RGBAAt(0, 1).R != 255 {
		t.Error("bottom-up image: first row should land at the bottom")
	}

	topDown, err := DecodeTGA(append(tgaHeader(2, 1, 2, 24, 0x20), pixels...))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if topDown.RGBAAt(0, 0).R != 255 {
		t.Error("top-down image: first row should land at the top")
	}
}

func TestDecodeTGA_RLE(t *testing.T) {
	// 3x1 top-down: run of two green pixels, then one raw blue pixel.
	data := append(tgaHeader(10, 3, 1, 24, 0x20),
		0x81, 0, 255, 0,
		0x00, 255, 0, 0,
	)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []color.RGBA{{0, 255, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}
	for x, w := range want {
		if got := img.RGBAAt(x, 0); got != w {
			t.Errorf("pixel %d = %v, want %v", x, got, w)
		}
	}
}

func TestDecodeTGA_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(2, 1, 1, 24, 0); h[1] = 1; return h }()},
		{"grayscale type", tgaHeader(3, 1, 1, 8, 0)},
		{"16 bpp", tgaHeader(2, 1, 1, 16, 0)},
		{"empty", tgaHeader(2, 0, 1, 24, 0)},
		{"truncated pixels", append(tgaHeader(2, 2, 2, 24, 0), 1, 2, 3)},
		{"truncated rle", append(tgaHeader(10, 2, 1, 24, 0), 0x81)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			if !errors.Is(err, ErrInvalidTGA) {
				t.Errorf("err = %v, want ErrInvalidTGA", err)
			}
		})
	}
}

func TestDecode_Sniffed(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}
	src.SetRGBA(2, 1, color.RGBA{10, 20, 30, 255})

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, src); err != nil {
		t.Fatal(err)
	}

	for name, data := range map[string][]byte{".png": pngBuf.Bytes(), ".bmp": bmpBuf.Bytes()} {
		img, err := Decode(data, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
			t.Errorf("%s: bounds %v", name, img.Bounds())
		}
		if got := img.RGBAAt(2, 1); got != (color.RGBA{10, 20, 30, 255}) {
			t.Errorf("%s: pixel = %v", name, got)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tile.TGA")
	data := append(tgaHeader(2, 1, 1, 24, 0), 1, 2, 3)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{3, 2, 1, 255}) {
		t.Errorf("pixel = %v", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestToRGBA_OffsetOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.SetRGBA(6, 5, color.RGBA{1, 2, 3, 4})
	out := ToRGBA(src)
	if out.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if got := out.RGBAAt(1, 0); got != (color.RGBA{1, 2, 3, 4}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestBuiltins(t *testing.T) {
	w := White()
	for _, b := range w.Pix {
		if b != 0xff {
			t.Fatal("white texture has non-white byte")
		}
	}

	c := Checker()
	if c.RGBAAt(0, 0) != c.RGBAAt(1, 1) {
		t.Error("checker diagonal differs")
	}
	if c.RGBAAt(0, 0) == c.RGBAAt(1, 0) {
		t.Error("checker neighbours equal")
	}
	if len(c.Pix) != 2*2*4 {
		t.Errorf("checker size %d", len(c.Pix))
	}
}
