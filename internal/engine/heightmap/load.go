package heightmap

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Load reads a heightmap, choosing the decoder by file extension.
func Load(path string) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm", ".pgm", ".pnm":
		return LoadPPM(path)
	case ".dds":
		return LoadDDS(path)
	case ".png", ".tif", ".tiff", ".bmp":
		return LoadImage(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// LoadImage decodes PNG, TIFF or BMP. 16-bit images keep their precision.
func LoadImage(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return FromImage(img)
}

// FromImage converts the first channel of img into a grid.
func FromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	if err := checkDimensions(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	g := NewGrid(b.Dx(), b.Dy())
	switch m := img.(type) {
	case *image.Gray:
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				g.Set(x, y, float32(m.GrayAt(b.Min.X+x, b.Min.Y+y).Y)/0xff)
			}
		}
	case *image.Gray16:
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				g.Set(x, y, float32(m.Gray16At(b.Min.X+x, b.Min.Y+y).Y)/0xffff)
			}
		}
	default:
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				g.Set(x, y, float32(r)/0xffff)
			}
		}
	}
	return g, nil
}
