// Package heightmap loads height images into a Grid and adapts it to the
// unbounded lattice sampler the heightfield builder consumes.
package heightmap

import (
	"errors"

	"github.com/Faultbox/pipo/internal/engine/heightfield"
)

// Sentinel errors returned by the loaders.
var (
	ErrInvalidPPM        = errors.New("invalid ppm")
	ErrInvalidDDS        = errors.New("invalid dds")
	ErrUnsupportedFormat = errors.New("unsupported heightmap format")
	errBadDimensions     = errors.New("heightmap dimensions out of range")
)

// maxDimension bounds width and height so a corrupt header cannot request
// an absurd allocation.
const maxDimension = 1 << 14

// Grid is a row-major grid of heights normalized to [0, 1].
type Grid struct {
	W, H    int
	Heights []float32
}

// NewGrid allocates a zeroed w x h grid.
func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, Heights: make([]float32, w*h)}
}

// Size returns the grid size as a heightfield size.
func (g *Grid) Size() heightfield.Size {
	return heightfield.Size{W: g.W, H: g.H}
}

// At returns the height at (x, y), which must be inside the grid.
func (g *Grid) At(x, y int) float32 {
	return g.Heights[y*g.W+x]
}

// Set stores the height at (x, y).
func (g *Grid) Set(x, y int, v float32) {
	g.Heights[y*g.W+x] = v
}

// Clamp samples the grid with coordinates clamped to the nearest edge, so
// the padding ring repeats the border samples.
func (g *Grid) Clamp() heightfield.SampleFunc {
	return func(x, y int) float32 {
		return g.At(clamp(x, g.W), clamp(y, g.H))
	}
}

// Wrap samples the grid as a torus.
func (g *Grid) Wrap() heightfield.SampleFunc {
	return func(x, y int) float32 {
		return g.At(wrap(x, g.W), wrap(y, g.H))
	}
}

// Scaled maps f's output through v*scale + offset.
func Scaled(f heightfield.SampleFunc, scale, offset float32) heightfield.SampleFunc {
	return func(x, y int) float32 {
		return f(x, y)*scale + offset
	}
}

// Shifted samples f at (x+dx, y+dy).
func Shifted(f heightfield.SampleFunc, dx, dy int) heightfield.SampleFunc {
	return func(x, y int) float32 {
		return f(x+dx, y+dy)
	}
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func checkDimensions(w, h int) error {
	if w <= 0 || h <= 0 || w > maxDimension || h > maxDimension {
		return errBadDimensions
	}
	return nil
}
