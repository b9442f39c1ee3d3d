// Package heightfield turns a scalar height function over an integer lattice
// into a renderable triangle mesh.
//
// Heights are the z axis of the generated mesh (z-up). Normals are estimated
// from a 3x3 neighbourhood, so the sampler is queried one sample beyond the
// patch on every side. Out-of-range handling belongs to the sampler.
package heightfield

import "github.com/go-gl/mathgl/mgl32"

// SampleFunc returns the height at lattice coordinate (x, y).
// It must accept any integer coordinate; see heightmap.Clamp and heightmap.Wrap.
type SampleFunc func(x, y int) float32

// Point is an integer lattice coordinate.
type Point struct {
	X, Y int
}

// Size is a patch size in samples.
type Size struct {
	W, H int
}

// Valid reports whether the size produces at least one cell.
func (s Size) Valid() bool {
	return s.W >= 2 && s.H >= 2
}

// Cells returns the number of lattice cells (two triangles each).
func (s Size) Cells() int {
	if !s.Valid() {
		return 0
	}
	return (s.W - 1) * (s.H - 1)
}

// IndexCount returns the triangle-list index count for the size.
func (s Size) IndexCount() int {
	return 6 * s.Cells()
}

// Patch describes one rectangular region of the lattice.
type Patch struct {
	Origin   Point
	Size     Size
	WorldMin mgl32.Vec2
	WorldMax mgl32.Vec2
	Sample   SampleFunc
}
