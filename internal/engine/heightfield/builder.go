package heightfield

import (
	"context"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/pipo/internal/engine/mesh"
)

// Neighbour weights for the central differences: the axis-aligned row
// counts four times as much as each diagonal row.
const (
	axisWeight = 4
	diagWeight = 1
	weightSum  = axisWeight + 2*diagWeight
)

var up = mgl32.Vec3{0, 0, 1}

// Builder generates heightfield meshes and owns the shared index cache.
// A Builder is safe for concurrent use.
type Builder struct {
	mu      sync.Mutex
	indices map[Size][]uint32
}

// NewBuilder creates a builder with an empty index cache.
func NewBuilder() *Builder {
	return &Builder{indices: make(map[Size][]uint32)}
}

var defaultBuilder = NewBuilder()

// Build generates a mesh using the package-level builder.
func Build(p Patch) mesh.Data {
	return defaultBuilder.Build(p)
}

// Build generates the vertices of p and attaches the shared index list for p.Size.
// Patches smaller than 2x2 yield an empty mesh.
func (b *Builder) Build(p Patch) mesh.Data {
	if !p.Size.Valid() || p.Sample == nil {
		return mesh.Data{}
	}
	return mesh.Data{
		Vertices: buildVertices(p),
		Indices:  b.Indices(p.Size),
	}
}

// BuildAll builds every patch concurrently, preserving order.
// Cancellation is only observed between patches.
func (b *Builder) BuildAll(ctx context.Context, patches []Patch) ([]mesh.Data, error) {
	out := make([]mesh.Data, len(patches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range patches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = b.Build(patches[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Indices returns the cached triangulation for size, generating it on first use.
// The returned slice is shared and must not be modified.
func (b *Builder) Indices(size Size) []uint32 {
	if !size.Valid() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if idx, ok := b.indices[size]; ok {
		return idx
	}
	idx := Triangulate(size)
	b.indices[size] = idx
	return idx
}

// CachedSizes returns how many distinct sizes have been triangulated.
func (b *Builder) CachedSizes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.indices)
}

// Triangulate emits two triangles per cell, alternating the split diagonal
// by cell parity ((x^y)&1) to avoid directional ridging under lighting.
// Triangles are counter-clockwise seen from +z.
func Triangulate(size Size) []uint32 {
	if !size.Valid() {
		return nil
	}

	w := size.W
	idx := make([]uint32, 0, size.IndexCount())
	for y := range size.H - 1 {
		for x := range w - 1 {
			i0 := uint32(y*w + x)
			i1 := i0 + 1
			i2 := i0 + uint32(w)
			i3 := i1 + uint32(w)

			if (x^y)&1 == 0 {
				// diagonal i0-i3
				idx = append(idx, i0, i1, i3, i0, i3, i2)
			} else {
				// diagonal i1-i2
				idx = append(idx, i0, i1, i2, i1, i3, i2)
			}
		}
	}
	return idx
}

func buildVertices(p Patch) []mesh.Vertex {
	w, h := p.Size.W, p.Size.H
	ox, oy := p.Origin.X, p.Origin.Y
	span := p.WorldMax.Sub(p.WorldMin)

	// lattice spacing in world units
	sx := span[0] / float32(w-1)
	sy := span[1] / float32(h-1)

	verts := make([]mesh.Vertex, 0, w*h)
	for y := range h {
		v := float32(y) / float32(h-1)
		for x := range w {
			u := float32(x) / float32(w-1)
			lx, ly := ox+x, oy+y

			verts = append(verts, mesh.Vertex{
				Position: mgl32.Vec3{
					p.WorldMin[0] + span[0]*u,
					p.WorldMin[1] + span[1]*v,
					p.Sample(lx, ly),
				},
				Normal:   estimateNormal(p.Sample, lx, ly, sx, sy),
				TexCoord: mgl32.Vec2{u, v},
				Color:    mesh.ColorWhite,
			})
		}
	}
	return verts
}

// estimateNormal derives the surface normal at (x, y) from weighted central
// differences over the 3x3 neighbourhood.
func estimateNormal(f SampleFunc, x, y int, sx, sy float32) mgl32.Vec3 {
	hl, hr := f(x-1, y), f(x+1, y)
	hd, hu := f(x, y-1), f(x, y+1)
	hdl, hdr := f(x-1, y-1), f(x+1, y-1)
	hul, hur := f(x-1, y+1), f(x+1, y+1)

	// height change across two cells along each axis
	gx := (axisWeight*(hr-hl) + diagWeight*(hur-hul) + diagWeight*(hdr-hdl)) / weightSum
	gy := (axisWeight*(hu-hd) + diagWeight*(hur-hdr) + diagWeight*(hul-hdl)) / weightSum

	tx := mgl32.Vec3{2 * sx, 0, gx}
	ty := mgl32.Vec3{0, 2 * sy, gy}
	n := tx.Cross(ty)

	l := n.Len()
	if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return up
	}
	n = n.Mul(1 / l)
	if n[2] < 0 {
		n = n.Mul(-1)
	}
	return n
}
