// Package mesh provides the shared vertex format and static mesh data loading.
package mesh

import "github.com/go-gl/mathgl/mgl32"

// Packed RGBA8 colors used as vertex color sentinels.
const (
	ColorWhite uint32 = 0xffffffff // generated geometry
	ColorGreen uint32 = 0xff00ff00 // loaded models
)

// Vertex is the fixed vertex format consumed by every pipeline.
// The vertex tags drive gpu.LayoutOf.
type Vertex struct {
	Position mgl32.Vec3 `vertex:"position"`
	Normal   mgl32.Vec3 `vertex:"normal"`
	TexCoord mgl32.Vec2 `vertex:"texcoord"`
	Color    uint32     `vertex:"color,normalized"`
}

// Data holds CPU-side mesh data ready for GPU upload.
// Index values always refer into Vertices.
type Data struct {
	Vertices []Vertex
	Indices  []uint32
}

// Empty reports whether the mesh has nothing to draw.
func (d *Data) Empty() bool {
	return d == nil || len(d.Indices) == 0
}

// TriangleCount returns the number of triangles described by Indices.
func (d *Data) TriangleCount() int {
	if d == nil {
		return 0
	}
	return len(d.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
func (d *Data) Bounds() (min, max mgl32.Vec3) {
	if d == nil || len(d.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	min = d.Vertices[0].Position
	max = min
	for _, v := range d.Vertices[1:] {
		for i := range 3 {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	return min, max
}
