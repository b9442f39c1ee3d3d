package heightfield

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flat(x, y int) float32 { return 0 }

func waves(x, y int) float32 {
	return 0.6*float32(math.Sin(0.5*float64(x))+math.Sin(0.5*float64(y))) - 2
}

func patch(w, h int, f SampleFunc) Patch {
	return Patch{
		Size:     Size{W: w, H: h},
		WorldMin: mgl32.Vec2{-1, -1},
		WorldMax: mgl32.Vec2{1, 1},
		Sample:   f,
	}
}

func TestBuild_FlatScenario(t *testing.T) {
	b := NewBuilder()
	m := b.Build(Patch{
		Origin:   Point{0, 0},
		Size:     Size{3, 3},
		WorldMin: mgl32.Vec2{-1, -1},
		WorldMax: mgl32.Vec2{1, 1},
		Sample:   flat,
	})

	require.Len(t, m.Vertices, 9)
	require.Len(t, m.Indices, 24)
	assert.Equal(t, 8, m.TriangleCount())

	for i, v := range m.Vertices {
		assert.Equal(t, float32(0), v.Position[2], "vertex %d height", i)
		assert.InDelta(t, 0, v.Normal[0], 1e-6)
		assert.InDelta(t, 0, v.Normal[1], 1e-6)
		assert.InDelta(t, 1, v.Normal[2], 1e-6)
	}

	// row-major, y outer
	assert.Equal(t, mgl32.Vec3{-1, -1, 0}, m.Vertices[0].Position)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, m.Vertices[1].Position)
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, m.Vertices[3].Position)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, m.Vertices[8].Position)
	assert.Equal(t, mgl32.Vec2{0.5, 0}, m.Vertices[1].TexCoord)
	assert.Equal(t, mgl32.Vec2{1, 1}, m.Vertices[8].TexCoord)
}

func TestBuild_Counts(t *testing.T) {
	b := NewBuilder()
	sizes := []Size{{2, 2}, {3, 7}, {8, 2}, {16, 16}, {33, 17}}
	for _, s := range sizes {
		m := b.Build(patch(s.W, s.H, waves))
		assert.Len(t, m.Vertices, s.W*s.H, "size %v", s)
		assert.Len(t, m.Indices, 6*(s.W-1)*(s.H-1), "size %v", s)
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Vertices) {
				t.Fatalf("size %v: index %d out of range", s, idx)
			}
		}
	}
}

func TestBuild_Degenerate(t *testing.T) {
	b := NewBuilder()
	for _, s := range []Size{{0, 0}, {1, 5}, {5, 1}, {-3, 4}} {
		m := b.Build(patch(s.W, s.H, flat))
		assert.Empty(t, m.Vertices, "size %v", s)
		assert.Empty(t, m.Indices, "size %v", s)
	}
	assert.Zero(t, b.CachedSizes())

	m := b.Build(patch(4, 4, nil))
	assert.True(t, m.Empty())
}

func TestBuild_SharesIndexBuffer(t *testing.T) {
	b := NewBuilder()
	m1 := b.Build(patch(5, 4, flat))
	m2 := b.Build(patch(5, 4, waves))

	require.NotEmpty(t, m1.Indices)
	assert.Same(t, &m1.Indices[0], &m2.Indices[0], "equal sizes must share one index slice")
	assert.Equal(t, 1, b.CachedSizes())
	assert.NotEqual(t, m1.Vertices, m2.Vertices)

	m3 := b.Build(patch(4, 5, flat))
	assert.NotSame(t, &m1.Indices[0], &m3.Indices[0])
	assert.Equal(t, 2, b.CachedSizes())
}

func TestBuild_UnitNormals(t *testing.T) {
	b := NewBuilder()
	fields := map[string]SampleFunc{
		"waves": waves,
		"steep": func(x, y int) float32 { return float32(x*x) - 3*float32(y) },
		"spike": func(x, y int) float32 {
			if x == 3 && y == 3 {
				return 50
			}
			return 0
		},
	}
	for name, f := range fields {
		m := b.Build(patch(9, 7, f))
		for i, v := range m.Vertices {
			l := v.Normal.Len()
			if math.Abs(float64(l)-1) > 1e-5 {
				t.Errorf("%s: vertex %d normal length %f", name, i, l)
			}
			if v.Normal[2] < 0 {
				t.Errorf("%s: vertex %d normal points down: %v", name, i, v.Normal)
			}
		}
	}
}

func TestBuild_SlopeNormal(t *testing.T) {
	// height rises by one unit per lattice step along x, spacing is one unit
	m := NewBuilder().Build(Patch{
		Size:     Size{4, 4},
		WorldMax: mgl32.Vec2{3, 3},
		Sample:   func(x, y int) float32 { return float32(x) },
	})
	s := float32(1 / math.Sqrt2)
	for _, v := range m.Vertices {
		assert.InDelta(t, -s, v.Normal[0], 1e-5)
		assert.InDelta(t, 0, v.Normal[1], 1e-5)
		assert.InDelta(t, s, v.Normal[2], 1e-5)
	}
}

func TestBuild_FlippedSpanKeepsNormalsUp(t *testing.T) {
	m := NewBuilder().Build(Patch{
		Size:     Size{4, 4},
		WorldMin: mgl32.Vec2{3, 0},
		WorldMax: mgl32.Vec2{0, 3},
		Sample:   func(x, y int) float32 { return float32(x) },
	})
	// lattice x runs towards -x in world space, so the surface rises towards -x
	for _, v := range m.Vertices {
		assert.Greater(t, v.Normal[0], float32(0))
		assert.Greater(t, v.Normal[2], float32(0))
	}
}

func TestBuild_QueriesOnePaddingRing(t *testing.T) {
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	record := func(x, y int) float32 {
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
		return 0
	}

	NewBuilder().Build(Patch{
		Origin:   Point{2, 3},
		Size:     Size{4, 5},
		WorldMax: mgl32.Vec2{1, 1},
		Sample:   record,
	})

	assert.Equal(t, 1, minX)
	assert.Equal(t, 6, maxX)
	assert.Equal(t, 2, minY)
	assert.Equal(t, 8, maxY)
}

func TestBuild_UsesOrigin(t *testing.T) {
	f := func(x, y int) float32 { return float32(10*y + x) }
	m := NewBuilder().Build(Patch{
		Origin:   Point{5, 7},
		Size:     Size{2, 2},
		WorldMax: mgl32.Vec2{1, 1},
		Sample:   f,
	})
	assert.Equal(t, float32(75), m.Vertices[0].Position[2])
	assert.Equal(t, float32(76), m.Vertices[1].Position[2])
	assert.Equal(t, float32(85), m.Vertices[2].Position[2])
}

func TestBuild_CounterClockwiseWinding(t *testing.T) {
	m := NewBuilder().Build(patch(6, 5, flat))
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]].Position
		b := m.Vertices[m.Indices[i+1]].Position
		c := m.Vertices[m.Indices[i+2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		if n[2] <= 0 {
			t.Errorf("triangle %d is not counter-clockwise from +z: %v %v %v", i/3, a, b, c)
		}
	}
}

func TestBuildAll(t *testing.T) {
	b := NewBuilder()
	patches := make([]Patch, 8)
	for i := range patches {
		p := patch(6, 6, waves)
		p.Origin = Point{X: i * 5}
		patches[i] = p
	}

	meshes, err := b.BuildAll(context.Background(), patches)
	require.NoError(t, err)
	require.Len(t, meshes, len(patches))

	for i, m := range meshes {
		assert.Same(t, &meshes[0].Indices[0], &m.Indices[0])
		want := b.Build(patches[i])
		assert.Equal(t, want.Vertices, m.Vertices, "patch %d out of order", i)
	}
	assert.Equal(t, 1, b.CachedSizes())
}

func TestBuildAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder().BuildAll(ctx, []Patch{patch(3, 3, flat)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPackageBuild(t *testing.T) {
	m := Build(patch(3, 3, flat))
	assert.Len(t, m.Vertices, 9)
}
