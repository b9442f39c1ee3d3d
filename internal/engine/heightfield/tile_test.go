package heightfield

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTile_EvenSplit(t *testing.T) {
	patches := Tile(Size{33, 33}, Point{2, 2}, mgl32.Vec2{-10, -10}, mgl32.Vec2{10, 10}, waves)
	require.Len(t, patches, 4)

	for _, p := range patches {
		assert.Equal(t, Size{17, 17}, p.Size)
	}
	assert.Equal(t, Point{0, 0}, patches[0].Origin)
	assert.Equal(t, Point{16, 0}, patches[1].Origin)
	assert.Equal(t, Point{0, 16}, patches[2].Origin)
	assert.Equal(t, mgl32.Vec2{0, 0}, patches[0].WorldMax)
	assert.Equal(t, mgl32.Vec2{0, -10}, patches[1].WorldMin)
	assert.Equal(t, mgl32.Vec2{10, 10}, patches[3].WorldMax)
}

func TestTile_SeamsMatch(t *testing.T) {
	b := NewBuilder()
	patches := Tile(Size{33, 33}, Point{2, 1}, mgl32.Vec2{-10, -10}, mgl32.Vec2{10, 10}, waves)
	require.Len(t, patches, 2)

	left := b.Build(patches[0])
	right := b.Build(patches[1])
	assert.Same(t, &left.Indices[0], &right.Indices[0])

	w := patches[0].Size.W
	for y := range patches[0].Size.H {
		a := left.Vertices[y*w+w-1]
		c := right.Vertices[y*w]
		for k := range 3 {
			assert.InDelta(t, a.Position[k], c.Position[k], 1e-5, "row %d position", y)
			assert.InDelta(t, a.Normal[k], c.Normal[k], 1e-5, "row %d normal", y)
		}
	}
}

func TestTile_Remainder(t *testing.T) {
	patches := Tile(Size{10, 4}, Point{2, 1}, mgl32.Vec2{0, 0}, mgl32.Vec2{9, 3}, flat)
	require.Len(t, patches, 2)
	assert.Equal(t, Size{5, 4}, patches[0].Size)
	assert.Equal(t, Size{6, 4}, patches[1].Size)
	assert.Equal(t, float32(9), patches[1].WorldMax[0])
}

func TestTile_Invalid(t *testing.T) {
	assert.Nil(t, Tile(Size{1, 4}, Point{1, 1}, mgl32.Vec2{}, mgl32.Vec2{1, 1}, flat))
	assert.Nil(t, Tile(Size{4, 4}, Point{0, 1}, mgl32.Vec2{}, mgl32.Vec2{1, 1}, flat))
}
