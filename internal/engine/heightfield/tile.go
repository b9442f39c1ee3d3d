package heightfield

import "github.com/go-gl/mathgl/mgl32"

// Tile splits a lattice of total samples into tiles.X by tiles.Y patches.
// Neighbouring patches share their edge samples so seams line up in both
// position and normal. When the cell count does not divide evenly the last
// row and column absorb the remainder.
func Tile(total Size, tiles Point, worldMin, worldMax mgl32.Vec2, sample SampleFunc) []Patch {
	if !total.Valid() || tiles.X < 1 || tiles.Y < 1 {
		return nil
	}
	cellsX := total.W - 1
	cellsY := total.H - 1
	if tiles.X > cellsX {
		tiles.X = cellsX
	}
	if tiles.Y > cellsY {
		tiles.Y = cellsY
	}

	stepX := cellsX / tiles.X
	stepY := cellsY / tiles.Y
	span := worldMax.Sub(worldMin)

	patches := make([]Patch, 0, tiles.X*tiles.Y)
	for ty := range tiles.Y {
		y0 := ty * stepY
		y1 := y0 + stepY
		if ty == tiles.Y-1 {
			y1 = cellsY
		}
		for tx := range tiles.X {
			x0 := tx * stepX
			x1 := x0 + stepX
			if tx == tiles.X-1 {
				x1 = cellsX
			}
			patches = append(patches, Patch{
				Origin: Point{X: x0, Y: y0},
				Size:   Size{W: x1 - x0 + 1, H: y1 - y0 + 1},
				WorldMin: mgl32.Vec2{
					worldMin[0] + span[0]*float32(x0)/float32(cellsX),
					worldMin[1] + span[1]*float32(y0)/float32(cellsY),
				},
				WorldMax: mgl32.Vec2{
					worldMin[0] + span[0]*float32(x1)/float32(cellsX),
					worldMin[1] + span[1]*float32(y1)/float32(cellsY),
				},
				Sample: sample,
			})
		}
	}
	return patches
}
