package demo

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pipo/internal/config"
	"github.com/Faultbox/pipo/internal/engine/heightfield"
	"github.com/Faultbox/pipo/internal/engine/heightmap"
	"github.com/Faultbox/pipo/internal/engine/mesh"
	"github.com/Faultbox/pipo/internal/logger"
)

// WaveGrid returns the built-in n x n ground lattice,
// 0.6*(sin(x/2) + sin(y/2)) - 2.
func WaveGrid(n int) *heightmap.Grid {
	g := heightmap.NewGrid(n, n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			g.Set(x, y, 0.6*(math32.Sin(0.5*float32(x))+math32.Sin(0.5*float32(y)))-2)
		}
	}
	return g
}

// groundLattice returns the sampler and mesh size for the configured ground.
// The outermost ring of the source grid only feeds normals, so the mesh
// covers the interior and the sampler is shifted by one sample.
func groundLattice(cfg config.SceneConfig) (heightfield.SampleFunc, heightfield.Size, error) {
	var sample heightfield.SampleFunc
	var grid *heightmap.Grid
	if cfg.HeightmapPath != "" {
		var err error
		grid, err = heightmap.Load(cfg.HeightmapPath)
		if err != nil {
			return nil, heightfield.Size{}, err
		}
		sample = heightmap.Scaled(grid.Clamp(), cfg.HeightScale, cfg.HeightOffset)
	} else {
		grid = WaveGrid(cfg.PatchSize)
		sample = grid.Clamp()
	}

	size := heightfield.Size{W: grid.W - 2, H: grid.H - 2}
	if !size.Valid() {
		return nil, size, fmt.Errorf("ground grid %dx%d is too small", grid.W, grid.H)
	}
	return heightmap.Shifted(sample, 1, 1), size, nil
}

// buildGround builds the ground patches on all cores.
func buildGround(ctx context.Context, b *heightfield.Builder, cfg config.SceneConfig) ([]heightfield.Patch, []mesh.Data, error) {
	sample, size, err := groundLattice(cfg)
	if err != nil {
		return nil, nil, err
	}
	ext := cfg.GroundExtent
	patches := heightfield.Tile(size,
		heightfield.Point{X: cfg.GroundPatches, Y: cfg.GroundPatches},
		mgl32.Vec2{-ext, -ext}, mgl32.Vec2{ext, ext},
		sample,
	)
	data, err := b.BuildAll(ctx, patches)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("ground built",
		zap.Int("w", size.W), zap.Int("h", size.H),
		zap.Int("patches", len(patches)),
		zap.Int("index_sizes", b.CachedSizes()),
	)
	return patches, data, nil
}

// quadData is the vertex-colored test quad facing +Z.
func quadData() *mesh.Data {
	n := mgl32.Vec3{0, 0, 1}
	uv := mgl32.Vec2{0.5, 0.5}
	return &mesh.Data{
		Vertices: []mesh.Vertex{
			{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n, TexCoord: uv, Color: 0xffff0000},
			{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n, TexCoord: uv, Color: 0xff00ff00},
			{Position: mgl32.Vec3{-0.5, 0.5, 0}, Normal: n, TexCoord: uv, Color: 0xff0000ff},
			{Position: mgl32.Vec3{0.5, 0.5, 0}, Normal: n, TexCoord: uv, Color: mesh.ColorWhite},
		},
		Indices: []uint32{0, 1, 2, 1, 3, 2},
	}
}
