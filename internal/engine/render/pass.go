package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pipo/internal/engine/gpu"
	"github.com/Faultbox/pipo/internal/logger"
)

// Pass is the draw scope handed to a RenderMain callback. It tracks the
// bound pipeline so consecutive draws with the same pipeline skip rebinding
// and per-pass uniform upload. Draw order is preserved.
type Pass struct {
	r      *Renderer
	bound  gpu.Pipeline
	active bool
	stats  Stats
}

// Draw submits one request. Requests with no primitives do nothing.
func (p *Pass) Draw(req DrawRequest) {
	if !p.active {
		logger.Warn("draw outside of an active render pass ignored")
		return
	}
	if req.Count <= 0 {
		p.stats.Skipped++
		return
	}

	pl := req.Pipeline
	if pl == nil {
		pl = p.r.defaultPipeline
	}
	if pl == nil || pl.Handle == gpu.NoPipeline {
		p.stats.Skipped++
		return
	}

	dev := p.r.dev
	if pl.Handle != p.bound {
		p.bound = pl.Handle
		dev.BindPipeline(pl.Handle)
		if pl.Shading != nil {
			pl.Shading.SetupPass(dev, &p.r.frame)
		}
		p.stats.PipelineSwitches++
		logger.Debug("pipeline bound", zap.String("pipeline", pl.Name))
	}

	tex := req.Texture
	if tex == 0 {
		tex = p.r.white
	}
	dev.BindResources(gpu.Bindings{
		VertexBuffer: req.VertexBuffer,
		IndexBuffer:  req.IndexBuffer,
		Texture:      tex,
	})
	if pl.Shading != nil {
		pl.Shading.SetupInstance(dev, req.World)
	}
	dev.DrawIndexed(req.Count)
	p.stats.Draws++
}

// DrawMesh draws m with the given world transform. A nil mesh is skipped.
func (p *Pass) DrawMesh(m *Mesh, world mgl32.Mat4) {
	if m == nil {
		p.Draw(DrawRequest{})
		return
	}
	p.Draw(DrawRequest{
		Pipeline:     m.Pipeline,
		Texture:      m.Diffuse,
		VertexBuffer: m.VertexBuffer,
		IndexBuffer:  m.IndexBuffer,
		Count:        m.Count,
		World:        world,
	})
}

// Stats returns the counters of this pass so far.
func (p *Pass) Stats() Stats {
	return p.stats
}
