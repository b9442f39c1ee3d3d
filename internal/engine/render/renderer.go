package render

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pipo/internal/engine/gpu"
	"github.com/Faultbox/pipo/internal/engine/heightfield"
	"github.com/Faultbox/pipo/internal/engine/mesh"
	"github.com/Faultbox/pipo/internal/engine/texture"
	"github.com/Faultbox/pipo/internal/logger"
)

// ClearColor is the background every pass clears to.
var ClearColor = [4]float32{0.2, 0.2, 0.2, 1}

// Renderer owns the device side of drawing: built-in textures, the default
// pipeline, the shared heightfield index buffers and the per-frame values
// handed to pipelines.
type Renderer struct {
	dev gpu.Device

	white   gpu.Image
	checker gpu.Image

	defaultPipeline *Pipeline
	pipelines       []*Pipeline
	indices         *IndexCache

	frame  Frame
	width  int
	height int

	last Stats
}

// New creates a renderer on top of dev and uploads the built-in textures.
func New(dev gpu.Device) (*Renderer, error) {
	r := &Renderer{
		dev:     dev,
		indices: NewIndexCache(dev),
		frame: Frame{
			View:     mgl32.Ident4(),
			Proj:     mgl32.Ident4(),
			LightDir: mgl32.Vec3{0, 0, 1},
		},
	}

	var err error
	if r.white, err = r.NewTexture(texture.White()); err != nil {
		return nil, fmt.Errorf("white texture: %w", err)
	}
	if r.checker, err = r.NewTexture(texture.Checker()); err != nil {
		dev.DestroyImage(r.white)
		return nil, fmt.Errorf("checker texture: %w", err)
	}
	return r, nil
}

// Device returns the device the renderer draws through.
func (r *Renderer) Device() gpu.Device { return r.dev }

// White returns the 2x2 white texture used when a draw has none.
func (r *Renderer) White() gpu.Image { return r.white }

// Checker returns the 2x2 black and white checker texture.
func (r *Renderer) Checker() gpu.Image { return r.checker }

// IndexCache returns the shared heightfield index buffers.
func (r *Renderer) IndexCache() *IndexCache { return r.indices }

// Resize records the drawable size used by the next pass.
func (r *Renderer) Resize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	logger.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the current drawable size.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// SetCamera sets the view and projection used by pipelines bound afterwards.
func (r *Renderer) SetCamera(view, proj mgl32.Mat4) {
	r.frame.View = view
	r.frame.Proj = proj
}

// SetLight sets the world space direction towards the light.
func (r *Renderer) SetLight(dir mgl32.Vec3) {
	r.frame.LightDir = dir
}

// Frame returns the current per-frame values.
func (r *Renderer) Frame() Frame { return r.frame }

// SetDefaultPipeline selects the pipeline used by draws that name none.
func (r *Renderer) SetDefaultPipeline(p *Pipeline) {
	r.defaultPipeline = p
}

// NewPipeline compiles a pipeline for the mesh.Vertex layout.
func (r *Renderer) NewPipeline(desc gpu.ShaderDesc, shading Shading) (*Pipeline, error) {
	layout, err := gpu.LayoutOf(mesh.Vertex{})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", desc.Name, err)
	}
	h, err := r.dev.CreatePipeline(desc, layout)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", desc.Name, err)
	}
	p := &Pipeline{Name: desc.Name, Handle: h, Shading: shading}
	r.pipelines = append(r.pipelines, p)
	logger.Info("pipeline created", zap.String("name", desc.Name), zap.Uint32("handle", uint32(h)))
	return p, nil
}

// NewTexture uploads an RGBA image.
func (r *Renderer) NewTexture(img *image.RGBA) (gpu.Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := img.Pix
	if img.Stride != w*4 {
		pix = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			off := y * img.Stride
			pix = append(pix, img.Pix[off:off+w*4]...)
		}
	}
	return r.dev.CreateImage(w, h, pix)
}

// NewMesh resolves vertex and index sources into a mesh drawing count indices.
// Buffers uploaded here are owned by the mesh; shared handles are not.
func (r *Renderer) NewMesh(vertices, indices gpu.BufferSource, count int) (*Mesh, error) {
	vb, ownVB, err := gpu.ResolveVertices(r.dev, vertices)
	if err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	ib, ownIB, err := gpu.ResolveIndices(r.dev, indices)
	if err != nil {
		if ownVB {
			r.dev.DestroyBuffer(vb)
		}
		return nil, fmt.Errorf("index buffer: %w", err)
	}
	return &Mesh{
		VertexBuffer: vb,
		IndexBuffer:  ib,
		Count:        count,
		ownsVertices: ownVB,
		ownsIndices:  ownIB,
	}, nil
}

// UploadMesh uploads d with its own vertex and index buffers.
// An empty mesh uploads nothing and draws nothing.
func (r *Renderer) UploadMesh(d *mesh.Data) (*Mesh, error) {
	if d.Empty() {
		return &Mesh{}, nil
	}
	m, err := r.NewMesh(gpu.RawBytes(gpu.Bytes(d.Vertices)), gpu.RawBytes(gpu.Bytes(d.Indices)), len(d.Indices))
	if err != nil {
		return nil, err
	}
	logger.Debug("mesh uploaded",
		zap.Int("vertices", len(d.Vertices)),
		zap.Int("triangles", d.TriangleCount()),
	)
	return m, nil
}

// UploadHeightfield uploads the vertices of a built patch and reuses the
// index buffer shared by every patch of the same size.
func (r *Renderer) UploadHeightfield(size heightfield.Size, d *mesh.Data) (*Mesh, error) {
	if d.Empty() {
		return &Mesh{}, nil
	}
	ib, err := r.indices.Get(size, d.Indices)
	if err != nil {
		return nil, err
	}
	return r.NewMesh(gpu.RawBytes(gpu.Bytes(d.Vertices)), gpu.BufferHandle(ib), len(d.Indices))
}

// ReleaseMesh destroys the buffers owned by m. Shared buffers stay alive.
func (r *Renderer) ReleaseMesh(m *Mesh) {
	if m == nil {
		return
	}
	if m.ownsVertices && m.VertexBuffer != 0 {
		r.dev.DestroyBuffer(m.VertexBuffer)
	}
	if m.ownsIndices && m.IndexBuffer != 0 {
		r.dev.DestroyBuffer(m.IndexBuffer)
	}
	*m = Mesh{}
}

// RenderMain runs one pass over the default framebuffer. fn receives the
// pass and the drawable size; the pass ends when fn returns.
func (r *Renderer) RenderMain(fn func(p *Pass, width, height int)) Stats {
	p := &Pass{r: r, bound: gpu.NoPipeline, active: true}
	r.dev.BeginPass(gpu.PassAction{ClearColor: ClearColor, ClearDepth: 1}, r.width, r.height)
	fn(p, r.width, r.height)
	p.active = false
	r.dev.EndPass()
	r.dev.Commit()
	r.last = p.stats
	return p.stats
}

// LastStats returns the counters of the most recent pass.
func (r *Renderer) LastStats() Stats { return r.last }

// Close destroys every resource the renderer created.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.indices.Release()
	for _, p := range r.pipelines {
		r.dev.DestroyPipeline(p.Handle)
	}
	r.pipelines = nil
	r.defaultPipeline = nil
	if r.white != 0 {
		r.dev.DestroyImage(r.white)
		r.white = 0
	}
	if r.checker != 0 {
		r.dev.DestroyImage(r.checker)
		r.checker = 0
	}
}
