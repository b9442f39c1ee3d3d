// Package render submits meshes to a gpu.Device inside scoped render passes,
// binding a pipeline and uploading its per-pass uniforms only when the
// pipeline actually changes.
package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pipo/internal/engine/gpu"
)

// Frame holds the per-frame values pipelines upload at activation.
type Frame struct {
	View     mgl32.Mat4
	Proj     mgl32.Mat4
	LightDir mgl32.Vec3
	Elapsed  time.Duration
}

// Shading uploads the uniforms of one pipeline.
// SetupPass runs once each time the pipeline becomes bound within a pass;
// SetupInstance runs for every draw.
type Shading interface {
	SetupPass(u gpu.UniformSink, f *Frame)
	SetupInstance(u gpu.UniformSink, world mgl32.Mat4)
}

// Pipeline pairs a device pipeline with its uniform callbacks.
type Pipeline struct {
	Name    string
	Handle  gpu.Pipeline
	Shading Shading
}

// Mesh is uploaded, immutable geometry. A changed mesh is rebuilt and
// re-uploaded rather than modified in place.
type Mesh struct {
	// Pipeline used to draw the mesh; nil selects the renderer default.
	Pipeline *Pipeline
	// Diffuse texture; zero selects the renderer's white texture.
	Diffuse gpu.Image

	VertexBuffer gpu.Buffer
	IndexBuffer  gpu.Buffer
	Count        int

	ownsVertices bool
	ownsIndices  bool
}

// DrawRequest is one draw call. It is consumed immediately and not retained.
type DrawRequest struct {
	Pipeline     *Pipeline
	Texture      gpu.Image
	VertexBuffer gpu.Buffer
	IndexBuffer  gpu.Buffer
	Count        int
	World        mgl32.Mat4
}

// Stats counts what one pass submitted.
type Stats struct {
	Draws            int
	PipelineSwitches int
	Skipped          int
}
