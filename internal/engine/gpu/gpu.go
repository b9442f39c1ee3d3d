// Package gpu defines the GPU resource interface the renderer draws through.
//
// Handles are small integers owned by a Device. Zero is never a live handle,
// so the zero value of every handle type means "none".
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Buffer is a vertex or index buffer handle.
type Buffer uint32

// Image is a 2D RGBA8 texture handle.
type Image uint32

// Pipeline is a compiled shader plus fixed vertex layout and render state.
type Pipeline uint32

// NoPipeline is the "nothing bound" sentinel. Devices never return it.
const NoPipeline Pipeline = 0

// ShaderDesc carries the sources of one shader program.
type ShaderDesc struct {
	Name           string
	VertexSource   string
	FragmentSource string
}

// Bindings are the per-draw resources: one vertex buffer, one index buffer
// and the diffuse texture.
type Bindings struct {
	VertexBuffer Buffer
	IndexBuffer  Buffer
	Texture      Image
}

// PassAction describes how a pass clears its targets.
type PassAction struct {
	ClearColor [4]float32
	ClearDepth float32
}

// Uniform is a named shader parameter. Value must be one of
// mgl32.Mat4, mgl32.Vec3, mgl32.Vec4, float32 or int32.
type Uniform struct {
	Name  string
	Value any
}

// Mat4 builds a matrix uniform.
func Mat4(name string, m mgl32.Mat4) Uniform { return Uniform{Name: name, Value: m} }

// Vec3 builds a vector uniform.
func Vec3(name string, v mgl32.Vec3) Uniform { return Uniform{Name: name, Value: v} }

// Int builds an integer (sampler slot) uniform.
func Int(name string, v int32) Uniform { return Uniform{Name: name, Value: v} }

// UniformSink receives uniform uploads for the currently bound pipeline.
type UniformSink interface {
	ApplyUniforms(u ...Uniform)
}

// Device is the GPU resource and command interface.
// All methods must be called from the thread owning the graphics context.
type Device interface {
	UniformSink

	CreateVertexBuffer(data []byte) (Buffer, error)
	CreateIndexBuffer(data []byte) (Buffer, error)
	CreateImage(width, height int, rgba []byte) (Image, error)
	CreatePipeline(desc ShaderDesc, layout Layout) (Pipeline, error)

	DestroyBuffer(b Buffer)
	DestroyImage(img Image)
	DestroyPipeline(p Pipeline)

	BeginPass(action PassAction, width, height int)
	BindPipeline(p Pipeline)
	BindResources(b Bindings)
	DrawIndexed(count int)
	EndPass()
	Commit()
}
