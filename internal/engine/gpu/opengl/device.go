// Package opengl implements gpu.Device on an OpenGL 4.1 core context.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pipo/internal/engine/gpu"
	"github.com/Faultbox/pipo/internal/logger"
)

// pipeline is a linked program with its own vertex array object.
type pipeline struct {
	name     string
	program  uint32
	vao      uint32
	layout   gpu.Layout
	uniforms map[string]int32
}

// Device draws through the current OpenGL context. Buffer and image
// handles are the GL object names; pipeline handles are program names.
type Device struct {
	pipelines map[gpu.Pipeline]*pipeline
	current   *pipeline
	warned    map[string]bool
	log       *zap.Logger
}

// New loads the GL function pointers. It must be called after the context
// is current, on the thread that owns it.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log := logger.Named("opengl")
	log.Info("initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)

	return &Device{
		pipelines: make(map[gpu.Pipeline]*pipeline),
		warned:    make(map[string]bool),
		log:       log,
	}, nil
}

func createBuffer(target uint32, data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("create buffer: no data")
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(target, id)
	gl.BufferData(target, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(target, 0)
	if err := glError("create buffer"); err != nil {
		gl.DeleteBuffers(1, &id)
		return 0, err
	}
	return gpu.Buffer(id), nil
}

// CreateVertexBuffer implements gpu.Device.
func (d *Device) CreateVertexBuffer(data []byte) (gpu.Buffer, error) {
	return createBuffer(gl.ARRAY_BUFFER, data)
}

// CreateIndexBuffer implements gpu.Device. Indices are uint32.
func (d *Device) CreateIndexBuffer(data []byte) (gpu.Buffer, error) {
	// GL_ELEMENT_ARRAY_BUFFER binding is VAO state; upload without one bound.
	gl.BindVertexArray(0)
	return createBuffer(gl.ELEMENT_ARRAY_BUFFER, data)
}

// CreateImage implements gpu.Device.
func (d *Device) CreateImage(width, height int, rgba []byte) (gpu.Image, error) {
	if width <= 0 || height <= 0 || len(rgba) != width*height*4 {
		return 0, fmt.Errorf("create image: %d bytes for %dx%d", len(rgba), width, height)
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := glError("create image"); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}
	return gpu.Image(id), nil
}

// CreatePipeline implements gpu.Device.
func (d *Device) CreatePipeline(desc gpu.ShaderDesc, layout gpu.Layout) (gpu.Pipeline, error) {
	program, err := linkProgram(desc, layout)
	if err != nil {
		return 0, err
	}
	p := &pipeline{
		name:     desc.Name,
		program:  program,
		layout:   layout,
		uniforms: make(map[string]int32),
	}
	gl.GenVertexArrays(1, &p.vao)
	h := gpu.Pipeline(program)
	d.pipelines[h] = p
	d.log.Debug("pipeline linked",
		zap.String("name", desc.Name),
		zap.Int("attributes", len(layout.Attributes)),
		zap.Int("stride", layout.Stride),
	)
	return h, nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

// DestroyImage implements gpu.Device.
func (d *Device) DestroyImage(img gpu.Image) {
	id := uint32(img)
	gl.DeleteTextures(1, &id)
}

// DestroyPipeline implements gpu.Device.
func (d *Device) DestroyPipeline(h gpu.Pipeline) {
	p, ok := d.pipelines[h]
	if !ok {
		return
	}
	if d.current == p {
		d.current = nil
	}
	gl.DeleteVertexArrays(1, &p.vao)
	gl.DeleteProgram(p.program)
	delete(d.pipelines, h)
}

// BeginPass implements gpu.Device.
func (d *Device) BeginPass(action gpu.PassAction, width, height int) {
	c := action.ClearColor
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.ClearDepth(float64(action.ClearDepth))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	d.current = nil
}

// BindPipeline implements gpu.Device.
func (d *Device) BindPipeline(h gpu.Pipeline) {
	p, ok := d.pipelines[h]
	if !ok {
		d.warnOnce("bind of unknown pipeline")
		d.current = nil
		return
	}
	d.current = p
	gl.UseProgram(p.program)
	gl.BindVertexArray(p.vao)
}

// BindResources implements gpu.Device.
func (d *Device) BindResources(b gpu.Bindings) {
	p := d.current
	if p == nil {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b.VertexBuffer))
	for _, a := range p.layout.Attributes {
		n, _ := a.Format.Components()
		xtype, normalized := uint32(gl.FLOAT), false
		if a.Format == gpu.FormatUByte4N {
			xtype, normalized = gl.UNSIGNED_BYTE, true
		}
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, int32(n), xtype, normalized,
			int32(p.layout.Stride), uintptr(a.Offset))
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(b.IndexBuffer))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(b.Texture))
}

// ApplyUniforms implements gpu.Device.
func (d *Device) ApplyUniforms(us ...gpu.Uniform) {
	p := d.current
	if p == nil {
		return
	}
	for _, u := range us {
		loc := p.uniformLocation(u.Name)
		if loc < 0 {
			continue
		}
		switch v := u.Value.(type) {
		case mgl32.Mat4:
			gl.UniformMatrix4fv(loc, 1, false, &v[0])
		case mgl32.Vec4:
			gl.Uniform4fv(loc, 1, &v[0])
		case mgl32.Vec3:
			gl.Uniform3fv(loc, 1, &v[0])
		case float32:
			gl.Uniform1f(loc, v)
		case int32:
			gl.Uniform1i(loc, v)
		default:
			d.warnOnce(fmt.Sprintf("uniform %s has unsupported type %T", u.Name, u.Value))
		}
	}
}

// DrawIndexed implements gpu.Device.
func (d *Device) DrawIndexed(count int) {
	if d.current == nil {
		return
	}
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(0))
}

// EndPass implements gpu.Device.
func (d *Device) EndPass() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	d.current = nil
	if err := glError("frame"); err != nil {
		d.warnOnce(err.Error())
	}
}

// Commit implements gpu.Device. Presentation belongs to the window.
func (d *Device) Commit() {}

// Close destroys every pipeline still alive.
func (d *Device) Close() {
	for h := range d.pipelines {
		d.DestroyPipeline(h)
	}
}

func (d *Device) warnOnce(msg string) {
	if d.warned[msg] {
		return
	}
	d.warned[msg] = true
	d.log.Warn(msg)
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}

var _ gpu.Device = (*Device)(nil)
