// Package gputest provides a recording gpu.Device for tests.
package gputest

import (
	"fmt"

	"github.com/Faultbox/pipo/internal/engine/gpu"
)

// Call is one recorded device command.
type Call struct {
	Op       string
	Pipeline gpu.Pipeline
	Bindings gpu.Bindings
	Count    int
	Uniforms []gpu.Uniform
}

// Device records every command and hands out sequential handles.
// The zero value is ready to use.
type Device struct {
	Calls []Call

	// Buffers maps live buffer handles to their uploaded size in bytes.
	Buffers map[gpu.Buffer]int
	// Images maps live image handles to their dimensions.
	Images map[gpu.Image][2]int
	// Pipelines maps live pipeline handles to their descriptors.
	Pipelines map[gpu.Pipeline]gpu.ShaderDesc

	// FailCreate makes every Create* call fail.
	FailCreate bool

	next uint32
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) record(c Call) {
	d.Calls = append(d.Calls, c)
}

func (d *Device) createBuffer(op string, data []byte) (gpu.Buffer, error) {
	if d.FailCreate {
		return 0, fmt.Errorf("%s: device failure", op)
	}
	if d.Buffers == nil {
		d.Buffers = make(map[gpu.Buffer]int)
	}
	b := gpu.Buffer(d.handle())
	d.Buffers[b] = len(data)
	d.record(Call{Op: op})
	return b, nil
}

// CreateVertexBuffer implements gpu.Device.
func (d *Device) CreateVertexBuffer(data []byte) (gpu.Buffer, error) {
	return d.createBuffer("create_vertex_buffer", data)
}

// CreateIndexBuffer implements gpu.Device.
func (d *Device) CreateIndexBuffer(data []byte) (gpu.Buffer, error) {
	return d.createBuffer("create_index_buffer", data)
}

// CreateImage implements gpu.Device.
func (d *Device) CreateImage(width, height int, rgba []byte) (gpu.Image, error) {
	if d.FailCreate {
		return 0, fmt.Errorf("create_image: device failure")
	}
	if len(rgba) != width*height*4 {
		return 0, fmt.Errorf("create_image: %d bytes for %dx%d", len(rgba), width, height)
	}
	if d.Images == nil {
		d.Images = make(map[gpu.Image][2]int)
	}
	img := gpu.Image(d.handle())
	d.Images[img] = [2]int{width, height}
	d.record(Call{Op: "create_image"})
	return img, nil
}

// CreatePipeline implements gpu.Device.
func (d *Device) CreatePipeline(desc gpu.ShaderDesc, layout gpu.Layout) (gpu.Pipeline, error) {
	if d.FailCreate {
		return 0, fmt.Errorf("create_pipeline %s: device failure", desc.Name)
	}
	if d.Pipelines == nil {
		d.Pipelines = make(map[gpu.Pipeline]gpu.ShaderDesc)
	}
	p := gpu.Pipeline(d.handle())
	d.Pipelines[p] = desc
	d.record(Call{Op: "create_pipeline", Pipeline: p})
	return p, nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(b gpu.Buffer) {
	delete(d.Buffers, b)
	d.record(Call{Op: "destroy_buffer"})
}

// DestroyImage implements gpu.Device.
func (d *Device) DestroyImage(img gpu.Image) {
	delete(d.Images, img)
	d.record(Call{Op: "destroy_image"})
}

// DestroyPipeline implements gpu.Device.
func (d *Device) DestroyPipeline(p gpu.Pipeline) {
	delete(d.Pipelines, p)
	d.record(Call{Op: "destroy_pipeline", Pipeline: p})
}

// BeginPass implements gpu.Device.
func (d *Device) BeginPass(action gpu.PassAction, width, height int) {
	d.record(Call{Op: "begin_pass"})
}

// BindPipeline implements gpu.Device.
func (d *Device) BindPipeline(p gpu.Pipeline) {
	d.record(Call{Op: "bind_pipeline", Pipeline: p})
}

// BindResources implements gpu.Device.
func (d *Device) BindResources(b gpu.Bindings) {
	d.record(Call{Op: "bind_resources", Bindings: b})
}

// ApplyUniforms implements gpu.Device.
func (d *Device) ApplyUniforms(u ...gpu.Uniform) {
	d.record(Call{Op: "apply_uniforms", Uniforms: append([]gpu.Uniform(nil), u...)})
}

// DrawIndexed implements gpu.Device.
func (d *Device) DrawIndexed(count int) {
	d.record(Call{Op: "draw", Count: count})
}

// EndPass implements gpu.Device.
func (d *Device) EndPass() {
	d.record(Call{Op: "end_pass"})
}

// Commit implements gpu.Device.
func (d *Device) Commit() {
	d.record(Call{Op: "commit"})
}

// Count returns how many recorded calls have the given op.
func (d *Device) Count(op string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the recorded op names in order.
func (d *Device) Ops() []string {
	ops := make([]string, len(d.Calls))
	for i, c := range d.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset forgets recorded calls but keeps live resources.
func (d *Device) Reset() {
	d.Calls = nil
}

var _ gpu.Device = (*Device)(nil)
