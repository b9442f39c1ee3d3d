package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pipo/internal/engine/gpu"
)

// Uniform names shared by the built-in shaders.
const (
	UniformView     = "uView"
	UniformProj     = "uProj"
	UniformWorld    = "uWorld"
	UniformLightDir = "uLightDir"
	UniformTexture  = "uTexture"
)

// LitShading uploads camera and light once per activation and the world
// matrix per draw.
type LitShading struct{}

// SetupPass implements Shading.
func (LitShading) SetupPass(u gpu.UniformSink, f *Frame) {
	u.ApplyUniforms(
		gpu.Mat4(UniformView, f.View),
		gpu.Mat4(UniformProj, f.Proj),
		gpu.Vec3(UniformLightDir, f.LightDir),
		gpu.Int(UniformTexture, 0),
	)
}

// SetupInstance implements Shading.
func (LitShading) SetupInstance(u gpu.UniformSink, world mgl32.Mat4) {
	u.ApplyUniforms(gpu.Mat4(UniformWorld, world))
}

// UnlitShading is LitShading without the light direction.
type UnlitShading struct{}

// SetupPass implements Shading.
func (UnlitShading) SetupPass(u gpu.UniformSink, f *Frame) {
	u.ApplyUniforms(
		gpu.Mat4(UniformView, f.View),
		gpu.Mat4(UniformProj, f.Proj),
		gpu.Int(UniformTexture, 0),
	)
}

// SetupInstance implements Shading.
func (UnlitShading) SetupInstance(u gpu.UniformSink, world mgl32.Mat4) {
	u.ApplyUniforms(gpu.Mat4(UniformWorld, world))
}
