// Package camera provides a first-person fly camera for a z-up world.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Up is the world up axis.
var Up = mgl32.Vec3{0, 0, 1}

const maxPitch = 89

// FlyCamera looks along yaw/pitch angles from a free position.
// Yaw is measured in degrees from +X towards +Y, pitch in degrees above
// the horizon.
type FlyCamera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	// Sensitivity is the rotation in degrees per pixel of mouse motion.
	Sensitivity float32
	// Speed is the movement speed in world units per second.
	Speed float32

	FovY float32 // degrees
	Near float32
	Far  float32
}

// NewFlyCamera returns a camera with a 90 degree field of view.
func NewFlyCamera() *FlyCamera {
	return &FlyCamera{
		Sensitivity: 0.2,
		Speed:       4,
		FovY:        90,
		Near:        0.5,
		Far:         100,
	}
}

// Look applies relative mouse motion. Moving right turns right and moving
// down looks down.
func (c *FlyCamera) Look(dx, dy float32) {
	c.Yaw -= dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -maxPitch, maxPitch)
	c.Yaw = math32.Mod(c.Yaw, 360)
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)
	cp := math32.Cos(pitch)
	return mgl32.Vec3{cp * math32.Cos(yaw), cp * math32.Sin(yaw), math32.Sin(pitch)}
}

// Right returns the unit vector to the right of the view direction,
// parallel to the ground.
func (c *FlyCamera) Right() mgl32.Vec3 {
	yaw := mgl32.DegToRad(c.Yaw)
	return mgl32.Vec3{math32.Sin(yaw), -math32.Cos(yaw), 0}
}

// Move translates the camera by axis inputs in [-1, 1] over dt seconds:
// forward along the view direction, right along the ground, up along +Z.
func (c *FlyCamera) Move(forward, right, up, dt float32) {
	step := c.Speed * dt
	d := c.Forward().Mul(forward).Add(c.Right().Mul(right)).Add(Up.Mul(up))
	c.Position = c.Position.Add(d.Mul(step))
}

// View returns the world-to-view matrix.
func (c *FlyCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), Up)
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *FlyCamera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 || math32.IsNaN(aspect) || math32.IsInf(aspect, 0) {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}
