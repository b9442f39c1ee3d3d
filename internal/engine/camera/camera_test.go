package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func near(a, b, tol float32) bool {
	return math32.Abs(a-b) <= tol
}

func vecNear(t *testing.T, name string, got, want mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		if !near(got[i], want[i], eps) {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

func TestForward(t *testing.T) {
	tests := []struct {
		yaw     float32
		forward mgl32.Vec3
		right   mgl32.Vec3
	}{
		{0, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
		{90, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		c := NewFlyCamera()
		c.Yaw = tt.yaw
		vecNear(t, "Forward()", c.Forward(), tt.forward)
		vecNear(t, "Right()", c.Right(), tt.right)
	}
}

func TestLook(t *testing.T) {
	c := NewFlyCamera()

	// 0.2 degrees per pixel, moving right turns clockwise.
	c.Look(10, 0)
	if !near(c.Yaw, -2, eps) {
		t.Errorf("Yaw = %v, want -2", c.Yaw)
	}

	c.Look(0, -1000)
	if !near(c.Pitch, 89, eps) {
		t.Errorf("Pitch = %v, want 89", c.Pitch)
	}
	c.Look(0, 5000)
	if !near(c.Pitch, -89, eps) {
		t.Errorf("Pitch = %v, want -89", c.Pitch)
	}
}

func TestMove(t *testing.T) {
	c := NewFlyCamera()
	c.Speed = 2

	c.Move(1, 0, 0, 0.5)
	vecNear(t, "Position", c.Position, mgl32.Vec3{1, 0, 0})

	c.Move(0, 1, 1, 1)
	vecNear(t, "Position", c.Position, mgl32.Vec3{1, -2, 2})
}

func TestViewLooksDownNegativeZ(t *testing.T) {
	c := NewFlyCamera()
	c.Position = mgl32.Vec3{1, 2, 3}
	c.Yaw = 90

	ahead := c.Position.Add(c.Forward().Mul(5))
	v := c.View().Mul4x1(ahead.Vec4(1))
	vecNear(t, "view-space point ahead", v.Vec3(), mgl32.Vec3{0, 0, -5})

	above := c.View().Mul4x1(c.Position.Add(Up).Vec4(1))
	if above.Y() <= 0.5 {
		t.Errorf("world up maps to view y = %v, want > 0.5", above.Y())
	}
}

func TestProjection(t *testing.T) {
	c := NewFlyCamera()
	p := c.Projection(16.0 / 9)
	// cot(45 degrees)
	if got := p.At(1, 1); !near(got, 1, eps) {
		t.Errorf("Projection()[1][1] = %v, want 1", got)
	}

	for _, aspect := range []float32{0, -1, math32.NaN(), math32.Inf(1)} {
		if c.Projection(aspect) != c.Projection(1) {
			t.Errorf("Projection(%v) does not fall back to aspect 1", aspect)
		}
	}
}
