// Package lighting computes directional light vectors for a z-up world.
package lighting

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light. With a non-zero Rate it circles through the
// zenith in the XZ plane; otherwise it stays at Longitude/Latitude.
type Sun struct {
	// Rate is the angular speed in radians per second.
	Rate float32
	// Longitude is the angle around +Z from +X, latitude the elevation above
	// the horizon, both in degrees.
	Longitude float32
	Latitude  float32
}

// Direction returns the unit vector pointing towards the sun.
func (s Sun) Direction(elapsed time.Duration) mgl32.Vec3 {
	if s.Rate == 0 {
		return SunDirection(s.Longitude, s.Latitude)
	}
	t := s.Rate * float32(elapsed.Seconds())
	return mgl32.Vec3{math32.Cos(t), 0, math32.Sin(t)}.Normalize()
}

// SunDirection converts longitude/latitude in degrees to a unit vector.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lon := mgl32.DegToRad(longitude)
	lat := mgl32.DegToRad(latitude)
	cl := math32.Cos(lat)
	return mgl32.Vec3{cl * math32.Cos(lon), cl * math32.Sin(lon), math32.Sin(lat)}
}
