package lighting

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-5)
}

func TestSun_Rotating(t *testing.T) {
	s := Sun{Rate: 0.8}

	if got := s.Direction(0); !near(got, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("t=0: %v", got)
	}

	// 0.8 rad/s reaches the zenith after pi/2/0.8 seconds.
	secs := 3.14159265 / 2 / 0.8
	quarter := time.Duration(float64(time.Second) * secs)
	if got := s.Direction(quarter); !near(got, mgl32.Vec3{0, 0, 1}) {
		t.Errorf("zenith: %v", got)
	}

	for _, d := range []time.Duration{time.Second, 7 * time.Second, time.Minute} {
		if l := s.Direction(d).Len(); l < 0.9999 || l > 1.0001 {
			t.Errorf("len at %v = %v", d, l)
		}
	}
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		lon, lat float32
		want     mgl32.Vec3
	}{
		{0, 0, mgl32.Vec3{1, 0, 0}},
		{90, 0, mgl32.Vec3{0, 1, 0}},
		{0, 90, mgl32.Vec3{0, 0, 1}},
		{180, 45, mgl32.Vec3{-0.70710677, 0, 0.70710677}},
	}
	for _, tt := range tests {
		if got := SunDirection(tt.lon, tt.lat); !near(got, tt.want) {
			t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
		}
	}

	fixed := Sun{Longitude: 90, Latitude: 0}
	if got := fixed.Direction(time.Hour); !near(got, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("fixed sun moved: %v", got)
	}
}
