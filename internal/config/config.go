// Package config handles engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all engine settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Loop    LoopConfig    `yaml:"loop"`
	Scene   SceneConfig   `yaml:"scene"`
	Camera  CameraConfig  `yaml:"camera"`
	Light   LightConfig   `yaml:"light"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	MSAA       int    `yaml:"msaa"`
}

// LoopConfig holds frame pacing settings.
type LoopConfig struct {
	UpdateStep    time.Duration `yaml:"update_step"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// SceneConfig holds demo scene content settings.
type SceneConfig struct {
	ModelPath     string `yaml:"model_path"`
	HeightmapPath string `yaml:"heightmap_path"`
	// HeightScale and HeightOffset map normalized heightmap samples to world z.
	HeightScale  float32 `yaml:"height_scale"`
	HeightOffset float32 `yaml:"height_offset"`
	// GroundExtent is the half size of the ground square in world units.
	GroundExtent float32 `yaml:"ground_extent"`
	// GroundPatches splits the ground into N x N meshes.
	GroundPatches int `yaml:"ground_patches"`
	// PatchSize is the generated lattice size in samples when no heightmap
	// is configured.
	PatchSize   int  `yaml:"patch_size"`
	WatchAssets bool `yaml:"watch_assets"`
}

// CameraConfig holds view settings.
type CameraConfig struct {
	FovDegrees       float32 `yaml:"fov_degrees"`
	Near             float32 `yaml:"near"`
	Far              float32 `yaml:"far"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
	MoveSpeed        float32 `yaml:"move_speed"`
}

// LightConfig holds the directional light settings.
type LightConfig struct {
	// Rate in radians per second; 0 keeps the light fixed.
	Rate      float32 `yaml:"rate"`
	Longitude float32 `yaml:"longitude"`
	Latitude  float32 `yaml:"latitude"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "pipo",
			Width:  1280,
			Height: 720,
			VSync:  true,
			MSAA:   4,
		},
		Loop: LoopConfig{
			UpdateStep:    8 * time.Millisecond,
			FrameInterval: 10 * time.Millisecond,
		},
		Scene: SceneConfig{
			ModelPath:     "pipo.ply",
			HeightScale:   2.4,
			HeightOffset:  -3.2,
			GroundExtent:  10,
			GroundPatches: 2,
			PatchSize:     34,
		},
		Camera: CameraConfig{
			FovDegrees:       90,
			Near:             0.5,
			Far:              100,
			MouseSensitivity: 0.2,
			MoveSpeed:        4,
		},
		Light: LightConfig{
			Rate:      0.8,
			Latitude:  45,
			Longitude: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Loop.UpdateStep <= 0 {
		errs = append(errs, fmt.Errorf("loop.update_step %v must be positive", c.Loop.UpdateStep))
	}
	if c.Loop.FrameInterval < 0 {
		errs = append(errs, fmt.Errorf("loop.frame_interval %v is negative", c.Loop.FrameInterval))
	}
	if c.Scene.GroundPatches < 1 {
		errs = append(errs, fmt.Errorf("scene.ground_patches %d must be at least 1", c.Scene.GroundPatches))
	}
	if c.Scene.PatchSize < 2 {
		errs = append(errs, fmt.Errorf("scene.patch_size %d must be at least 2", c.Scene.PatchSize))
	}
	if c.Scene.GroundExtent <= 0 {
		errs = append(errs, fmt.Errorf("scene.ground_extent %v must be positive", c.Scene.GroundExtent))
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov_degrees %v out of range", c.Camera.FovDegrees))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera near/far %v/%v", c.Camera.Near, c.Camera.Far))
	}
	return errors.Join(errs...)
}
