// Package demo is the heightfield showcase: a tiled ground, a loaded model
// and a test quad, viewed through a fly camera under a moving sun.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/pipo/internal/config"
	"github.com/Faultbox/pipo/internal/engine/camera"
	"github.com/Faultbox/pipo/internal/engine/gpu"
	"github.com/Faultbox/pipo/internal/engine/heightfield"
	"github.com/Faultbox/pipo/internal/engine/input"
	"github.com/Faultbox/pipo/internal/engine/lighting"
	"github.com/Faultbox/pipo/internal/engine/loop"
	"github.com/Faultbox/pipo/internal/engine/mesh"
	"github.com/Faultbox/pipo/internal/engine/render"
	"github.com/Faultbox/pipo/internal/engine/shader"
	"github.com/Faultbox/pipo/internal/logger"
)

// modelOffsets are the world positions of the model instances.
var modelOffsets = []mgl32.Vec3{
	{-1, -1, 0},
	{1, -1, 0},
	{-1, 1, 0},
	{1, 1, 0},
}

var quadOffset = mgl32.Vec3{0, 0, 2}

// Scene implements loop.App.
type Scene struct {
	cfg *config.Config
	dev gpu.Device

	r       *render.Renderer
	lit     *render.Pipeline
	unlit   *render.Pipeline
	builder *heightfield.Builder

	ground []*render.Mesh
	model  *render.Mesh
	quad   *render.Mesh

	cam  *camera.FlyCamera
	sun  lighting.Sun
	keys input.State

	watcher *Watcher

	lastReport time.Duration
}

// New creates a scene drawing through dev. Nothing is uploaded before OnInit.
func New(cfg *config.Config, dev gpu.Device) *Scene {
	cam := camera.NewFlyCamera()
	cam.FovY = cfg.Camera.FovDegrees
	cam.Near = cfg.Camera.Near
	cam.Far = cfg.Camera.Far
	cam.Sensitivity = cfg.Camera.MouseSensitivity
	cam.Speed = cfg.Camera.MoveSpeed
	cam.Position = mgl32.Vec3{0, -6, 1.5}
	cam.Yaw = 90
	cam.Pitch = -20

	return &Scene{
		cfg:     cfg,
		dev:     dev,
		builder: heightfield.NewBuilder(),
		cam:     cam,
		sun: lighting.Sun{
			Rate:      cfg.Light.Rate,
			Longitude: cfg.Light.Longitude,
			Latitude:  cfg.Light.Latitude,
		},
	}
}

// Camera returns the scene camera.
func (s *Scene) Camera() *camera.FlyCamera { return s.cam }

// Renderer returns the renderer created by OnInit.
func (s *Scene) Renderer() *render.Renderer { return s.r }

// OnInit implements loop.App. A failed init releases whatever it created.
func (s *Scene) OnInit(ctx *loop.Context) error {
	if err := s.init(ctx); err != nil {
		_ = s.OnRelease(ctx)
		return err
	}
	return nil
}

func (s *Scene) init(ctx *loop.Context) error {
	r, err := render.New(s.dev)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	s.r = r
	r.Resize(ctx.Width, ctx.Height)

	if s.lit, err = r.NewPipeline(shader.MustDesc(shader.Lit), render.LitShading{}); err != nil {
		return err
	}
	if s.unlit, err = r.NewPipeline(shader.MustDesc(shader.Unlit), render.UnlitShading{}); err != nil {
		return err
	}
	r.SetDefaultPipeline(s.lit)

	if err := s.loadGround(); err != nil {
		return err
	}
	s.loadModel()

	if s.quad, err = r.UploadMesh(quadData()); err != nil {
		return fmt.Errorf("test quad: %w", err)
	}
	s.quad.Pipeline = s.unlit

	if s.cfg.Scene.WatchAssets {
		s.watcher, err = NewWatcher(map[Asset]string{
			AssetModel:     s.cfg.Scene.ModelPath,
			AssetHeightmap: s.cfg.Scene.HeightmapPath,
		})
		if err != nil {
			logger.Warn("asset hot reload disabled", zap.Error(err))
			s.watcher = nil
		}
	}

	logger.Info("scene initialized",
		zap.Int("ground_meshes", len(s.ground)),
		zap.Int("model_triangles", s.model.Count/3),
	)
	return nil
}

// loadGround builds and uploads the ground, replacing any previous one.
// A configured heightmap that fails to load falls back to the built-in waves.
func (s *Scene) loadGround() error {
	sc := s.cfg.Scene
	patches, data, err := buildGround(context.Background(), s.builder, sc)
	if err != nil && sc.HeightmapPath != "" {
		logger.Warn("heightmap failed to load, using generated ground",
			zap.String("path", sc.HeightmapPath), zap.Error(err))
		sc.HeightmapPath = ""
		patches, data, err = buildGround(context.Background(), s.builder, sc)
	}
	if err != nil {
		return fmt.Errorf("ground: %w", err)
	}

	meshes := make([]*render.Mesh, 0, len(data))
	for i := range data {
		m, err := s.r.UploadHeightfield(patches[i].Size, &data[i])
		if err != nil {
			for _, old := range meshes {
				s.r.ReleaseMesh(old)
			}
			return fmt.Errorf("ground patch %d: %w", i, err)
		}
		m.Pipeline = s.lit
		m.Diffuse = s.r.Checker()
		meshes = append(meshes, m)
	}

	for _, old := range s.ground {
		s.r.ReleaseMesh(old)
	}
	s.ground = meshes
	return nil
}

// loadModel loads the configured model. On failure the previous model is
// kept, or an empty mesh on first load.
func (s *Scene) loadModel() {
	keep := func() {
		if s.model == nil {
			s.model = &render.Mesh{}
		}
	}
	path := s.cfg.Scene.ModelPath
	if path == "" {
		keep()
		return
	}
	data, err := mesh.LoadPLY(path)
	if err != nil {
		logger.Warn("model failed to load", zap.String("path", path), zap.Error(err))
		keep()
		return
	}
	m, err := s.r.UploadMesh(data)
	if err != nil {
		logger.Warn("model upload failed", zap.String("path", path), zap.Error(err))
		keep()
		return
	}
	if s.model != nil {
		s.r.ReleaseMesh(s.model)
	}
	s.model = m
	logger.Info("model loaded", zap.String("path", path), zap.Int("triangles", data.TriangleCount()))
}

// Reload rebuilds one asset on the loop thread.
func (s *Scene) Reload(a Asset) {
	logger.Info("reloading asset", zap.Stringer("asset", a))
	switch a {
	case AssetModel:
		s.loadModel()
	case AssetHeightmap:
		if err := s.loadGround(); err != nil {
			logger.Warn("ground reload failed", zap.Error(err))
		}
	}
}

// OnEvent implements loop.App.
func (s *Scene) OnEvent(ctx *loop.Context, e input.Event) error {
	s.keys.Handle(e)
	switch e.Type {
	case input.EventMouseMove:
		s.cam.Look(float32(e.DX), float32(e.DY))
	case input.EventKeyDown:
		if e.Key == input.KeyEscape {
			ctx.Quit()
		}
	case input.EventWindowResize:
		s.r.Resize(e.Width, e.Height)
	}
	return nil
}

// OnUpdate implements loop.App.
func (s *Scene) OnUpdate(ctx *loop.Context, p loop.UpdateParams) error {
	s.drainReloads()
	s.cam.Move(
		s.keys.Axis(input.KeyS, input.KeyW),
		s.keys.Axis(input.KeyA, input.KeyD),
		s.keys.Axis(input.KeyLCtrl, input.KeySpace),
		p.Seconds(),
	)
	return nil
}

func (s *Scene) drainReloads() {
	if s.watcher == nil {
		return
	}
	pending := map[Asset]bool{}
drain:
	for {
		select {
		case a := <-s.watcher.Reloads():
			pending[a] = true
		default:
			break drain
		}
	}
	for _, a := range []Asset{AssetHeightmap, AssetModel} {
		if pending[a] {
			s.Reload(a)
		}
	}
}

// OnDraw implements loop.App.
func (s *Scene) OnDraw(ctx *loop.Context, p loop.DrawParams) error {
	s.r.Resize(ctx.Width, ctx.Height)
	s.r.SetCamera(s.cam.View(), s.cam.Projection(ctx.Aspect()))
	s.r.SetLight(s.sun.Direction(p.Elapsed))

	stats := s.r.RenderMain(func(pass *render.Pass, w, h int) {
		for _, g := range s.ground {
			pass.DrawMesh(g, mgl32.Ident4())
		}
		for _, off := range modelOffsets {
			pass.DrawMesh(s.model, mgl32.Translate3D(off.X(), off.Y(), off.Z()))
		}
		pass.DrawMesh(s.quad, mgl32.Translate3D(quadOffset.X(), quadOffset.Y(), quadOffset.Z()))
	})

	if p.Elapsed-s.lastReport >= time.Second && logger.Enabled(zapcore.DebugLevel) {
		s.lastReport = p.Elapsed
		t := ctx.Timings()
		logger.Debug("frame",
			zap.Int("draws", stats.Draws),
			zap.Int("pipeline_switches", stats.PipelineSwitches),
			zap.Int("skipped", stats.Skipped),
			zap.Duration("loop", t.Loop),
			zap.Duration("draw", t.Draw),
		)
	}
	return nil
}

// OnRelease implements loop.App.
func (s *Scene) OnRelease(ctx *loop.Context) error {
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
		s.watcher = nil
	}
	if s.r == nil {
		return err
	}
	for _, g := range s.ground {
		s.r.ReleaseMesh(g)
	}
	s.ground = nil
	s.r.ReleaseMesh(s.model)
	s.r.ReleaseMesh(s.quad)
	s.r.Close()
	s.r = nil
	return err
}

var _ loop.App = (*Scene)(nil)
