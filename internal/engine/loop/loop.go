// Package loop drives an application with fixed-step updates and paced
// variable-rate drawing on a single thread.
package loop

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pipo/internal/engine/input"
	"github.com/Faultbox/pipo/internal/logger"
)

// Config controls loop timing.
type Config struct {
	// UpdateStep is the simulated time advanced by one update.
	UpdateStep time.Duration
	// FrameInterval is the minimum wall time of one iteration.
	FrameInterval time.Duration
	// MaxCatchUp bounds the updates run in one iteration; a loop further
	// behind than that drops the backlog.
	MaxCatchUp int
}

// DefaultConfig returns 8ms updates and a 10ms frame budget.
func DefaultConfig() Config {
	return Config{
		UpdateStep:    8 * time.Millisecond,
		FrameInterval: 10 * time.Millisecond,
		MaxCatchUp:    25,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UpdateStep <= 0 {
		c.UpdateStep = d.UpdateStep
	}
	if c.FrameInterval < 0 {
		c.FrameInterval = 0
	}
	if c.MaxCatchUp <= 0 {
		c.MaxCatchUp = d.MaxCatchUp
	}
	return c
}

// Platform is the window side of the loop.
type Platform interface {
	// PollEvents appends pending events to dst.
	PollEvents(dst []input.Event) []input.Event
	// DrawableSize returns the framebuffer size in pixels.
	DrawableSize() (width, height int)
	// Swap presents the frame.
	Swap()
}

// Clock abstracts wall time so tests can drive the loop.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the real clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep implements Clock.
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// UpdateParams is passed to every fixed update.
type UpdateParams struct {
	// Elapsed is the simulated time including this step.
	Elapsed      time.Duration
	Step         uint64
	StepDuration time.Duration
}

// Seconds returns StepDuration in seconds.
func (p UpdateParams) Seconds() float32 {
	return float32(p.StepDuration.Seconds())
}

// DrawParams is passed to every draw.
type DrawParams struct {
	Elapsed time.Duration
}

// App receives the loop callbacks. Any returned error stops the loop.
type App interface {
	OnInit(ctx *Context) error
	OnEvent(ctx *Context, e input.Event) error
	OnUpdate(ctx *Context, p UpdateParams) error
	OnDraw(ctx *Context, p DrawParams) error
	OnRelease(ctx *Context) error
}

// Timings are running averages of the last iterations.
type Timings struct {
	Loop   time.Duration
	Update time.Duration
	Draw   time.Duration
}

// Context is the loop state shared with callbacks.
type Context struct {
	// Width and Height are the drawable size sampled before each draw.
	Width  int
	Height int

	Steps  uint64
	Frames uint64

	timings Timings
	quit    bool
}

// Quit stops the loop after the current callback.
func (c *Context) Quit() { c.quit = true }

// Quitting reports whether Quit was called or the platform asked to close.
func (c *Context) Quitting() bool { return c.quit }

// Timings returns the smoothed iteration, update and draw durations.
func (c *Context) Timings() Timings { return c.timings }

// Aspect returns Width/Height, or 1 before the first size is known.
func (c *Context) Aspect() float32 {
	if c.Width <= 0 || c.Height <= 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

func smooth(avg, sample time.Duration) time.Duration {
	return (avg + sample) / 2
}

// Run initializes app and drives it until the platform reports quit, the
// app calls Context.Quit, or a callback fails. OnRelease runs whenever
// OnInit succeeded.
func Run(p Platform, clock Clock, app App, cfg Config) (err error) {
	cfg = cfg.withDefaults()
	ctx := &Context{}
	ctx.Width, ctx.Height = p.DrawableSize()

	if err := app.OnInit(ctx); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() {
		if rerr := app.OnRelease(ctx); rerr != nil && err == nil {
			err = fmt.Errorf("release: %w", rerr)
		}
	}()

	logger.Info("starting main loop",
		zap.Duration("update_step", cfg.UpdateStep),
		zap.Duration("frame_interval", cfg.FrameInterval),
	)

	start := clock.Now()
	updateTick := start
	lastReport := start
	var events []input.Event

	for !ctx.quit {
		loopStart := clock.Now()

		events = p.PollEvents(events[:0])
		for _, e := range events {
			if e.Type == input.EventQuit {
				ctx.quit = true
			}
			if err := app.OnEvent(ctx, e); err != nil {
				return fmt.Errorf("event %s: %w", e.Type, err)
			}
		}
		if ctx.quit {
			break
		}

		now := clock.Now()
		steps := 0
		for updateTick.Before(now) && !ctx.quit {
			if steps == cfg.MaxCatchUp {
				logger.Warn("update loop behind, dropping backlog",
					zap.Duration("behind", now.Sub(updateTick)))
				updateTick = now
				break
			}
			updateTick = updateTick.Add(cfg.UpdateStep)
			ctx.Steps++
			steps++
			t0 := clock.Now()
			err := app.OnUpdate(ctx, UpdateParams{
				Elapsed:      updateTick.Sub(start),
				Step:         ctx.Steps,
				StepDuration: cfg.UpdateStep,
			})
			if err != nil {
				return fmt.Errorf("update step %d: %w", ctx.Steps, err)
			}
			ctx.timings.Update = smooth(ctx.timings.Update, clock.Now().Sub(t0))
		}
		if ctx.quit {
			break
		}

		ctx.Width, ctx.Height = p.DrawableSize()
		ctx.Frames++
		t0 := clock.Now()
		if err := app.OnDraw(ctx, DrawParams{Elapsed: updateTick.Sub(start)}); err != nil {
			return fmt.Errorf("draw frame %d: %w", ctx.Frames, err)
		}
		ctx.timings.Draw = smooth(ctx.timings.Draw, clock.Now().Sub(t0))

		p.Swap()

		end := clock.Now()
		dt := end.Sub(loopStart)
		ctx.timings.Loop = smooth(ctx.timings.Loop, dt)
		if end.Sub(lastReport) >= time.Second {
			lastReport = end
			logger.Debug("frame timings",
				zap.Uint64("frames", ctx.Frames),
				zap.Uint64("steps", ctx.Steps),
				zap.Duration("loop", ctx.timings.Loop),
				zap.Duration("update", ctx.timings.Update),
				zap.Duration("draw", ctx.timings.Draw),
			)
		}
		if dt < cfg.FrameInterval {
			clock.Sleep(cfg.FrameInterval - dt)
		}
	}

	logger.Info("main loop finished", zap.Uint64("frames", ctx.Frames), zap.Uint64("steps", ctx.Steps))
	return nil
}
