// Package main is the entry point for the pipo heightfield demo.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/pipo/internal/config"
	"github.com/Faultbox/pipo/internal/demo"
	"github.com/Faultbox/pipo/internal/engine/gpu/opengl"
	"github.com/Faultbox/pipo/internal/engine/loop"
	"github.com/Faultbox/pipo/internal/engine/window"
	"github.com/Faultbox/pipo/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== pipo ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("demo failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("demo closed normally")
}

func run(cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		MSAA:       cfg.Window.MSAA,
	})
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	defer win.Close()

	dev, err := opengl.New()
	if err != nil {
		return fmt.Errorf("opengl: %w", err)
	}
	defer dev.Close()

	win.SetMouseCaptured(true)
	defer win.SetMouseCaptured(false)

	return loop.Run(win, loop.SystemClock{}, demo.New(cfg, dev), loop.Config{
		UpdateStep:    cfg.Loop.UpdateStep,
		FrameInterval: cfg.Loop.FrameInterval,
	})
}
