package demo

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/pipo/internal/logger"
)

// Asset identifies a reloadable scene input.
type Asset int

// Reloadable assets.
const (
	AssetModel Asset = iota
	AssetHeightmap
)

func (a Asset) String() string {
	if a == AssetHeightmap {
		return "heightmap"
	}
	return "model"
}

// Watcher reports changes to asset files. Directories are watched rather
// than files so editors that replace files on save are still seen.
// It never touches GPU state; consumers drain Reloads on the loop thread.
type Watcher struct {
	fs      *fsnotify.Watcher
	files   map[string]Asset
	reloads chan Asset
	wg      sync.WaitGroup
	log     *zap.Logger
}

// NewWatcher watches the given asset files. Empty paths are ignored.
func NewWatcher(files map[Asset]string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("asset watcher: %w", err)
	}
	w := &Watcher{
		fs:      fw,
		files:   make(map[string]Asset),
		reloads: make(chan Asset, 8),
		log:     logger.Named("assets"),
	}

	dirs := make(map[string]bool)
	for asset, path := range files {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("asset watcher: %w", err)
		}
		w.files[abs] = asset
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("asset watcher: watch %s: %w", dir, err)
		}
		w.log.Debug("watching directory", zap.String("dir", dir))
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			asset, ok := w.files[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			select {
			case w.reloads <- asset:
			default:
				// a reload is already queued
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// Reloads delivers changed assets. Bursts of writes may coalesce.
func (w *Watcher) Reloads() <-chan Asset {
	return w.reloads
}

// Close stops watching and waits for the event goroutine.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
