package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/pipo/internal/engine/gpu"
	"github.com/Faultbox/pipo/internal/engine/heightfield"
	"github.com/Faultbox/pipo/internal/logger"
)

// IndexCache keeps one uploaded index buffer per heightfield size.
// It is used from the render thread only.
type IndexCache struct {
	dev     gpu.Device
	buffers map[heightfield.Size]gpu.Buffer
}

// NewIndexCache creates an empty cache on dev.
func NewIndexCache(dev gpu.Device) *IndexCache {
	return &IndexCache{dev: dev, buffers: make(map[heightfield.Size]gpu.Buffer)}
}

// Get returns the buffer for size, uploading indices on first use.
func (c *IndexCache) Get(size heightfield.Size, indices []uint32) (gpu.Buffer, error) {
	if b, ok := c.buffers[size]; ok {
		return b, nil
	}
	if len(indices) != size.IndexCount() {
		return 0, fmt.Errorf("index cache: %d indices for %dx%d", len(indices), size.W, size.H)
	}
	b, err := c.dev.CreateIndexBuffer(gpu.Bytes(indices))
	if err != nil {
		return 0, fmt.Errorf("index cache: %w", err)
	}
	c.buffers[size] = b
	logger.Debug("heightfield index buffer uploaded",
		zap.Int("w", size.W), zap.Int("h", size.H), zap.Int("indices", len(indices)))
	return b, nil
}

// Len returns the number of cached buffers.
func (c *IndexCache) Len() int { return len(c.buffers) }

// Release destroys every cached buffer.
func (c *IndexCache) Release() {
	for size, b := range c.buffers {
		c.dev.DestroyBuffer(b)
		delete(c.buffers, size)
	}
}
