package viewer

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"
)

const (
	// DefaultPoolSize keeps one canvas on screen while the next is drawn.
	DefaultPoolSize = 2
	AcquireTimeout  = 5 * time.Second
)

var ErrPoolClosed = errors.New("frame pool is closed")

// FramePool recycles full-resolution canvases between frames.
type FramePool struct {
	frames chan *image.RGBA
	size   int
	bounds image.Rectangle
	mu     sync.Mutex
	closed bool

	metricsMu sync.RWMutex
	metrics   PoolMetrics
}

type PoolMetrics struct {
	InUse           int           `json:"frames_in_use"`
	TotalAcquired   int64         `json:"total_acquired"`
	TotalReleased   int64         `json:"total_released"`
	AcquireFailures int64         `json:"acquire_failures"`
	WaitTime        time.Duration `json:"wait_time_ns"`
}

func NewFramePool(bounds image.Rectangle, size int) *FramePool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	pool := &FramePool{
		frames: make(chan *image.RGBA, size),
		size:   size,
		bounds: bounds,
	}
	for range size {
		pool.frames <- image.NewRGBA(bounds)
	}
	return pool
}

func (p *FramePool) Size() int { return p.size }

func (p *FramePool) Acquire(ctx context.Context) (*image.RGBA, error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}

	start := time.Now()
	defer func() {
		p.metricsMu.Lock()
		p.metrics.WaitTime += time.Since(start)
		p.metricsMu.Unlock()
	}()

	select {
	case frame, ok := <-p.frames:
		if !ok {
			return nil, ErrPoolClosed
		}
		p.metricsMu.Lock()
		p.metrics.InUse++
		p.metrics.TotalAcquired++
		p.metricsMu.Unlock()
		return frame, nil
	case <-time.After(AcquireTimeout):
		p.metricsMu.Lock()
		p.metrics.AcquireFailures++
		p.metricsMu.Unlock()
		return nil, errors.New("timeout waiting for a free frame")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *FramePool) Release(frame *image.RGBA) {
	if frame == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || frame.Bounds() != p.bounds {
		return
	}

	p.metricsMu.Lock()
	p.metrics.InUse--
	p.metrics.TotalReleased++
	p.metricsMu.Unlock()

	p.frames <- frame
}

func (p *FramePool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.frames)
	for range p.frames {
	}
}

func (p *FramePool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// GetMetrics returns a snapshot of the pool counters.
func (p *FramePool) GetMetrics() PoolMetrics {
	p.metricsMu.RLock()
	defer p.metricsMu.RUnlock()
	return p.metrics
}
