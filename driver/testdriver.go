// Package driver provides an in-process software clock satisfying
// graph.Driver, used in place of a real audio backend for tests and
// examples. It pulls blocks on a timer from its own goroutine rather
// than reacting to a hardware render callback.
package driver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ingen-audio/ingen/graph"
)

// Callback is invoked once per block with the number of frames to
// render. It must not block for longer than one block's wall-clock
// duration or TestDriver will fall behind.
type Callback func(nframes int)

// TestPort is the DriverPort TestDriver hands back from AddPort: just
// enough to identify the mirror for later removal and inspection in
// tests.
type TestPort struct {
	Path graph.Path
	Dir  graph.Direction
	Type graph.PortType
}

// TestDriver is a free-running or manually-stepped software clock.
type TestDriver struct {
	sampleRate  float64
	blockLength int
	frameTime   int64 // atomic

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool

	ports map[graph.Path]*TestPort
}

// NewTestDriver builds a driver at the given sample rate and block
// size. Neither changes once the driver starts.
func NewTestDriver(sampleRate float64, blockLength int) *TestDriver {
	return &TestDriver{
		sampleRate:  sampleRate,
		blockLength: blockLength,
		ports:       make(map[graph.Path]*TestPort),
	}
}

func (d *TestDriver) SampleRate() float64 { return d.sampleRate }
func (d *TestDriver) BlockLength() int    { return d.blockLength }
func (d *TestDriver) FrameTime() int64    { return atomic.LoadInt64(&d.frameTime) }

// AddPort registers a mirror of a root external port. TestDriver has no
// real hardware to bind to, so the mirror is just a record kept for
// Ports() and round-trip removal.
func (d *TestDriver) AddPort(path graph.Path, dir graph.Direction, t graph.PortType) graph.DriverPort {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := &TestPort{Path: path, Dir: dir, Type: t}
	d.ports[path] = p
	return p
}

// RemovePort drops a previously added mirror. h must be the value
// AddPort returned; any other type is a caller bug and is ignored.
func (d *TestDriver) RemovePort(h graph.DriverPort) {
	tp, ok := h.(*TestPort)
	if !ok || tp == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.ports, tp.Path)
}

// Ports returns a snapshot of every currently mirrored port, in no
// particular order.
func (d *TestDriver) Ports() []*TestPort {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*TestPort, 0, len(d.ports))
	for _, p := range d.ports {
		out = append(out, p)
	}
	return out
}

func (p *TestPort) String() string {
	return fmt.Sprintf("%s(%s,%s)", p.Path, p.Dir, p.Type)
}

// Step renders exactly one block synchronously, advancing FrameTime.
// Used by tests that want deterministic, non-realtime stepping instead
// of Run's wall-clock pacing.
func (d *TestDriver) Step(cb Callback) {
	cb(d.blockLength)
	atomic.AddInt64(&d.frameTime, int64(d.blockLength))
}

// Run starts a background goroutine calling cb once per block at the
// pace a block's duration implies (blockLength/sampleRate seconds).
// Call Stop to end it.
func (d *TestDriver) Run(cb Callback) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.running = true
	d.mu.Unlock()

	period := time.Duration(float64(d.blockLength) / d.sampleRate * float64(time.Second))
	if period <= 0 {
		period = time.Millisecond
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.Step(cb)
			}
		}
	}()
}

// Stop ends a Run loop and waits for its goroutine to exit. Safe to
// call even if Run was never called.
func (d *TestDriver) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	running := d.running
	d.running = false
	d.mu.Unlock()
	if !running {
		return
	}
	cancel()
	d.wg.Wait()
}
