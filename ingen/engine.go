// Package ingen assembles the graph, event, equeue, and control
// packages into a runnable engine: one store, one root patch, one
// event queue, and a driver-pull Run method that walks each patch's
// compiled list once per block. Engine carries a UUID identity, an
// init-state enum, and a mutex-guarded struct of subsystems built up
// in NewEngine, with symmetric Start/Stop methods.
package ingen

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ingen-audio/ingen/control"
	"github.com/ingen-audio/ingen/driver"
	"github.com/ingen-audio/ingen/equeue"
	"github.com/ingen-audio/ingen/event"
	"github.com/ingen-audio/ingen/graph"
)

// pullDriver is the optional surface a graph.Driver may additionally
// implement to let the engine own the pull loop itself, rather than
// the driver calling back into the engine from outside. A real
// hardware backend instead registers its render callback with its own
// SDK and calls Engine.Run directly from there, so it need not
// implement this.
type pullDriver interface {
	Run(driver.Callback)
	Stop()
}

// initState tracks an engine's lifecycle: built once, run any number
// of times, torn down once.
type initState int

const (
	stateNew initState = iota
	stateRunning
	stateClosed
)

// Config is the set of choices NewEngine needs up front; everything
// else (the store, the root patch, the buffer factory) the engine
// builds for itself.
type Config struct {
	SampleRate float64
	BlockSize  int // nframes per block

	// EventCapacity is the default buffer size for newly created
	// Event-typed ports; 1024 if zero.
	EventCapacity int

	// QueueCapacity bounds how many events may be in flight in each
	// equeue.Queue stage at once; 64 if zero.
	QueueCapacity int

	Driver       graph.Driver
	Plugins      graph.Host
	ErrorHandler graph.ErrorHandler
}

func (c *Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("ingen: sample rate must be positive")
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("ingen: block size must be positive")
	}
	if c.Driver == nil {
		return fmt.Errorf("ingen: driver is required")
	}
	if c.Plugins == nil {
		return fmt.Errorf("ingen: plugin host is required")
	}
	return nil
}

// Engine owns every subsystem of a running graph: the store, the root
// patch, the event pipeline, the control-binding table, and the
// driver pulling blocks through it.
type Engine struct {
	id uuid.UUID
	mu sync.RWMutex

	store     *graph.Store
	root      *graph.Patch
	buffers   *graph.BufferFactory
	plugins   graph.Host
	broadcast *graph.Broadcaster
	maid      *graph.Maid
	queue     *equeue.Queue
	control   *control.Table
	driver    graph.Driver

	errorHandler graph.ErrorHandler
	state        initState

	responseID int32 // atomic

	quit     chan struct{}
	quitOnce sync.Once

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewEngine validates config, builds the store and its root patch, and
// only then wires the event queue and control table together.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.EventCapacity <= 0 {
		cfg.EventCapacity = 1024
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 64
	}
	errHandler := cfg.ErrorHandler
	if errHandler == nil {
		errHandler = graph.DefaultErrorHandler{}
	}

	store := graph.NewStore()
	buffers := graph.NewBufferFactory()
	root := graph.NewPatch(graph.Root, nil, buffers)
	root.InternalPoly = 1
	if status := store.Insert(graph.Root, root); status != graph.Success {
		return nil, fmt.Errorf("ingen: failed to seed root patch: %s", status)
	}

	broadcast := graph.NewBroadcaster()
	maid := graph.NewMaid()

	e := &Engine{
		id:           uuid.New(),
		store:        store,
		root:         root,
		buffers:      buffers,
		plugins:      cfg.Plugins,
		broadcast:    broadcast,
		maid:         maid,
		driver:       cfg.Driver,
		errorHandler: errHandler,
		state:        stateNew,
		quit:         make(chan struct{}),
	}

	ctrl := control.NewTable(func(port graph.Path, value graph.Value) {
		e.SubmitAsync(&event.SetPortValue{Path: port, Value: value})
	})
	e.control = ctrl

	deps := &event.Deps{
		Store:         store,
		Root:          root,
		Plugins:       cfg.Plugins,
		Buffers:       buffers,
		Control:       ctrl,
		Broadcast:     broadcast,
		Driver:        cfg.Driver,
		Responses:     e,
		Quit:          e,
		SampleRate:    cfg.SampleRate,
		BlockSize:     cfg.BlockSize,
		EventCapacity: cfg.EventCapacity,
	}
	e.queue = equeue.New(deps, cfg.QueueCapacity)
	e.queue.SetErrorHandler(errHandler)

	return e, nil
}

func (e *Engine) ID() uuid.UUID                   { return e.id }
func (e *Engine) Store() *graph.Store             { return e.store }
func (e *Engine) Root() *graph.Patch              { return e.root }
func (e *Engine) Broadcaster() *graph.Broadcaster { return e.broadcast }
func (e *Engine) ControlTable() *control.Table    { return e.control }
func (e *Engine) Plugins() graph.Host             { return e.plugins }

func (e *Engine) nextResponseID() int {
	return int(atomic.AddInt32(&e.responseID, 1))
}

// SetNextResponseID satisfies event.ResponseIDs: the next call to
// Submit/SubmitAsync on an event with no ID of its own receives next.
func (e *Engine) SetNextResponseID(next int) {
	atomic.StoreInt32(&e.responseID, int32(next-1))
}

// RequestQuit satisfies event.QuitSignal. Safe to call more than once;
// only the first call closes QuitCh.
func (e *Engine) RequestQuit() {
	e.quitOnce.Do(func() { close(e.quit) })
}

// QuitCh is closed once an event.Quit has run, so an embedding
// application's main loop can select on it and call Stop/Close.
func (e *Engine) QuitCh() <-chan struct{} { return e.quit }

// Start launches the event queue's workers and the driver's pull loop,
// activating every node already in the graph first.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateRunning {
		return fmt.Errorf("ingen: engine already running")
	}
	if e.state == stateClosed {
		return fmt.Errorf("ingen: engine already closed")
	}

	e.queue.Start(e.broadcast)

	for _, port := range e.root.ExternalPorts {
		port.SetDriverHandle(e.driver.AddPort(port.Path(), port.Dir, port.Type))
	}

	activate := &event.Activate{}
	e.queue.SubmitSync(activate)
	if activate.Result.Status != graph.Success {
		e.queue.Close()
		return fmt.Errorf("ingen: activation failed: %s", activate.Result.Message)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	group, gctx := errgroup.WithContext(ctx)
	e.group = group

	if pd, ok := e.driver.(pullDriver); ok {
		group.Go(func() error {
			pd.Run(func(nframes int) {
				if gctx.Err() != nil {
					return
				}
				e.Run(nframes)
			})
			return nil
		})
	}

	e.state = stateRunning
	return nil
}

// Stop deactivates every node and halts the driver and event queue.
// Safe to call on an engine that was never started.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateRunning {
		return nil
	}

	// Deactivate is blocking, so this waits until the driver's next block
	// has executed it; only then is the driver stopped.
	deactivate := &event.Deactivate{}
	deactivate.Blocking = true
	e.queue.SubmitSync(deactivate)

	if stoppable, ok := e.driver.(interface{ Stop() }); ok {
		stoppable.Stop()
	}
	if e.cancel != nil {
		e.cancel()
	}
	if e.group != nil {
		if err := e.group.Wait(); err != nil {
			e.errorHandler.HandleError(err)
		}
	}

	deactivate = &event.Deactivate{}
	e.queue.SubmitSync(deactivate)

	for _, port := range e.root.ExternalPorts {
		if h := port.DriverHandle(); h != nil {
			e.driver.RemovePort(h)
			port.SetDriverHandle(nil)
		}
	}

	e.queue.Close()
	e.state = stateNew
	return nil
}

// Close permanently shuts down the engine; unlike Stop it cannot be
// restarted afterward.
func (e *Engine) Close() error {
	if err := e.Stop(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = stateClosed
	return nil
}

// Submit hands ev to the pre-process worker and, if it is a blocking
// event, waits for its full round trip before returning.
func (e *Engine) Submit(ev event.Event) bool {
	if ev.Info().ID == 0 {
		ev.Info().ID = e.nextResponseID()
	}
	return e.queue.SubmitSync(ev)
}

// SubmitAsync submits ev without waiting even if it is marked
// Blocking; used for control-table callbacks, which must never block
// the MIDI input thread.
func (e *Engine) SubmitAsync(ev event.Event) bool {
	if ev.Info().ID == 0 {
		ev.Info().ID = e.nextResponseID()
	}
	return e.queue.Submit(ev)
}

// Run executes exactly one block: it drains whatever events the
// pre-process worker has prepared, then walks the root patch's
// compiled list (recursing into nested patches), then drains the
// Maid. Called once per Driver callback; also callable directly by
// tests that want deterministic, non-realtime stepping via
// driver.TestDriver.Step.
func (e *Engine) Run(nframes int) {
	ctx := &graph.ProcessContext{
		FrameStart: e.driver.FrameTime(),
		NFrames:    nframes,
		Driver:     e.driver,
	}

	e.queue.Drain(ctx, e.maid)
	runPatch(ctx, e.maid, e.root, e.errorHandler)
	e.maid.Drain()
}

// runPatch walks one patch's currently published compiled list,
// running each node's mix steps and then its plugin Instance once per
// active voice, and recurses into any nested patch it encounters.
func runPatch(ctx *graph.ProcessContext, maid *graph.Maid, patch *graph.Patch, errs graph.ErrorHandler) {
	if !patch.Enabled {
		return
	}
	list := patch.Compiled()
	for _, step := range list.Steps {
		for _, ms := range step.MixSteps {
			for v := 0; v < ms.Port.NumVoices(); v++ {
				mixBuf := ms.Port.VoiceBuffer(v)
				mixBuf.Clear()
				for _, src := range ms.Sources {
					mixBuf.MixIn(src.VoiceBuffer(v))
				}
			}
		}

		if step.Node.IsPatch() {
			runPatch(ctx, maid, step.Node.Subpatch, errs)
			continue
		}

		inst := step.Node.Instance
		if inst == nil || !step.Node.Active() {
			continue
		}
		voices := step.Node.EffectivePolyphony()
		for v := 0; v < voices; v++ {
			for _, p := range step.Node.Ports {
				inst.ConnectPort(p.Index, p.VoiceBuffer(v))
			}
			if err := inst.Run(context.Background(), ctx.NFrames); err != nil {
				// A plugin's Run is expected to be infallible in normal
				// operation; surface anything else rather than silently
				// skipping the remaining voices.
				errs.HandleError(err)
				break
			}
		}
	}
}
