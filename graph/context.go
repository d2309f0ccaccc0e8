package graph

// Driver is the pull-model audio/MIDI I/O interface the engine
// consumes. The core never depends on a specific driver SDK; a reference
// in-process implementation lives in package driver.
type Driver interface {
	SampleRate() float64
	BlockLength() int
	FrameTime() int64

	// AddPort mirrors one of the root patch's external ports onto the
	// driver, returning a DriverPort the caller can later pass to
	// RemovePort. Called once per port at activate() and again for
	// every CreatePort on the root patch while running.
	AddPort(path Path, dir Direction, t PortType) DriverPort

	// RemovePort tears down the driver-side mirror of a previously
	// added root external port. A no-op if the port was never mirrored.
	RemovePort(p DriverPort)
}

// DriverPort is the opaque handle a Driver hands back from AddPort,
// carried by the owning graph.Port so a later Delete can find it again.
type DriverPort interface{}

// ProcessContext is the per-block state constructed fresh each block:
// frame range, nframes, and handles to the driver and message-context
// worker.
type ProcessContext struct {
	FrameStart int64
	NFrames    int
	Driver     Driver

	// MessageContext, when non-nil, lets a node's process() hand off
	// work to the non-audio-rate worker.

	MessageContext MessageContext
}

// MessageContext is the narrow surface a plugin Instance can use to
// request non-RT work without blocking the audio thread.
type MessageContext interface {
	// Schedule enqueues fn to run on the message-context worker. It
	// never blocks; fn may run after the current block has returned.
	Schedule(fn func())
}

// End returns the exclusive end of this block's frame range, used by
// event admission.
func (c *ProcessContext) End() int64 { return c.FrameStart + int64(c.NFrames) }

// InBlock reports whether a given frame_offset (relative to
// FrameStart) belongs to this block, i.e. offset is in [0, NFrames).
// An offset of exactly NFrames belongs to the next block.
func (c *ProcessContext) InBlock(offsetWithinBlock int) bool {
	return offsetWithinBlock >= 0 && offsetWithinBlock < c.NFrames
}
