package graph

import "sync"

// Disposable is anything an execute()-phase swap can retire: an old
// CompiledList, a displaced []*BufferHandle, a detached subtree, or any
// other object whose lifetime must outlive the block that retired it.
type Disposable interface {
	Dispose()
}

// disposeFunc adapts a plain func() into a Disposable.
type disposeFunc func()

func (f disposeFunc) Dispose() { f() }

// DisposeFunc wraps fn as a Disposable.
func DisposeFunc(fn func()) Disposable { return disposeFunc(fn) }

// Maid is the deferred-free queue: execute() appends retired objects
// to it by pointer, and Engine.Run drains it at the end of each block,
// on the thread running that block, after the compiled lists have been
// walked. The post-process worker does not drain it.
//
// Push is lock-free-compatible in spirit (a single mutex guarding a
// slice append, never a blocking call) so it is safe to call from the
// RT thread.
type Maid struct {
	mu      sync.Mutex
	pending []Disposable
}

func NewMaid() *Maid { return &Maid{} }

// Push appends an object for later reclamation. Called from execute();
// never blocks and never allocates beyond an occasional slice grow,
// matching the RT-phase allowance table.
func (m *Maid) Push(d Disposable) {
	if d == nil {
		return
	}
	m.mu.Lock()
	m.pending = append(m.pending, d)
	m.mu.Unlock()
}

// PushBuffers is a convenience for the common case of retiring a whole
// per-voice buffer array.
func (m *Maid) PushBuffers(handles []*BufferHandle) {
	if len(handles) == 0 {
		return
	}
	m.Push(DisposeFunc(func() {
		for _, h := range handles {
			h.Release()
		}
	}))
}

// Drain calls Dispose on every object accumulated since the last
// Drain; Engine.Run calls it once per block.
func (m *Maid) Drain() {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, d := range batch {
		d.Dispose()
	}
}

// Pending reports how many objects are queued for the next Drain, used
// by tests asserting old buffers are observed freed only after the
// next Drain.
func (m *Maid) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
