// Package event implements the mutation/query events
// and their three-phase lifecycle (pre_process/execute/post_process).
// Every event type is a small struct carrying its payload plus an
// embedded Base for response plumbing; dispatch happens through a
// plain Go interface rather than a virtual base class.
package event

import (
	"sync"
	"sync/atomic"

	"github.com/ingen-audio/ingen/graph"
)

// Result is what an event reports once it has run: a closed Status
// plus a human-readable message and, for queries, a payload.
type Result struct {
	Status  graph.Status
	Message string
	Data    any
}

func ok() Result                       { return Result{Status: graph.Success} }
func fail(s graph.Status, msg string) Result { return Result{Status: s, Message: msg} }

// Base holds the fields every event carries regardless of kind.
type Base struct {
	ID         int
	Client     graph.ClientInterface
	ClientURI  string
	EnqueuedAt int64 // driver frames

	// Blocking events carry a semaphore; the pre-process worker will not
	// begin the next event's PreProcess until this one's semaphore is
	// released, and a blocking SubmitSync call waits on the same
	// semaphore. Both waiters observe one release, so the semaphore is
	// a closed channel rather than a single buffered token.
	Blocking bool
	sem      chan struct{}
	semOnce  sync.Once
	released int32

	Result Result
}

// Sema lazily creates and returns the event's one-shot semaphore
// channel. Safe to call concurrently from the submitter and the
// pre-process worker; every caller observes the same channel.
func (b *Base) Sema() chan struct{} {
	b.semOnce.Do(func() { b.sem = make(chan struct{}) })
	return b.sem
}

// Release closes the semaphore, waking every waiter at once. Safe to
// call more than once or with no waiters.
func (b *Base) Release() {
	if atomic.CompareAndSwapInt32(&b.released, 0, 1) {
		close(b.Sema())
	}
}

func (b *Base) Info() *Base { return b }

// Deps bundles everything an event's PreProcess needs to read or
// mutate the graph store. It is owned by the Engine and handed to
// events one at a time, since only one pre_process runs at a time.
type Deps struct {
	Store      *graph.Store
	Root       *graph.Patch
	Plugins    graph.Host
	Buffers    *graph.BufferFactory
	Control    ControlTable
	Broadcast  *graph.Broadcaster
	Driver     graph.Driver
	Responses  ResponseIDs
	Quit       QuitSignal

	SampleRate    float64
	BlockSize     int // nframes per block, fixed for the engine's lifetime
	EventCapacity int // default capacity for new Event-typed buffers
}

// ResponseIDs is the narrow surface SetNextResponseID needs from the
// engine's own response-id counter, kept here to avoid an import cycle
// (package event cannot import package ingen).
type ResponseIDs interface {
	SetNextResponseID(next int)
}

// QuitSignal is the narrow surface Quit needs to tell the engine an
// orderly shutdown was requested, kept here for the same reason.
type QuitSignal interface {
	RequestQuit()
}

// ControlTable is the narrow surface SetMetadata(controlBinding) and
// Learn need from package control, kept here to avoid an import cycle
// (package control depends only on graph).
type ControlTable interface {
	Bind(port graph.Path, binding any)
	Unbind(port graph.Path)
	ArmLearn(port graph.Path, apply func(graph.Value)) uint64
	CancelLearn(token uint64)
}

// Event is the common interface every event kind implements. PreProcess may allocate, read/modify the store, and build new
// compiled lists; Execute is RT-safe; PostProcess sends the response
// and broadcast and deallocates temporaries — see the phase-allowance
// table for the exact per-phase rules.
type Event interface {
	PreProcess(d *Deps)
	Execute(ctx *graph.ProcessContext, maid *graph.Maid)
	PostProcess(b *graph.Broadcaster)
	Info() *Base
}
