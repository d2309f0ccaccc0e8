// Package equeue is the event pipeline queue: a channel-driven
// pre-process worker feeds prepared events to the RT thread, which
// drains them up to a block boundary and calls Execute, handing the
// result on to a post-process worker. Three buffered-channel stages
// (incoming, ready, post) replace a single mutation queue so that
// store mutation, RT execution, and client notification each run on
// their own goroutine.
package equeue

import (
	"context"
	"sync"

	"github.com/ingen-audio/ingen/event"
	"github.com/ingen-audio/ingen/graph"
)

// Queue owns the three channels an event travels through: submitted,
// prepared (ready for the RT thread), and finished (ready to notify
// clients). Capacity bounds how many events may be in flight in each
// stage at once.
type Queue struct {
	deps   *event.Deps
	errors graph.ErrorHandler

	incoming chan event.Event
	ready    chan event.Event
	post     chan event.Event

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New builds a queue with the given per-stage buffer capacity. deps is
// shared with every event's PreProcess call; only the pre-process
// worker goroutine ever touches it, preserving the single-writer
// invariant on the store.
func New(deps *event.Deps, capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		deps:     deps,
		errors:   graph.DefaultErrorHandler{},
		incoming: make(chan event.Event, capacity),
		ready:    make(chan event.Event, capacity),
		post:     make(chan event.Event, capacity),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetErrorHandler overrides the default stderr-printing handler used
// for conditions that have no event to carry a response back (a full
// post-process channel, a panicking PostProcess call).
func (q *Queue) SetErrorHandler(h graph.ErrorHandler) {
	if h != nil {
		q.errors = h
	}
}

// Start launches the pre-process and post-process worker goroutines.
// Safe to call more than once.
func (q *Queue) Start(broadcast *graph.Broadcaster) {
	if q.started {
		return
	}
	q.started = true
	q.wg.Add(2)
	go q.runPreProcess()
	go q.runPostProcess(broadcast)
}

// Close stops accepting new events and waits for both workers to exit.
// Events still waiting in the incoming or post-process stage when Close
// is called are not processed.
func (q *Queue) Close() {
	q.cancel()
	q.wg.Wait()
}

// Submit enqueues an event for pre-processing. Non-blocking; returns
// false if the incoming stage is full or the queue has been closed.
func (q *Queue) Submit(ev event.Event) bool {
	if q.ctx.Err() != nil {
		return false
	}
	select {
	case q.incoming <- ev:
		return true
	case <-q.ctx.Done():
		return false
	default:
		return false
	}
}

// SubmitSync is Submit plus a wait for the event's full round trip when
// the event is marked Blocking; for a non-blocking event it behaves
// exactly like Submit.
func (q *Queue) SubmitSync(ev event.Event) bool {
	if !q.Submit(ev) {
		return false
	}
	if ev.Info().Blocking {
		<-ev.Info().Sema()
	}
	return true
}

func (q *Queue) runPreProcess() {
	defer q.wg.Done()
	var last event.Event
	for {
		select {
		case <-q.ctx.Done():
			return
		case ev, open := <-q.incoming:
			if !open {
				return
			}
			// If the previously dequeued event was blocking, its
			// effects must be fully visible (execute() has run and
			// released the semaphore) before this one's pre_process
			// sees the store: this is the barrier a blocking event
			// forms against everything submitted after it, whether
			// or not the next submitter is the one still waiting on
			// SubmitSync.
			if last != nil && last.Info().Blocking {
				select {
				case <-last.Info().Sema():
				case <-q.ctx.Done():
					return
				}
			}
			last = ev
			ev.PreProcess(q.deps)
			select {
			case q.ready <- ev:
			case <-q.ctx.Done():
				return
			}
		}
	}
}

func (q *Queue) runPostProcess(broadcast *graph.Broadcaster) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case ev, open := <-q.post:
			if !open {
				return
			}
			ev.PostProcess(broadcast)
		}
	}
}

// Drain is called from the RT thread once per block: it pulls every
// event currently sitting in the ready stage, runs Execute on each in
// arrival order, releases any blocking semaphore, and forwards the
// event to the post-process stage. It never blocks: events that would
// overflow the post stage are handed to the error handler and dropped
// rather than stalling the audio thread.
func (q *Queue) Drain(ctx *graph.ProcessContext, maid *graph.Maid) int {
	n := 0
	for {
		select {
		case ev := <-q.ready:
			ev.Execute(ctx, maid)
			ev.Info().Release()
			select {
			case q.post <- ev:
			default:
				q.errors.HandleError(errDroppedResponse{ev})
			}
			n++
		default:
			return n
		}
	}
}

type errDroppedResponse struct{ ev event.Event }

func (e errDroppedResponse) Error() string {
	return "equeue: post-process stage full, dropped response for event"
}
