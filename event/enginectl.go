package event

import "github.com/ingen-audio/ingen/graph"

// Activate calls Activate on every node currently in the store, in
// store order (parents before children).
type Activate struct {
	Base

	failed []string
}

func (e *Activate) PreProcess(d *Deps) {
	for _, p := range d.Store.Paths() {
		if n, ok := findNode(d.Store, p); ok {
			if err := n.Activate(); err != nil {
				e.failed = append(e.failed, string(p)+": "+err.Error())
			}
		}
	}
	if len(e.failed) > 0 {
		e.Result = fail(graph.Internal, "activation failed for "+e.failed[0])
		return
	}
	e.Result = success()
}

func (e *Activate) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *Activate) PostProcess(b *graph.Broadcaster) {
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// Deactivate is Activate's inverse, run before the driver stops
// pulling blocks.
type Deactivate struct {
	Base
}

func (e *Deactivate) PreProcess(d *Deps) {
	for _, p := range d.Store.Paths() {
		if n, ok := findNode(d.Store, p); ok {
			n.Deactivate()
		}
	}
	e.Result = success()
}

func (e *Deactivate) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *Deactivate) PostProcess(b *graph.Broadcaster) {
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// pluginRescanner is the optional surface a Host can implement to
// refresh its catalog; a host backed by a fixed test catalog need not
// implement it.
type pluginRescanner interface {
	Rescan() error
}

// LoadPlugins asks the configured plugin host to refresh its catalog.
type LoadPlugins struct {
	Base
}

func (e *LoadPlugins) PreProcess(d *Deps) {
	scanner, ok := d.Plugins.(pluginRescanner)
	if !ok {
		e.Result = fail(graph.Internal, "plugin host does not support rescanning")
		return
	}
	if err := scanner.Rescan(); err != nil {
		e.Result = fail(graph.Internal, err.Error())
		return
	}
	e.Result = success()
}

func (e *LoadPlugins) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *LoadPlugins) PostProcess(b *graph.Broadcaster) {
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// allNotesOffBody is the raw bytes of a MIDI "all notes off" (CC 123,
// value 0) message on channel 0. Every live Event-typed input port
// receives this same channel-0 message, whatever channel the port's
// upstream source normally carries; no copies for other channels are
// sent.
var allNotesOffBody = []byte{0xB0, 0x7B, 0x00}

// AllNotesOff injects an all-notes-off control message into every
// Event-typed input port in the graph. The
// set of target ports is resolved during pre_process; the injection
// itself happens in execute(), matching the RT-safe write pattern
// regular note data is delivered through.
type AllNotesOff struct {
	Base

	targets []*graph.Port
}

func (e *AllNotesOff) PreProcess(d *Deps) {
	for _, p := range d.Store.Paths() {
		port, ok := findPort(d.Store, p)
		if !ok || port.Type != graph.TypeEvent || port.Dir != graph.Input {
			continue
		}
		e.targets = append(e.targets, port)
	}
	e.Result = success()
}

func (e *AllNotesOff) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	for _, port := range e.targets {
		for v := 0; v < port.NumVoices(); v++ {
			if eb, ok := port.VoiceBuffer(v).(*graph.EventBuffer); ok {
				eb.Append(graph.BufferEvent{FrameOffset: 0, TypeURI: "midi:Controller", Body: allNotesOffBody})
			}
		}
	}
}

func (e *AllNotesOff) PostProcess(b *graph.Broadcaster) {
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// SetNextResponseID overrides the engine's own response-id counter, so
// a client reconnecting after a dropped connection can keep its
// request ids monotonic rather than restart from 1.
type SetNextResponseID struct {
	Base
	Next int
}

func (e *SetNextResponseID) PreProcess(d *Deps) {
	if e.Next < 1 {
		e.Result = fail(graph.Internal, "next response id must be positive")
		return
	}
	if d.Responses != nil {
		d.Responses.SetNextResponseID(e.Next)
	}
	e.Result = success()
}

func (e *SetNextResponseID) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *SetNextResponseID) PostProcess(b *graph.Broadcaster) {
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// DisableResponses tells the broadcaster to stop sending this client
// per-event Response acknowledgements; Put/Delta/Del and the rest of
// the broadcast stream keep flowing. Since the disabling client will
// never see this event's own response either, DisableResponses does
// not bother sending one.
type DisableResponses struct {
	Base
}

func (e *DisableResponses) PreProcess(d *Deps) {
	if e.Client == nil {
		e.Result = fail(graph.Internal, "disable_responses requires a client")
		return
	}
	e.Result = success()
}

func (e *DisableResponses) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *DisableResponses) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status != graph.Success {
		b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
		return
	}
	b.SetResponsesEnabled(e.Client, false)
}

// Quit asks the engine to begin an orderly shutdown. It does not call
// Stop/Close itself — those remain the embedding application's call —
// it only signals QuitCh so the application's main loop knows to.
type Quit struct {
	Base
}

func (e *Quit) PreProcess(d *Deps) {
	if d.Quit != nil {
		d.Quit.RequestQuit()
	}
	e.Result = success()
}

func (e *Quit) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *Quit) PostProcess(b *graph.Broadcaster) {
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}
