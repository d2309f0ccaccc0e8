package control

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/ingen-audio/ingen/graph"
)

// learnSlot is the single in-flight MIDI-Learn request, if any. Ingen's
// MIDI-Learn has always been "arm, then bind whatever moves next", not a
// per-port queue, so one slot is sufficient.
type learnSlot struct {
	token uint64
	port  graph.Path
	apply func(graph.Value)
}

// Table is the live port->Binding map plus the MIDI-Learn state
// machine. It satisfies event.ControlTable without importing package
// event, avoiding a cycle.
type Table struct {
	mu       sync.Mutex
	bindings map[graph.Path]Binding
	learning *learnSlot
	nextTok  uint64

	// submit delivers a freshly matched control value back into the
	// running graph as an ordinary event, keeping the MIDI input thread
	// from ever touching the store directly. Wired by the engine at startup.
	submit func(port graph.Path, value graph.Value)
}

// NewTable builds an empty binding table. submit is called from
// whatever goroutine feeds MIDI input through HandleMessage; it must
// not block.
func NewTable(submit func(port graph.Path, value graph.Value)) *Table {
	return &Table{bindings: make(map[graph.Path]Binding), submit: submit}
}

// Bind records binding for port, replacing any prior binding. binding
// is typically a graph.Value produced by ParseBinding's encoding, but a
// Binding value is also accepted directly for programmatic callers.
func (t *Table) Bind(port graph.Path, binding any) {
	var b Binding
	switch v := binding.(type) {
	case Binding:
		b = v
	case graph.Value:
		parsed, err := ParseBinding(v)
		if err != nil {
			return
		}
		b = parsed
	default:
		return
	}
	t.mu.Lock()
	t.bindings[port] = b
	t.mu.Unlock()
}

// Unbind removes port's binding, if any.
func (t *Table) Unbind(port graph.Path) {
	t.mu.Lock()
	delete(t.bindings, port)
	t.mu.Unlock()
}

// ArmLearn arms the learn state machine: the next MIDI message
// HandleMessage sees is bound to port, and apply is called with the
// message's initial scaled value.
func (t *Table) ArmLearn(port graph.Path, apply func(graph.Value)) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextTok++
	tok := t.nextTok
	t.learning = &learnSlot{token: tok, port: port, apply: apply}
	return tok
}

// CancelLearn disarms the learn state machine if token is still the
// currently armed request.
func (t *Table) CancelLearn(token uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.learning != nil && t.learning.token == token {
		t.learning = nil
	}
}

// HandleMessage is the MIDI input entry point: it completes a pending
// Learn, or matches msg against existing bindings and calls submit for
// each match. Safe to call from any goroutine; it never blocks.
func (t *Table) HandleMessage(msg midi.Message) {
	var ch, ctrl, val uint8
	switch {
	case msg.GetControlChange(&ch, &ctrl, &val):
		t.dispatch(KindCC, ch, ctrl, val)
	case msg.GetNoteOn(&ch, &ctrl, &val):
		t.dispatch(KindNote, ch, ctrl, val)
	case msg.GetNoteOff(&ch, &ctrl, &val):
		// note-off carries no useful control value for a binding.
	}
}

func (t *Table) dispatch(kind Kind, ch, ctrl, val uint8) {
	t.mu.Lock()
	if t.learning != nil {
		slot := t.learning
		t.learning = nil
		b := Binding{Kind: kind, Channel: ch, Controller: ctrl, Min: 0, Max: 1}
		t.bindings[slot.port] = b
		t.mu.Unlock()
		if slot.apply != nil {
			slot.apply(graph.FloatValue(b.Scale(val)))
		}
		if t.submit != nil {
			t.submit(slot.port, graph.FloatValue(b.Scale(val)))
		}
		return
	}
	var matches []struct {
		port graph.Path
		b    Binding
	}
	for port, b := range t.bindings {
		if b.Kind == kind && b.Channel == ch && b.Controller == ctrl {
			matches = append(matches, struct {
				port graph.Path
				b    Binding
			}{port, b})
		}
	}
	t.mu.Unlock()

	for _, m := range matches {
		if t.submit != nil {
			t.submit(m.port, graph.FloatValue(m.b.Scale(val)))
		}
	}
}
