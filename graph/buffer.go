package graph

import "fmt"

// PortType is the set of wire types a Port or Connection can carry.
type PortType int

const (
	TypeUnknown PortType = iota
	TypeAudio
	TypeControl
	TypeCV
	TypeEvent
	TypeAtom
)

func (t PortType) String() string {
	switch t {
	case TypeAudio:
		return "Audio"
	case TypeControl:
		return "Control"
	case TypeCV:
		return "CV"
	case TypeEvent:
		return "Event"
	case TypeAtom:
		return "Atom"
	default:
		return "Unknown"
	}
}

// BufferEvent is one (frame_offset, type_uri, bytes) triple inside an
// Event buffer, kept in ascending frame_offset order.
type BufferEvent struct {
	FrameOffset uint32
	TypeURI     string
	Body        []byte
}

// Buffer carries exactly one typed payload for one audio block. Every
// method must be safe to call from the RT thread except where noted;
// none of them allocate once the buffer has reached its configured
// capacity.
type Buffer interface {
	Type() PortType
	Capacity() int
	// Clear zeros (Audio/Control/CV) or empties (Event/Atom) the buffer
	// in place. RT-safe.
	Clear()
	// MixIn combines src into this buffer per the type's mixdown policy
	// (Audio: sample-wise add, Control: policy-selected, Event: merge
	// preserving time order, Atom: replace). RT-safe; panics if src is
	// not the same concrete type.
	MixIn(src Buffer)
}

// AudioBuffer is nframes contiguous float32 samples. A Control buffer
// is represented as an AudioBuffer with Capacity() == 1.
type AudioBuffer struct {
	Samples []float32
}

func NewAudioBuffer(nframes int) *AudioBuffer {
	return &AudioBuffer{Samples: make([]float32, nframes)}
}

func (b *AudioBuffer) Type() PortType { return TypeAudio }
func (b *AudioBuffer) Capacity() int  { return len(b.Samples) }
func (b *AudioBuffer) Clear() {
	for i := range b.Samples {
		b.Samples[i] = 0
	}
}
func (b *AudioBuffer) MixIn(src Buffer) {
	s, ok := src.(*AudioBuffer)
	if !ok {
		panic(fmt.Sprintf("AudioBuffer.MixIn: incompatible source %T", src))
	}
	n := len(b.Samples)
	if len(s.Samples) < n {
		n = len(s.Samples)
	}
	for i := 0; i < n; i++ {
		b.Samples[i] += s.Samples[i]
	}
}

// Set broadcasts a single value across the whole buffer: used for
// Control buffers and the control->audio "broadcast" conversion
// policy, which holds the value flat across the block rather than
// ramping toward it.
func (b *AudioBuffer) Set(v float32) {
	for i := range b.Samples {
		b.Samples[i] = v
	}
}

// Last returns the final sample, the value a Control buffer (capacity 1
// or otherwise) is considered to be "holding" for the block.
func (b *AudioBuffer) Last() float32 {
	if len(b.Samples) == 0 {
		return 0
	}
	return b.Samples[len(b.Samples)-1]
}

// NewControlBuffer returns a degenerate capacity-1 AudioBuffer; a
// Control port's single scalar is represented this way rather than as
// a distinct buffer kind.
func NewControlBuffer() *AudioBuffer { return NewAudioBuffer(1) }

// CVBuffer is control-rate audio: structurally identical to AudioBuffer
// but tagged with TypeCV so the conversion table can distinguish it
// from full-rate Audio.
type CVBuffer struct {
	AudioBuffer
}

func NewCVBuffer(nframes int) *CVBuffer {
	return &CVBuffer{AudioBuffer: AudioBuffer{Samples: make([]float32, nframes)}}
}
func (b *CVBuffer) Type() PortType { return TypeCV }
func (b *CVBuffer) MixIn(src Buffer) {
	switch s := src.(type) {
	case *CVBuffer:
		b.AudioBuffer.MixIn(&s.AudioBuffer)
	case *AudioBuffer:
		b.AudioBuffer.MixIn(s)
	default:
		panic(fmt.Sprintf("CVBuffer.MixIn: incompatible source %T", src))
	}
}

// EventBuffer holds a capped, time-ordered sequence of (frame_offset,
// type, bytes) triples.
type EventBuffer struct {
	events   []BufferEvent
	capacity int
}

func NewEventBuffer(capacity int) *EventBuffer {
	return &EventBuffer{capacity: capacity}
}

func (b *EventBuffer) Type() PortType { return TypeEvent }
func (b *EventBuffer) Capacity() int  { return b.capacity }
func (b *EventBuffer) Clear()         { b.events = b.events[:0] }

// Append inserts ev keeping FrameOffset order; returns NoSpace if the
// buffer has reached its configured capacity.
func (b *EventBuffer) Append(ev BufferEvent) Status {
	if b.capacity > 0 && len(b.events) >= b.capacity {
		return NoSpace
	}
	i := len(b.events)
	for i > 0 && b.events[i-1].FrameOffset > ev.FrameOffset {
		i--
	}
	b.events = append(b.events, BufferEvent{})
	copy(b.events[i+1:], b.events[i:])
	b.events[i] = ev
	return Success
}

func (b *EventBuffer) Events() []BufferEvent { return b.events }

// MixIn merges src's events into b preserving time order.
func (b *EventBuffer) MixIn(src Buffer) {
	s, ok := src.(*EventBuffer)
	if !ok {
		panic(fmt.Sprintf("EventBuffer.MixIn: incompatible source %T", src))
	}
	for _, ev := range s.events {
		b.Append(ev)
	}
}

// AtomBuffer holds a single length-prefixed typed structured value.
type AtomBuffer struct {
	TypeURI string
	Body    []byte
}

func NewAtomBuffer() *AtomBuffer { return &AtomBuffer{} }

func (b *AtomBuffer) Type() PortType { return TypeAtom }
func (b *AtomBuffer) Capacity() int  { return len(b.Body) }
func (b *AtomBuffer) Clear() {
	b.TypeURI = ""
	b.Body = nil
}

// MixIn replaces b's content with src's (Object/Atom mixdown policy is
// replace).
func (b *AtomBuffer) MixIn(src Buffer) {
	s, ok := src.(*AtomBuffer)
	if !ok {
		panic(fmt.Sprintf("AtomBuffer.MixIn: incompatible source %T", src))
	}
	b.TypeURI = s.TypeURI
	b.Body = append(b.Body[:0], s.Body...)
}

// LiftEventToAtom wraps ev as an atom sequence body, implementing the
// Event->Atom "lift" conversion.
func LiftEventToAtom(ev *EventBuffer, sequenceTypeURI string) *AtomBuffer {
	out := NewAtomBuffer()
	out.TypeURI = sequenceTypeURI
	for _, e := range ev.events {
		out.Body = append(out.Body, e.Body...)
	}
	return out
}

// NewBuffer constructs a fresh, cleared Buffer of the given type and
// capacity. capacity means nframes for Audio/CV, 1 for Control, the
// event-slot cap for Event, and is ignored for Atom.
func NewBuffer(t PortType, capacity int) Buffer {
	switch t {
	case TypeAudio:
		return NewAudioBuffer(capacity)
	case TypeControl:
		return NewControlBuffer()
	case TypeCV:
		return NewCVBuffer(capacity)
	case TypeEvent:
		return NewEventBuffer(capacity)
	case TypeAtom:
		return NewAtomBuffer()
	default:
		panic(fmt.Sprintf("NewBuffer: unknown type %v", t))
	}
}
