package graph

import "github.com/google/uuid"

// Direction is a Port's signal direction.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "Output"
	}
	return "Input"
}

// Object is the shared struct Patch, Node, and Port all embed, carrying
// the attributes common to every object kind the store can hold.
type Object struct {
	handle     uuid.UUID
	path       Path
	properties Properties
}

func newObject(path Path) Object {
	return Object{handle: uuid.New(), path: path, properties: make(Properties)}
}

// Handle returns the UUID identifying this incarnation of the object;
// the path is returned separately by Path.
func (o *Object) Handle() uuid.UUID { return o.handle }
func (o *Object) Path() Path        { return o.path }

// Properties returns the object's current property map. Callers in
// pre_process() may mutate the returned map directly: the store holds
// exclusive writer position during that phase. Callers on
// other threads must treat the result as read-only.
func (o *Object) Properties() Properties { return o.properties }

func (o *Object) SetProperty(uri string, v Value) { o.properties[uri] = v }
func (o *Object) GetProperty(uri string) (Value, bool) {
	v, ok := o.properties[uri]
	return v, ok
}

// ReplaceProperties swaps the object's entire property map, used by the
// Put event rather than by incremental SetProperty calls.
func (o *Object) ReplaceProperties(p Properties) { o.properties = p }

// Relocate updates the object's own notion of its path after a Move
// event crams it back into the store under a new key. The Store's
// path->object map and an object's embedded path must always agree;
// Move is responsible for keeping them in sync.
func (o *Object) Relocate(p Path) { o.path = p }

// Port is a typed, directional endpoint of a Node or Patch.
type Port struct {
	Object

	Index     int
	Type      PortType
	Dir       Direction
	Parent    *Node  // owning node; nil for a Patch's own boundary port
	OwnerPatch *Patch // the patch this port is visible on (boundary) or nested within

	// voiced mirrors the node's polyphony flag (or the patch's
	// internal_poly for the patch's own boundary ports); false means
	// this port carries exactly one buffer regardless of the patch's
	// polyphony.
	voiced bool

	// voices holds one buffer handle per active voice. len(voices) is
	// always 1 for a shared port and internal_poly for a voiced one.
	voices []*BufferHandle

	// connections lists every Connection that has this port as its
	// Dst (for Input ports) or Src (for Output ports).
	connections []*Connection

	// mix, when non-nil, is the dedicated per-voice mix buffer an
	// Input port owns once it has >1 incoming connection.
	mix []*BufferHandle

	// defaultValue is the last explicitly-set scalar value. Disconnect
	// does not write it into any buffer: the port goes back to its own
	// buffers exactly as they were left.
	defaultValue Value

	// driverHandle is set when this port is one of the root patch's
	// external ports and has been mirrored onto the Driver; nil for
	// every port that never crosses the audio boundary.
	driverHandle DriverPort
}

func (p *Port) SetDriverHandle(h DriverPort) { p.driverHandle = h }
func (p *Port) DriverHandle() DriverPort     { return p.driverHandle }

// NewPort constructs a port at the given index with capacity voices.
func NewPort(path Path, index int, t PortType, dir Direction, voiced bool, capacity, voices int, factory *BufferFactory) *Port {
	p := &Port{
		Object: newObject(path),
		Index:  index,
		Type:   t,
		Dir:    dir,
		voiced: voiced,
	}
	p.allocateVoices(factory, capacity, voices)
	return p
}

func (p *Port) Voiced() bool    { return p.voiced }
func (p *Port) NumVoices() int  { return len(p.voices) }
func (p *Port) NumConnections() int { return len(p.connections) }

// VoiceBuffer returns the buffer a node should read/write for voice i
// of this port: a direct alias when there is exactly one incoming
// connection, the dedicated mix buffer when there are several, or the
// port's own buffer otherwise.
func (p *Port) VoiceBuffer(voice int) Buffer {
	switch {
	case p.Dir == Input && len(p.connections) == 1:
		return p.connections[0].Src.VoiceBuffer(voiceIndex(voice, len(p.connections[0].Src.voices)))
	case p.Dir == Input && len(p.connections) >= 2:
		return p.mix[voiceIndex(voice, len(p.mix))].Buffer()
	default:
		return p.voices[voiceIndex(voice, len(p.voices))].Buffer()
	}
}

func voiceIndex(voice, n int) int {
	if n == 1 {
		return 0
	}
	if voice >= n {
		return n - 1
	}
	return voice
}

// allocateVoices replaces the port's own buffer array with a freshly
// acquired set of `voices` buffers of the given capacity, releasing the
// old ones. Must only run in pre_process(); the caller is responsible
// for handing the old handles to the Maid rather than calling this
// directly from execute().
func (p *Port) allocateVoices(factory *BufferFactory, capacity, voices int) {
	if voices < 1 {
		voices = 1
	}
	next := make([]*BufferHandle, voices)
	for i := range next {
		next[i] = factory.Acquire(p.Type, capacity)
	}
	p.voices = next
}

// PrepareVoices allocates a fresh set of voices buffer handles at this
// port's current type and capacity, without installing them. It is the
// pre_process half of a polyphony change: the caller publishes the
// result with SetBuffers at execute() and routes the returned old set
// to the Maid, so the RT thread never observes a half-resized port.
func (p *Port) PrepareVoices(factory *BufferFactory, voices int) []*BufferHandle {
	if voices < 1 {
		voices = 1
	}
	capacity := p.voices[0].Buffer().Capacity()
	next := make([]*BufferHandle, voices)
	for i := range next {
		next[i] = factory.Acquire(p.Type, capacity)
	}
	return next
}

// SetBuffers swaps in a new set of per-voice buffers, returning the
// previous set so the caller can route it to the deferred-free queue.
// RT-safe: it only swaps a slice header, never allocates.
func (p *Port) SetBuffers(next []*BufferHandle) []*BufferHandle {
	old := p.voices
	p.voices = next
	return old
}

// SetMixBuffers swaps in (or clears, when next is nil) the port's
// fan-in mix buffer array, returning the previous one for the Maid.
func (p *Port) SetMixBuffers(next []*BufferHandle) []*BufferHandle {
	old := p.mix
	p.mix = next
	return old
}

func (p *Port) addConnection(c *Connection) { p.connections = append(p.connections, c) }

func (p *Port) removeConnection(c *Connection) {
	for i, cc := range p.connections {
		if cc == c {
			p.connections = append(p.connections[:i], p.connections[i+1:]...)
			return
		}
	}
}

// Connections returns a copy of the port's current connection list.
func (p *Port) Connections() []*Connection {
	out := make([]*Connection, len(p.connections))
	copy(out, p.connections)
	return out
}

func (p *Port) SetDefaultValue(v Value) { p.defaultValue = v }
func (p *Port) DefaultValue() Value     { return p.defaultValue }

// ReleaseBuffers returns every buffer this port currently holds (its own
// voices plus any fan-in mix buffers) to the factory pool. Callers must
// only invoke this once the RT thread has demonstrably stopped
// referencing the port, i.e. from a Maid-deferred disposal.
func (p *Port) ReleaseBuffers() {
	for _, h := range p.voices {
		h.Release()
	}
	for _, h := range p.mix {
		h.Release()
	}
}
