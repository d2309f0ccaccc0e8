package event

import "github.com/ingen-audio/ingen/graph"

// Connect links an output port to an input port, checking the locality,
// direction, and type-conversion rules.
type Connect struct {
	Base
	Src graph.Path
	Dst graph.Path

	owner   *graph.Patch
	conn    *graph.Connection
	pending *graph.CompiledList
	mix     []*graph.BufferHandle // freshly acquired mix buffers, for Execute to install
}

func (e *Connect) PreProcess(d *Deps) {
	src, srcOK := findPort(d.Store, e.Src)
	dst, dstOK := findPort(d.Store, e.Dst)
	if !srcOK || !dstOK {
		e.Result = fail(graph.PortNotFound, "connection endpoint not found")
		return
	}
	if src.Dir != graph.Output || dst.Dir != graph.Input {
		e.Result = fail(graph.DirectionMismatch, "source must be Output, destination must be Input")
		return
	}

	owner, ok := commonParent(src, dst)
	if !ok {
		e.Result = fail(graph.ParentsNotFound, "ports share no common patch")
		return
	}

	if existing := owner.FindConnection(src, dst); existing != nil && !existing.PendingDisconnection() {
		e.Result = fail(graph.AlreadyConnected, "already connected")
		return
	}

	conv, ok := graph.Convertible(src.Type, dst.Type)
	if !ok {
		e.Result = fail(graph.TypeMismatch, "no conversion from "+src.Type.String()+" to "+dst.Type.String())
		return
	}

	conn := &graph.Connection{Src: src, Dst: dst, Conv: conv}
	owner.AddConnection(conn)

	// A second or later connection to dst means it now needs a fan-in
	// mix buffer; acquire it here, in pre_process, where allocation is
	// allowed.
	if dst.NumConnections() >= 2 {
		voices := dst.NumVoices()
		e.mix = make([]*graph.BufferHandle, voices)
		for i := range e.mix {
			e.mix[i] = d.Buffers.Acquire(dst.Type, capacityFor(d, dst.Type))
		}
	}

	e.owner = owner
	e.conn = conn
	e.pending = pendingRecompile(owner)
	e.Result = success()
}

func (e *Connect) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	if e.mix != nil {
		old := e.conn.Dst.SetMixBuffers(e.mix)
		maid.PushBuffers(old)
	}
	if e.owner != nil && e.pending != nil {
		e.owner.PublishCompiled(e.pending)
	}
}

func (e *Connect) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success {
		b.Connect(e.Src, e.Dst)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// Disconnect removes a single connection.
type Disconnect struct {
	Base
	Src graph.Path
	Dst graph.Path

	owner   *graph.Patch
	dst     *graph.Port
	pending *graph.CompiledList
	mix     []*graph.BufferHandle // replacement (possibly nil) mix buffers for dst
}

func (e *Disconnect) PreProcess(d *Deps) {
	src, srcOK := findPort(d.Store, e.Src)
	dst, dstOK := findPort(d.Store, e.Dst)
	if !srcOK || !dstOK {
		e.Result = fail(graph.NotFound, "connection endpoint not found")
		return
	}
	owner, ok := commonParent(src, dst)
	if !ok {
		if portOwner(src) == nil || portOwner(dst) == nil {
			e.Result = fail(graph.ParentNotFound, "connection endpoint has no owning patch")
		} else {
			e.Result = fail(graph.ParentDiffers, "ports share no common patch")
		}
		return
	}
	conn := owner.FindConnection(src, dst)
	if conn == nil {
		e.Result = fail(graph.NotFound, "not connected")
		return
	}

	owner.RemoveConnection(conn)

	switch dst.NumConnections() {
	case 0:
		// Back to the port's own default-valued buffer; nothing new to
		// allocate, Execute just clears the mix slot.
	case 1:
		// A single remaining source is now aliased directly; no mix
		// buffer is needed any more.
	default:
		voices := dst.NumVoices()
		e.mix = make([]*graph.BufferHandle, voices)
		for i := range e.mix {
			e.mix[i] = d.Buffers.Acquire(dst.Type, capacityFor(d, dst.Type))
		}
	}

	e.owner = owner
	e.dst = dst
	e.pending = pendingRecompile(owner)
	e.Result = success()
}

func (e *Disconnect) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	if e.dst != nil && e.dst.NumConnections() < 2 {
		old := e.dst.SetMixBuffers(nil)
		maid.PushBuffers(old)
	} else if e.mix != nil {
		old := e.dst.SetMixBuffers(e.mix)
		maid.PushBuffers(old)
	}
	if e.owner != nil && e.pending != nil {
		e.owner.PublishCompiled(e.pending)
	}
}

func (e *Disconnect) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success {
		b.Disconnect(e.Src, e.Dst)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// DisconnectAll tears down every connection touching object, wherever
// object's parent keeps them (a node, a port, or a whole patch).
type DisconnectAll struct {
	Base
	Parent graph.Path
	Object graph.Path

	owner   *graph.Patch
	pending *graph.CompiledList
}

func (e *DisconnectAll) PreProcess(d *Deps) {
	owner, ok := findPatch(d.Store, e.Parent)
	if !ok {
		e.Result = fail(graph.ParentNotFound, "no patch at "+string(e.Parent))
		return
	}
	disconnectSubtree(owner, e.Object)
	e.owner = owner
	e.pending = pendingRecompile(owner)
	e.Result = success()
}

func (e *DisconnectAll) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	if e.owner != nil && e.pending != nil {
		e.owner.PublishCompiled(e.pending)
	}
}

func (e *DisconnectAll) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success {
		b.DisconnectAll(e.Parent, e.Object)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// commonParent returns the patch that directly contains both src and
// dst: the patch owning whichever of the two is a plain node's port,
// preferring src's owner and requiring dst's owner to agree.
func commonParent(src, dst *graph.Port) (*graph.Patch, bool) {
	sp := portOwner(src)
	dp := portOwner(dst)
	if sp == nil || dp == nil || sp != dp {
		return nil, false
	}
	return sp, true
}

// portOwner returns the patch whose Children/boundary a port is local
// to: its node's parent patch for an ordinary port, or the port's own
// OwnerPatch for a patch boundary port.
func portOwner(p *graph.Port) *graph.Patch {
	if p.Parent != nil {
		return p.Parent.Parent
	}
	return p.OwnerPatch
}
