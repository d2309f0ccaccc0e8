package graph

import "sync/atomic"

// MixStep is emitted before a node's run whenever one of its input
// ports has two or more incoming connections: clear the port's mix
// buffer, then MixIn each upstream buffer in connection order.
type MixStep struct {
	Port    *Port
	Sources []*Port
}

// CompiledStep is one entry of a compiled list: a node to run, plus any
// mix steps that must happen immediately before it.
type CompiledStep struct {
	Node     *Node
	MixSteps []MixStep
}

// CompiledList is the ordered sequence the RT thread walks each block.
// It is immutable once published; a patch swaps in a new one
// atomically at execute(), and PublishCompiled returns the old one.
// The events that publish a list do not pass the old one to the Maid.
type CompiledList struct {
	Steps []CompiledStep
}

// Patch is a container node; it may nest.
type Patch struct {
	Object

	Parent *Patch // nil for the root patch

	// Wrapper is the Node this patch appears as inside Parent's child
	// list, so that a nested patch can sit in a compiled list and carry
	// ports like any other node. Nil for the root patch, which
	// has no parent to appear inside.
	Wrapper *Node

	// Children is the insertion-ordered set of immediate child nodes,
	// including nested patches (each represented by its Wrapper node).
	Children []*Node

	// ExternalPorts is the insertion-ordered set of ports visible from
	// outside the patch.
	ExternalPorts []*Port

	// connections is the set among this patch's immediate children's
	// ports, plus pass-through edges touching the patch's own boundary
	// ports.
	connections []*Connection

	InternalPoly int
	Enabled      bool

	compiled atomic.Pointer[CompiledList]

	factory *BufferFactory
}

func NewPatch(path Path, parent *Patch, factory *BufferFactory) *Patch {
	p := &Patch{
		Object:       newObject(path),
		Parent:       parent,
		InternalPoly: 1,
		Enabled:      true,
		factory:      factory,
	}
	p.compiled.Store(&CompiledList{})
	return p
}

func (p *Patch) Factory() *BufferFactory { return p.factory }

// Compiled returns the currently published compiled list. RT-safe.
func (p *Patch) Compiled() *CompiledList { return p.compiled.Load() }

// PublishCompiled atomically swaps in next, returning the previous
// list so the caller can route it to the Maid. RT-safe.
func (p *Patch) PublishCompiled(next *CompiledList) *CompiledList {
	old := p.compiled.Swap(next)
	return old
}

func (p *Patch) AddChild(n *Node) {
	p.Children = append(p.Children, n)
	n.Parent = p
}

func (p *Patch) RemoveChild(n *Node) {
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			return
		}
	}
}

func (p *Patch) ChildByPath(path Path) *Node {
	for _, c := range p.Children {
		if c.Path() == path {
			return c
		}
	}
	return nil
}

func (p *Patch) AddExternalPort(port *Port) {
	p.ExternalPorts = append(p.ExternalPorts, port)
}

func (p *Patch) RemoveExternalPort(port *Port) {
	for i, pp := range p.ExternalPorts {
		if pp == port {
			p.ExternalPorts = append(p.ExternalPorts[:i], p.ExternalPorts[i+1:]...)
			return
		}
	}
}

// VoicedPorts returns every port whose voice count tracks this patch's
// own internal polyphony: the patch's voiced boundary ports, plus each
// direct child node's voiced ports. A nested patch keeps its own
// internal_poly, so its ports are not descended into.
func (p *Patch) VoicedPorts() []*Port {
	var out []*Port
	for _, port := range p.ExternalPorts {
		if port.Voiced() {
			out = append(out, port)
		}
	}
	for _, n := range p.Children {
		for _, port := range n.Ports {
			if port.Voiced() {
				out = append(out, port)
			}
		}
	}
	return out
}

func (p *Patch) Connections() []*Connection {
	out := make([]*Connection, len(p.connections))
	copy(out, p.connections)
	return out
}

// AddConnection records c as stored by this patch and wires the
// per-port connection lists.
func (p *Patch) AddConnection(c *Connection) {
	p.connections = append(p.connections, c)
	c.Src.addConnection(c)
	c.Dst.addConnection(c)
}

// RemoveConnection undoes AddConnection.
func (p *Patch) RemoveConnection(c *Connection) {
	for i, cc := range p.connections {
		if cc == c {
			p.connections = append(p.connections[:i], p.connections[i+1:]...)
			break
		}
	}
	c.Src.removeConnection(c)
	c.Dst.removeConnection(c)
}

// FindConnection returns the connection between src and dst, if any.
func (p *Patch) FindConnection(src, dst *Port) *Connection {
	for _, c := range p.connections {
		if c.SamePair(src, dst) {
			return c
		}
	}
	return nil
}

// ParentNode returns the Node that owns port's parent, treating a
// patch boundary port as belonging to the patch itself for the
// purposes of connection locality.
func ParentNode(port *Port) *Node { return port.Parent }
