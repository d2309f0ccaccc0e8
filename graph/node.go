package graph

// Node is a plugin instance occupying one slot in a patch.
// It cannot be re-parented; Move across parents is rejected.
type Node struct {
	Object

	Plugin   Descriptor
	Instance Instance

	// Subpatch is non-nil when this Node is a nested Patch rather than
	// a plugin instance. This is expressed as
	// this optional field rather than a parallel class hierarchy.
	Subpatch *Patch

	Polyphonic bool // voiced vs. shared
	Parent     *Patch

	// Ports is index-ordered to match the plugin's port list.
	Ports []*Port

	active bool
}

func NewNode(path Path, plugin Descriptor, polyphonic bool, parent *Patch) *Node {
	return &Node{
		Object:     newObject(path),
		Plugin:     plugin,
		Polyphonic: polyphonic,
		Parent:     parent,
	}
}

// IsPatch reports whether this node is a nested patch.
func (n *Node) IsPatch() bool { return n.Subpatch != nil }

// EffectivePolyphony is the voice count this node's voiced ports carry:
// 1 when Polyphonic is false, otherwise the parent patch's internal
// polyphony.
func (n *Node) EffectivePolyphony() int {
	if !n.Polyphonic || n.Parent == nil {
		return 1
	}
	return n.Parent.InternalPoly
}

// PortByIndex returns the port at the plugin's port-list index.
func (n *Node) PortByIndex(i int) *Port {
	if i < 0 || i >= len(n.Ports) {
		return nil
	}
	return n.Ports[i]
}

// PortBySymbol looks up a port by its plugin-defined symbol.
func (n *Node) PortBySymbol(symbol string) *Port {
	for i, spec := range n.Plugin.Ports {
		if spec.Symbol == symbol {
			return n.PortByIndex(i)
		}
	}
	return nil
}

func (n *Node) Active() bool { return n.active }

// Activate/Deactivate forward to the underlying plugin Instance.
func (n *Node) Activate() error {
	if n.Instance == nil {
		return nil
	}
	if err := n.Instance.Activate(); err != nil {
		return err
	}
	n.active = true
	return nil
}

func (n *Node) Deactivate() error {
	if n.Instance == nil {
		return nil
	}
	if err := n.Instance.Deactivate(); err != nil {
		return err
	}
	n.active = false
	return nil
}
