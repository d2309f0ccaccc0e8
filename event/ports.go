package event

import "github.com/ingen-audio/ingen/graph"

func capacityFor(d *Deps, t graph.PortType) int {
	switch t {
	case graph.TypeAudio, graph.TypeCV:
		return d.BlockSize
	case graph.TypeEvent:
		return d.EventCapacity
	default:
		return 1
	}
}

// buildPorts instantiates one graph.Port per plugin.PortSpec under
// node, sized for node's effective polyphony.
func buildPorts(d *Deps, node *graph.Node) {
	voices := node.EffectivePolyphony()
	node.Ports = make([]*graph.Port, len(node.Plugin.Ports))
	for i, spec := range node.Plugin.Ports {
		path := node.Path().Child(spec.Symbol)
		v := voices
		if !node.Polyphonic {
			v = 1
		}
		port := graph.NewPort(path, i, spec.Type, spec.Dir, node.Polyphonic, capacityFor(d, spec.Type), v, d.Buffers)
		if spec.HasDefault {
			port.SetDefaultValue(spec.Default)
		}
		port.Parent = node
		node.Ports[i] = port
		d.Store.Insert(path, port)
	}
}

// recompile runs the patch compiler and returns the new list, or the
// patch's current list unchanged (plus false) if the patch is
// disabled or compilation hits a cycle.
func recompile(patch *graph.Patch) (*graph.CompiledList, bool) {
	if !patch.Enabled {
		return patch.Compiled(), false
	}
	next, err := graph.Compile(patch)
	if err != nil {
		return patch.Compiled(), false
	}
	return next, true
}
