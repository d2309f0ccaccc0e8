package graph

import "sort"

// ErrCycle is returned by Compile when the patch's connection graph
// contains a cycle; the existing compiled list must be kept by the
// caller.
var ErrCycle = Internal

// Compile builds a fresh CompiledList for patch from its current child
// and connection sets. It never mutates the patch; callers
// publish the result via Patch.PublishCompiled from execute().
func Compile(patch *Patch) (*CompiledList, error) {
	children := patch.Children

	index := make(map[*Node]bool, len(children))
	for _, n := range children {
		index[n] = true
	}

	// 1. Build the dependency DAG: edge parent_node(u) -> parent_node(v)
	// for every connection u->v, skipping pass-through edges whose
	// source or destination belongs to the patch itself.
	adj := make(map[*Node][]*Node, len(children))
	indeg := make(map[*Node]int, len(children))
	for _, n := range children {
		indeg[n] = 0
	}
	seenEdge := make(map[[2]*Node]bool)
	for _, c := range patch.connections {
		srcNode := ParentNode(c.Src)
		dstNode := ParentNode(c.Dst)
		if srcNode == nil || dstNode == nil {
			continue // pass-through: endpoint is the patch's own boundary
		}
		if _, ok := index[srcNode]; !ok {
			continue
		}
		if _, ok := index[dstNode]; !ok {
			continue
		}
		key := [2]*Node{srcNode, dstNode}
		if seenEdge[key] {
			continue
		}
		seenEdge[key] = true
		adj[srcNode] = append(adj[srcNode], dstNode)
		indeg[dstNode]++
	}

	// 2. Topologically sort (Kahn's algorithm), breaking ties by path so
	// recompiling an unchanged patch is deterministic and independent of
	// insertion order.
	var ready []*Node
	for _, n := range children {
		if indeg[n] == 0 {
			ready = append(ready, n)
		}
	}
	sortByPath := func(ns []*Node) {
		sort.SliceStable(ns, func(i, j int) bool { return ns[i].Path() < ns[j].Path() })
	}
	sortByPath(ready)

	order := make([]*Node, 0, len(children))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		var newlyReady []*Node
		for _, m := range adj[n] {
			indeg[m]--
			if indeg[m] == 0 {
				newlyReady = append(newlyReady, m)
			}
		}
		sortByPath(newlyReady)
		ready = append(ready, newlyReady...)
		sortByPath(ready)
	}

	if len(order) != len(children) {
		return nil, ErrCycle
	}

	// 3. For each node in order, resolve input port buffer bindings
	// and emit mix steps for fan-in ports.
	steps := make([]CompiledStep, 0, len(order))
	for _, n := range order {
		step := CompiledStep{Node: n}
		for _, port := range n.Ports {
			if port.Dir != Input {
				continue
			}
			conns := port.connections
			if len(conns) >= 2 {
				sources := make([]*Port, len(conns))
				for i, c := range conns {
					sources[i] = c.Src
				}
				step.MixSteps = append(step.MixSteps, MixStep{Port: port, Sources: sources})
			}
			// 0 or 1 connections need no mix step: VoiceBuffer already
			// resolves to the port's own buffer or a direct alias.
		}
		steps = append(steps, step)
	}

	return &CompiledList{Steps: steps}, nil
}
