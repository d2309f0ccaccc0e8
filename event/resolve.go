package event

import "github.com/ingen-audio/ingen/graph"

func findPatch(s *graph.Store, path graph.Path) (*graph.Patch, bool) {
	p, ok := s.Find(path).(*graph.Patch)
	return p, ok
}

func findNode(s *graph.Store, path graph.Path) (*graph.Node, bool) {
	n, ok := s.Find(path).(*graph.Node)
	return n, ok
}

func findPort(s *graph.Store, path graph.Path) (*graph.Port, bool) {
	p, ok := s.Find(path).(*graph.Port)
	return p, ok
}

// parentPatch returns the Patch that directly owns path's object: the
// object at path's parent path, if it is itself a Patch. Any other
// object at the parent path yields false.
func parentPatch(s *graph.Store, path graph.Path) (*graph.Patch, bool) {
	parent, ok := path.Parent()
	if !ok {
		return nil, false
	}
	return findPatch(s, parent)
}

// objectProperties fetches the Properties map for whatever kind of
// object lives at path, regardless of its concrete type.
func objectProperties(s *graph.Store, path graph.Path) (graph.Properties, bool) {
	switch o := s.Find(path).(type) {
	case *graph.Patch:
		return o.Properties(), true
	case *graph.Node:
		return o.Properties(), true
	case *graph.Port:
		return o.Properties(), true
	default:
		return nil, false
	}
}
