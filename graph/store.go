package graph

import (
	"sort"

	"github.com/google/uuid"
)

// StoredObject is anything the Store can hold: a Patch, a Node, or a
// Port. It is an interface
// satisfied by *Patch, *Node, and *Port via their embedded Object,
// rather than a parallel class hierarchy.
type StoredObject interface {
	Path() Path
	Handle() uuid.UUID
}

// Store is the single process-wide path->object mapping.
// All mutation happens during pre_process(); execute() only publishes
// pointers/flags that were prepared here. Ordered by path
// string so children follow their parents.
type Store struct {
	objects map[Path]any
	order   []Path // kept sorted; children-follow-parent by construction
}

func NewStore() *Store {
	return &Store{objects: make(map[Path]any)}
}

// Find returns the object at path, or nil if none exists. The store
// holds at most one object per path.
func (s *Store) Find(path Path) any {
	return s.objects[path]
}

// Insert adds obj at path. Returns AlreadyExists if the path is taken.
func (s *Store) Insert(path Path, obj any) Status {
	if _, exists := s.objects[path]; exists {
		return AlreadyExists
	}
	s.objects[path] = obj
	i := sort.Search(len(s.order), func(i int) bool { return s.order[i] >= path })
	s.order = append(s.order, "")
	copy(s.order[i+1:], s.order[i:])
	s.order[i] = path
	return Success
}

// Remove deletes the single object at path (not its descendants; use
// Yank for a subtree).
func (s *Store) Remove(path Path) {
	delete(s.objects, path)
	i := sort.Search(len(s.order), func(i int) bool { return s.order[i] >= path })
	if i < len(s.order) && s.order[i] == path {
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
}

// descendantsEnd returns the index just past the last descendant of
// path within the sorted order slice, mirroring
// find_descendants_end(iter).
func (s *Store) descendantsEnd(path Path) int {
	start := sort.Search(len(s.order), func(i int) bool { return s.order[i] >= path })
	i := start
	for i < len(s.order) && s.order[i].DescendantOf(path) {
		i++
	}
	return i
}

// Yank removes the entire subtree rooted at path (path itself and
// every descendant) and returns it as a detached map keyed by path.
// The original Store no longer references any of it.
func (s *Store) Yank(path Path) map[Path]any {
	start := sort.Search(len(s.order), func(i int) bool { return s.order[i] >= path })
	end := s.descendantsEnd(path)
	detached := make(map[Path]any, end-start)
	for _, p := range s.order[start:end] {
		detached[p] = s.objects[p]
		delete(s.objects, p)
	}
	s.order = append(s.order[:start], s.order[end:]...)
	return detached
}

// Cram reinserts a detached subtree, optionally renaming every path by
// replacing oldRoot with newRoot. Returns AlreadyExists,
// leaving the store untouched, if any target path is already taken.
func (s *Store) Cram(detached map[Path]any, oldRoot, newRoot Path) Status {
	renamed := make(map[Path]any, len(detached))
	for p, obj := range detached {
		np := p
		if p == oldRoot {
			np = newRoot
		} else if rest, ok := trimPrefixPath(p, oldRoot); ok {
			np = newRoot + "/" + Path(rest)
		}
		if _, exists := s.objects[np]; exists {
			return AlreadyExists
		}
		renamed[np] = obj
	}
	for p, obj := range renamed {
		s.Insert(p, obj)
	}
	return Success
}

func trimPrefixPath(p, root Path) (string, bool) {
	prefix := string(root) + "/"
	if len(p) > len(prefix) && string(p)[:len(prefix)] == prefix {
		return string(p)[len(prefix):], true
	}
	return "", false
}

// Paths returns every path currently in the store, in sorted
// (parent-before-child) order.
func (s *Store) Paths() []Path {
	out := make([]Path, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) Len() int { return len(s.objects) }
