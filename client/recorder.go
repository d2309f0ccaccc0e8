// Package client provides an in-process graph.ClientInterface
// implementation that records every call it receives, for use in tests
// that assert on broadcast traffic without standing up a real OSC or
// HTTP transport.
package client

import (
	"sync"

	"github.com/ingen-audio/ingen/graph"
)

// Call is one recorded ClientInterface invocation, tagged by method
// name so tests can filter without a type switch per call kind.
type Call struct {
	Method     string
	Subject    string
	Path       graph.Path
	OtherPath  graph.Path
	Properties graph.Properties
	Remove     []string
	Predicate  string
	Value      graph.Value
	ID         int
	Status     graph.Status
	Message    string
}

// Recorder appends every notification and response it receives to an
// in-memory log, in arrival order.
type Recorder struct {
	mu   sync.Mutex
	log  []Call
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.log = append(r.log, c)
	r.mu.Unlock()
}

// Calls returns a snapshot of every call recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.log))
	copy(out, r.log)
	return out
}

// Reset clears the recorded log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.log = nil
	r.mu.Unlock()
}

func (r *Recorder) Response(id int, status graph.Status, message string) {
	r.record(Call{Method: "Response", ID: id, Status: status, Message: message})
}

func (r *Recorder) Put(subjectURI string, properties graph.Properties) {
	r.record(Call{Method: "Put", Subject: subjectURI, Properties: properties})
}

func (r *Recorder) Delta(subjectURI string, remove []string, add graph.Properties) {
	r.record(Call{Method: "Delta", Subject: subjectURI, Remove: remove, Properties: add})
}

func (r *Recorder) Del(path graph.Path) {
	r.record(Call{Method: "Del", Path: path})
}

func (r *Recorder) Move(oldPath, newPath graph.Path) {
	r.record(Call{Method: "Move", Path: oldPath, OtherPath: newPath})
}

func (r *Recorder) Connect(srcPortPath, dstPortPath graph.Path) {
	r.record(Call{Method: "Connect", Path: srcPortPath, OtherPath: dstPortPath})
}

func (r *Recorder) Disconnect(srcPortPath, dstPortPath graph.Path) {
	r.record(Call{Method: "Disconnect", Path: srcPortPath, OtherPath: dstPortPath})
}

func (r *Recorder) DisconnectAll(parent, object graph.Path) {
	r.record(Call{Method: "DisconnectAll", Path: parent, OtherPath: object})
}

func (r *Recorder) SetProperty(subjectURI, predicateURI string, value graph.Value) {
	r.record(Call{Method: "SetProperty", Subject: subjectURI, Predicate: predicateURI, Value: value})
}

func (r *Recorder) Activity(portPath graph.Path) {
	r.record(Call{Method: "Activity", Path: portPath})
}

func (r *Recorder) BundleBegin() { r.record(Call{Method: "BundleBegin"}) }
func (r *Recorder) BundleEnd()   { r.record(Call{Method: "BundleEnd"}) }
