package event

import "github.com/ingen-audio/ingen/graph"

// RegisterClient subscribes a client to the engine's broadcast stream
// and immediately primes it with the root patch's properties; a client
// that only registers sees nothing until the next change otherwise.
type RegisterClient struct {
	Base
	URI string

	root *graph.Patch
}

func (e *RegisterClient) PreProcess(d *Deps) {
	if e.Client == nil {
		e.Result = fail(graph.Internal, "register requires a client")
		return
	}
	uri := e.URI
	if uri == "" {
		uri = e.ClientURI
	}
	d.Broadcast.Register(uri, e.Client)
	e.URI = uri
	e.root = d.Root
	e.Result = success()
}

func (e *RegisterClient) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *RegisterClient) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success && e.root != nil {
		e.Client.Put(subjectURI(e.root.Path()), e.root.Properties())
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// UnregisterClient removes a client from the broadcast stream.
type UnregisterClient struct {
	Base
	URI string
}

func (e *UnregisterClient) PreProcess(d *Deps) {
	uri := e.URI
	if uri == "" {
		uri = e.ClientURI
	}
	d.Broadcast.Unregister(uri)
	e.URI = uri
	e.Result = success()
}

func (e *UnregisterClient) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *UnregisterClient) PostProcess(b *graph.Broadcaster) {
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}
