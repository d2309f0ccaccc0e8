package event

import "github.com/ingen-audio/ingen/graph"

// Get reports an object's full property set directly to the requesting
// client via a targeted Put, rather than broadcasting it to everyone
// subscribed.
type Get struct {
	Base
	Path graph.Path

	properties graph.Properties
}

func (e *Get) PreProcess(d *Deps) {
	props, found := objectProperties(d.Store, e.Path)
	if !found {
		e.Result = fail(graph.NotFound, "no object at "+string(e.Path))
		return
	}
	e.properties = props.Clone()
	e.Result = success()
}

func (e *Get) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *Get) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success && e.Client != nil {
		e.Client.Put(subjectURI(e.Path), e.properties)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// RequestMetadata reports a single property value directly to the
// requesting client.
type RequestMetadata struct {
	Base
	Path      graph.Path
	Predicate string

	value graph.Value
}

func (e *RequestMetadata) PreProcess(d *Deps) {
	props, found := objectProperties(d.Store, e.Path)
	if !found {
		e.Result = fail(graph.NotFound, "no object at "+string(e.Path))
		return
	}
	v, has := props[e.Predicate]
	if !has {
		e.Result = fail(graph.NotFound, "no property "+e.Predicate+" on "+string(e.Path))
		return
	}
	e.value = v
	e.Result = success()
}

func (e *RequestMetadata) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *RequestMetadata) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success && e.Client != nil {
		e.Client.SetProperty(subjectURI(e.Path), e.Predicate, e.value)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// RequestAllObjects reports every object currently in the store to the
// requesting client, bracketed in a bundle so the client can tell a
// full dump apart from a stream of incremental Puts.
type RequestAllObjects struct {
	Base

	objects map[graph.Path]graph.Properties
}

func (e *RequestAllObjects) PreProcess(d *Deps) {
	e.objects = make(map[graph.Path]graph.Properties)
	for _, p := range d.Store.Paths() {
		if props, found := objectProperties(d.Store, p); found {
			e.objects[p] = props.Clone()
		}
	}
	e.Result = success()
}

func (e *RequestAllObjects) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *RequestAllObjects) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success && e.Client != nil {
		e.Client.BundleBegin()
		for p, props := range e.objects {
			e.Client.Put(subjectURI(p), props)
		}
		e.Client.BundleEnd()
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// pluginCatalog is the optional surface a Host can implement to list
// its full set of known plugins; a host that can only resolve one URI
// at a time need not implement it.
type pluginCatalog interface {
	Catalog() []graph.Descriptor
}

// RequestPlugins reports the plugin host's full catalog to the
// requesting client as a bundle of per-plugin Put messages keyed by
// plugin URI.
type RequestPlugins struct {
	Base

	catalog []graph.Descriptor
}

func (e *RequestPlugins) PreProcess(d *Deps) {
	host, ok := d.Plugins.(pluginCatalog)
	if !ok {
		e.Result = fail(graph.Internal, "plugin host does not support listing its catalog")
		return
	}
	e.catalog = host.Catalog()
	e.Result = success()
}

func (e *RequestPlugins) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *RequestPlugins) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success && e.Client != nil {
		e.Client.BundleBegin()
		for _, d := range e.catalog {
			e.Client.Put(d.URI, graph.Properties{graph.PropPluginType: graph.StringValue(d.Type)})
		}
		e.Client.BundleEnd()
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// Ping is a round-trip liveness probe that rides the real event
// pipeline, so a response proves the pre/execute/post chain is still
// running end to end rather than just that the client socket is open.
type Ping struct {
	Base

	frame int64
}

func (e *Ping) PreProcess(d *Deps) { e.Result = success() }

func (e *Ping) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	e.frame = ctx.FrameStart
}

func (e *Ping) PostProcess(b *graph.Broadcaster) {
	e.Result.Data = e.frame
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}
