package event

import "github.com/ingen-audio/ingen/graph"

// scalarSetter is implemented by the Audio/Control/CV buffer kinds,
// which all hold a contiguous float32 sample run that a literal value
// can be broadcast into.
type scalarSetter interface {
	Set(float32)
}

func scalarOf(v graph.Value) (float32, bool) {
	switch v.Kind {
	case graph.ValueFloat:
		return float32(v.Float), true
	case graph.ValueInt:
		return float32(v.Int), true
	case graph.ValueBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// propertyObject is satisfied by *graph.Patch, *graph.Node, and
// *graph.Port via their embedded Object, letting SetMetadata and Put
// operate generically instead of type-switching on every call site.
type propertyObject interface {
	Properties() graph.Properties
	ReplaceProperties(graph.Properties)
}

// SetPortValue assigns a literal scalar to every voice of an
// unconnected port. A connected port's value always comes
// from upstream, so setting one directly is rejected.
type SetPortValue struct {
	Base
	Path  graph.Path
	Value graph.Value

	port   *graph.Port
	scalar float32
}

func (e *SetPortValue) PreProcess(d *Deps) {
	port, found := findPort(d.Store, e.Path)
	if !found {
		e.Result = fail(graph.NotFound, "no port at "+string(e.Path))
		return
	}
	if port.NumConnections() > 0 {
		e.Result = fail(graph.AlreadyConnected, "port is connected; set the upstream source instead")
		return
	}
	scalar, isScalar := scalarOf(e.Value)
	if !isScalar {
		e.Result = fail(graph.BadValueType, "value is not numeric")
		return
	}
	port.SetDefaultValue(e.Value)
	e.port = port
	e.scalar = scalar
	e.Result = success()
}

func (e *SetPortValue) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	if e.port == nil {
		return
	}
	for v := 0; v < e.port.NumVoices(); v++ {
		if setter, ok := e.port.VoiceBuffer(v).(scalarSetter); ok {
			setter.Set(e.scalar)
		}
	}
}

func (e *SetPortValue) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success {
		b.SetProperty(subjectURI(e.Path), graph.PropValue, e.Value)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// polyVoicePrep pairs a voiced port under a patch with the fresh voice
// buffers SetMetadata.PreProcess allocated for it, awaiting the
// execute()-phase swap.
type polyVoicePrep struct {
	port *graph.Port
	next []*graph.BufferHandle
}

// SetMetadata applies an incremental delta to an object's property map:
// remove keys first, then add. Setting the well-known "enabled" property
// on a patch also gates whether its compiled list runs at all. Setting
// "polyphony" on a patch reallocates every voiced port under it: new
// buffers are acquired here in pre_process, installed atomically in
// execute, and the displaced buffers are handed to the Maid.
type SetMetadata struct {
	Base
	Path   graph.Path
	Remove []string
	Add    graph.Properties

	patch     *graph.Patch
	newPoly   int
	voicePrep []polyVoicePrep
}

func (e *SetMetadata) PreProcess(d *Deps) {
	raw := d.Store.Find(e.Path)
	obj, ok := raw.(propertyObject)
	if !ok {
		e.Result = fail(graph.NotFound, "no object at "+string(e.Path))
		return
	}

	patch, isPatch := raw.(*graph.Patch)
	if isPatch {
		if v, has := e.Add[graph.PropPolyphony]; has {
			if v.Kind != graph.ValueInt || v.Int < 1 {
				e.Result = fail(graph.InvalidPoly, "polyphony must be a positive integer")
				return
			}
			poly := int(v.Int)
			if poly != patch.InternalPoly {
				e.patch = patch
				e.newPoly = poly
				for _, port := range patch.VoicedPorts() {
					e.voicePrep = append(e.voicePrep, polyVoicePrep{
						port: port,
						next: port.PrepareVoices(d.Buffers, poly),
					})
				}
			}
		}
	}

	next := obj.Properties().Clone()
	if next == nil {
		next = make(graph.Properties)
	}
	for _, k := range e.Remove {
		delete(next, k)
	}
	for k, v := range e.Add {
		next[k] = v
	}
	obj.ReplaceProperties(next)

	if isPatch {
		if v, has := e.Add[graph.PropEnabled]; has {
			patch.Enabled = v.Bool
		}
	}

	if d.Control != nil {
		if v, has := e.Add[graph.PropControlBinding]; has {
			d.Control.Bind(e.Path, v)
		}
		for _, k := range e.Remove {
			if k == graph.PropControlBinding {
				d.Control.Unbind(e.Path)
			}
		}
	}

	e.Result = success()
}

func (e *SetMetadata) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	if e.patch == nil || e.voicePrep == nil {
		return
	}
	for _, prep := range e.voicePrep {
		old := prep.port.SetBuffers(prep.next)
		maid.PushBuffers(old)
	}
	e.patch.InternalPoly = e.newPoly
}

func (e *SetMetadata) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success {
		b.Delta(subjectURI(e.Path), e.Remove, e.Add)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// Learn arms or cancels MIDI-learn on a port's control binding. The apply callback only ever updates the
// port's recorded default value; a bound control's subsequent messages
// reach the running graph through ordinary SetPortValue events the
// control package submits back through the engine, not by writing
// buffers directly from the MIDI input thread.
type Learn struct {
	Base
	Port   graph.Path
	Cancel bool
	Token  uint64 // set by the caller when Cancel is true
}

func (e *Learn) PreProcess(d *Deps) {
	port, found := findPort(d.Store, e.Port)
	if !found {
		e.Result = fail(graph.NotFound, "no port at "+string(e.Port))
		return
	}
	if d.Control == nil {
		e.Result = fail(graph.Internal, "no control table configured")
		return
	}
	if e.Cancel {
		d.Control.CancelLearn(e.Token)
		e.Result = success()
		return
	}
	token := d.Control.ArmLearn(e.Port, func(v graph.Value) {
		port.SetDefaultValue(v)
	})
	e.Result = Result{Status: graph.Success, Data: token}
}

func (e *Learn) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *Learn) PostProcess(b *graph.Broadcaster) {
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}
