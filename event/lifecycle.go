package event

import "github.com/ingen-audio/ingen/graph"

func subjectURI(p graph.Path) string { return string(p) }

// pendingRecompile runs the compiler for patch and returns the result to
// publish at execute() time, or nil if patch is nil, disabled, or
// compiling it hit a cycle (nothing to publish).
func pendingRecompile(patch *graph.Patch) *graph.CompiledList {
	if patch == nil {
		return nil
	}
	next, changed := recompile(patch)
	if !changed {
		return nil
	}
	return next
}

// Put replaces an existing object's entire property set in one step,
// as opposed to the incremental delta SetMetadata applies.
type Put struct {
	Base
	Path       graph.Path
	Properties graph.Properties
}

func (e *Put) PreProcess(d *Deps) {
	if _, found := objectProperties(d.Store, e.Path); !found {
		e.Result = fail(graph.NotFound, "no object at "+string(e.Path))
		return
	}
	switch o := d.Store.Find(e.Path).(type) {
	case *graph.Patch:
		o.ReplaceProperties(e.Properties)
	case *graph.Node:
		o.ReplaceProperties(e.Properties)
	case *graph.Port:
		o.ReplaceProperties(e.Properties)
	}
	e.Result = success()
}

// success is a small alias for ok() used wherever a PreProcess method
// has already shadowed the package-level ok() with a local "ok" bool.
func success() Result { return ok() }

func (e *Put) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *Put) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success {
		b.Put(subjectURI(e.Path), e.Properties)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// CreateNode instantiates a plugin at Path as a new child of Path's
// parent patch. Unknown plugin URIs are a hard error
// here, at pre_process time, not later.
type CreateNode struct {
	Base
	Path       graph.Path
	PluginURI  string
	Polyphonic bool

	parent   *graph.Patch
	node     *graph.Node
	pending  *graph.CompiledList
}

func (e *CreateNode) PreProcess(d *Deps) {
	if d.Store.Find(e.Path) != nil {
		e.Result = fail(graph.AlreadyExists, "path in use: "+string(e.Path))
		return
	}
	parent, ok := parentPatch(d.Store, e.Path)
	if !ok {
		e.Result = fail(graph.ParentNotFound, "no parent patch for "+string(e.Path))
		return
	}
	desc, ok := d.Plugins.Lookup(e.PluginURI)
	if !ok {
		e.Result = fail(graph.Internal, "unknown plugin: "+e.PluginURI)
		return
	}
	inst, err := d.Plugins.Instantiate(e.PluginURI, d.SampleRate)
	if err != nil {
		e.Result = fail(graph.Internal, err.Error())
		return
	}

	node := graph.NewNode(e.Path, desc, e.Polyphonic, parent)
	node.Instance = inst
	buildPorts(d, node)

	d.Store.Insert(e.Path, node)
	parent.AddChild(node)

	e.parent = parent
	e.node = node
	e.pending = pendingRecompile(parent)
	e.Result = success()
}

func (e *CreateNode) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	if e.parent != nil && e.pending != nil {
		e.parent.PublishCompiled(e.pending)
	}
	if e.node != nil {
		if err := e.node.Activate(); err != nil {
			e.Result = fail(graph.Internal, err.Error())
		}
	}
}

func (e *CreateNode) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success && e.node != nil {
		b.Put(subjectURI(e.Path), e.node.Properties())
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// CreatePatch adds a new nested patch at Path, represented in its
// parent's child list by a wrapper Node so the compiler can schedule it
// like any other node.
type CreatePatch struct {
	Base
	Path     graph.Path
	Poly     int // internal polyphony; 0 means "use the default of 1"

	parent  *graph.Patch
	patch   *graph.Patch
	pending *graph.CompiledList
}

var patchDescriptor = graph.Descriptor{URI: "ingen:Patch", Type: "Patch"}

func (e *CreatePatch) PreProcess(d *Deps) {
	if d.Store.Find(e.Path) != nil {
		e.Result = fail(graph.AlreadyExists, "path in use: "+string(e.Path))
		return
	}
	parent, ok := parentPatch(d.Store, e.Path)
	if !ok {
		e.Result = fail(graph.ParentNotFound, "no parent patch for "+string(e.Path))
		return
	}
	if e.Poly < 1 {
		e.Poly = 1
	}

	patch := graph.NewPatch(e.Path, parent, d.Buffers)
	patch.InternalPoly = e.Poly

	wrapper := graph.NewNode(e.Path, patchDescriptor, false, parent)
	wrapper.Subpatch = patch
	patch.Wrapper = wrapper

	d.Store.Insert(e.Path, patch)
	parent.AddChild(wrapper)

	e.parent = parent
	e.patch = patch
	e.pending = pendingRecompile(parent)
	e.Result = success()
}

func (e *CreatePatch) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	if e.parent != nil && e.pending != nil {
		e.parent.PublishCompiled(e.pending)
	}
}

func (e *CreatePatch) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success && e.patch != nil {
		b.Put(subjectURI(e.Path), e.patch.Properties())
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// CreatePort adds a boundary port to an existing patch.
// Ordinary node ports come from the plugin's fixed port signature and
// are never created one at a time; only patches grow ports dynamically.
type CreatePort struct {
	Base
	Path       graph.Path
	Type       graph.PortType
	Dir        graph.Direction
	Polyphonic bool
	HasDefault bool
	Default    graph.Value

	patch *graph.Patch
	port  *graph.Port
}

func (e *CreatePort) PreProcess(d *Deps) {
	if d.Store.Find(e.Path) != nil {
		e.Result = fail(graph.AlreadyExists, "path in use: "+string(e.Path))
		return
	}
	parentPath, ok := e.Path.Parent()
	if !ok {
		e.Result = fail(graph.InvalidParentPath, "port cannot be the root")
		return
	}
	patch, ok := findPatch(d.Store, parentPath)
	if !ok {
		e.Result = fail(graph.ParentNotFound, "no patch at "+string(parentPath))
		return
	}

	voices := 1
	if e.Polyphonic {
		voices = patch.InternalPoly
	}
	port := graph.NewPort(e.Path, len(patch.ExternalPorts), e.Type, e.Dir, e.Polyphonic, capacityFor(d, e.Type), voices, d.Buffers)
	port.OwnerPatch = patch
	if e.HasDefault {
		port.SetDefaultValue(e.Default)
	}

	patch.AddExternalPort(port)
	if patch.Wrapper != nil {
		patch.Wrapper.Ports = append(patch.Wrapper.Ports, port)
	}
	d.Store.Insert(e.Path, port)

	if patch.Path() == graph.Root && d.Driver != nil {
		port.SetDriverHandle(d.Driver.AddPort(port.Path(), port.Dir, port.Type))
	}

	e.patch = patch
	e.port = port
	e.Result = success()
}

func (e *CreatePort) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *CreatePort) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success && e.port != nil {
		b.Put(subjectURI(e.Path), e.port.Properties())
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// Delete removes an object and its entire subtree, tearing down every
// connection that touched it, and frees the detached ports' buffers
// only once the RT thread can no longer see them.
type Delete struct {
	Base
	Path graph.Path

	owner    *graph.Patch // the patch whose Children/ExternalPorts/compiled list changed
	pending  *graph.CompiledList
	detached map[graph.Path]any
}

func inSubtree(p, root graph.Path) bool { return p.DescendantOf(root) }

func (e *Delete) PreProcess(d *Deps) {
	obj := d.Store.Find(e.Path)
	if obj == nil {
		e.Result = fail(graph.NotFound, "no object at "+string(e.Path))
		return
	}

	switch o := obj.(type) {
	case *graph.Node:
		parent, ok := parentPatch(d.Store, e.Path)
		if !ok {
			e.Result = fail(graph.Internal, "node has no containing patch")
			return
		}
		disconnectSubtree(parent, e.Path)
		parent.RemoveChild(o)
		e.owner = parent

	case *graph.Patch:
		parent, ok := parentPatch(d.Store, e.Path)
		if !ok {
			e.Result = fail(graph.Internal, "patch has no containing patch")
			return
		}
		disconnectSubtree(parent, e.Path)
		if o.Wrapper != nil {
			parent.RemoveChild(o.Wrapper)
		}
		e.owner = parent

	case *graph.Port:
		parentPath, _ := e.Path.Parent()
		patch, ok := findPatch(d.Store, parentPath)
		if !ok {
			e.Result = fail(graph.Internal, "port has no owning patch")
			return
		}
		disconnectSubtree(patch, e.Path)
		patch.RemoveExternalPort(o)
		if patch.Path() == graph.Root && d.Driver != nil {
			if h := o.DriverHandle(); h != nil {
				d.Driver.RemovePort(h)
				o.SetDriverHandle(nil)
			}
		}
		if patch.Wrapper != nil {
			ports := patch.Wrapper.Ports
			for i, p := range ports {
				if p == o {
					patch.Wrapper.Ports = append(ports[:i], ports[i+1:]...)
					break
				}
			}
		}
		e.owner = patch

	default:
		e.Result = fail(graph.BadObjectType, "unrecognized object kind")
		return
	}

	e.detached = d.Store.Yank(e.Path)
	e.pending = pendingRecompile(e.owner)
	e.Result = success()
}

// disconnectSubtree removes, from owner's own connection set, every
// connection whose source or destination port lies within the subtree
// rooted at root. Connections are always local to the patch that
// directly contains both endpoints, so this never needs to search any
// other patch.
func disconnectSubtree(owner *graph.Patch, root graph.Path) {
	for _, c := range owner.Connections() {
		if inSubtree(c.Src.Path(), root) || inSubtree(c.Dst.Path(), root) {
			owner.RemoveConnection(c)
		}
	}
}

func (e *Delete) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {
	if e.owner != nil && e.pending != nil {
		e.owner.PublishCompiled(e.pending)
	}
	for _, obj := range e.detached {
		if port, ok := obj.(*graph.Port); ok {
			maid.Push(graph.DisposeFunc(port.ReleaseBuffers))
		}
	}
}

func (e *Delete) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success {
		b.Del(e.Path)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}

// Move renames an object in place. Cross-parent moves are rejected:
// NewPath must share OldPath's parent.
type Move struct {
	Base
	OldPath graph.Path
	NewPath graph.Path
}

func (e *Move) PreProcess(d *Deps) {
	if d.Store.Find(e.OldPath) == nil {
		e.Result = fail(graph.NotFound, "no object at "+string(e.OldPath))
		return
	}
	if d.Store.Find(e.NewPath) != nil {
		e.Result = fail(graph.AlreadyExists, "path in use: "+string(e.NewPath))
		return
	}
	oldParent, ok1 := e.OldPath.Parent()
	newParent, ok2 := e.NewPath.Parent()
	if !ok1 || !ok2 || oldParent != newParent {
		e.Result = fail(graph.ParentDiffers, "move across parents is not supported")
		return
	}

	detached := d.Store.Yank(e.OldPath)
	for p, obj := range detached {
		np := graph.RenamePath(p, e.OldPath, e.NewPath)
		switch o := obj.(type) {
		case *graph.Patch:
			o.Relocate(np)
			if o.Wrapper != nil {
				o.Wrapper.Relocate(np)
			}
		case *graph.Node:
			o.Relocate(np)
		case *graph.Port:
			o.Relocate(np)
		}
	}
	if status := d.Store.Cram(detached, e.OldPath, e.NewPath); status != graph.Success {
		e.Result = fail(status, "collision while moving "+string(e.OldPath))
		return
	}
	e.Result = success()
}

// Execute publishes nothing: Move changes no connections and no node
// runs differently, only the names by which objects are addressed.
func (e *Move) Execute(ctx *graph.ProcessContext, maid *graph.Maid) {}

func (e *Move) PostProcess(b *graph.Broadcaster) {
	if e.Result.Status == graph.Success {
		b.Move(e.OldPath, e.NewPath)
	}
	b.Respond(e.ID, e.Result.Status, e.Result.Message, e.Client)
}
