package graph

import "context"

// PortSpec describes one port in a Plugin's fixed port signature.
type PortSpec struct {
	Index     int
	Symbol    string
	Dir       Direction
	Type      PortType
	HasDefault bool
	Default   Value
}

// Descriptor is a plugin's static metadata: URI, a free-form type tag
// (e.g. "LV2", "LADSPA", "internal"), and its port signature. Not owned
// by the graph; shared by reference.
type Descriptor struct {
	URI     string
	Type    string
	Ports   []PortSpec
}

// Instance is a live instantiation of a plugin, as required from the
// plugin loader. The core never defines a plugin ABI; it
// only consumes this surface.
type Instance interface {
	// ConnectPort binds the buffer a given port index should read or
	// write for the duration of the next Run call. RT-safe.
	ConnectPort(index int, buf Buffer)
	Activate() error
	Run(ctx context.Context, nframes int) error
	Deactivate() error
	Destroy()

	// The following are optional; implementations that don't support
	// them should return ErrUnsupported.
	SelectProgram(bank, program int) error
	Configure(key, value string) error
	Learn() error
}

// ErrUnsupported is returned by optional Instance methods a given
// plugin type doesn't implement.
var ErrUnsupported = Status(Internal)

// Host is the plugin hosting interface the core consumes from an
// external loader: given a URI it resolves to a
// Descriptor, and can instantiate a live Instance at a sample rate.
// Unknown plugin types are a hard error at CreateNode pre_process()
// time; callers surface that by returning an error from
// Instantiate or a zero Descriptor plus false from Lookup.
type Host interface {
	Lookup(uri string) (Descriptor, bool)
	Instantiate(uri string, sampleRate float64) (Instance, error)
}
