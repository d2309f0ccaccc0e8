// Package pluginhost provides an in-process plugin host that satisfies
// graph.Host without loading any real plugin binary, for driving the
// engine in tests and examples. Its catalog shape is a named
// descriptor carrying a fixed port list, with no cgo or AudioUnit
// introspection involved.
package pluginhost

import (
	"context"
	"fmt"
	"sync"

	"github.com/ingen-audio/ingen/graph"
)

// TestHost is a fixed, in-memory plugin catalog. Register adds entries;
// Lookup/Instantiate serve graph.Host. Safe for concurrent use.
type TestHost struct {
	mu      sync.Mutex
	plugins map[string]graph.Descriptor
	makers  map[string]func() Processor
}

// Processor is the pure signal-processing callback a registered plugin
// supplies; TestHost wraps it in an Instance that does buffer
// bookkeeping generically.
type Processor func(ports []graph.Buffer, nframes int)

func NewTestHost() *TestHost {
	return &TestHost{plugins: make(map[string]graph.Descriptor), makers: make(map[string]func() Processor)}
}

// Register adds a plugin to the catalog. maker returns a fresh
// Processor per Instantiate call, since a plugin may hold per-instance
// state (e.g. a running gain ramp).
func (h *TestHost) Register(desc graph.Descriptor, maker func() Processor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.plugins[desc.URI] = desc
	h.makers[desc.URI] = maker
}

func (h *TestHost) Lookup(uri string) (graph.Descriptor, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.plugins[uri]
	return d, ok
}

func (h *TestHost) Instantiate(uri string, sampleRate float64) (graph.Instance, error) {
	h.mu.Lock()
	desc, ok := h.plugins[uri]
	maker := h.makers[uri]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("pluginhost: unknown plugin %s", uri)
	}
	return &instance{desc: desc, sampleRate: sampleRate, proc: maker(), ports: make([]graph.Buffer, len(desc.Ports))}, nil
}

// Rescan satisfies the optional pluginRescanner surface LoadPlugins
// probes for; a fixed in-memory catalog has nothing to refresh.
func (h *TestHost) Rescan() error { return nil }

// Catalog returns every registered Descriptor, satisfying the optional
// pluginCatalog surface event.RequestPlugins probes for.
func (h *TestHost) Catalog() []graph.Descriptor {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]graph.Descriptor, 0, len(h.plugins))
	for _, d := range h.plugins {
		out = append(out, d)
	}
	return out
}

type instance struct {
	desc       graph.Descriptor
	sampleRate float64
	proc       Processor
	ports      []graph.Buffer
	active     bool
}

func (i *instance) ConnectPort(index int, buf graph.Buffer) {
	if index < 0 || index >= len(i.ports) {
		return
	}
	i.ports[index] = buf
}

func (i *instance) Activate() error   { i.active = true; return nil }
func (i *instance) Deactivate() error { i.active = false; return nil }
func (i *instance) Destroy()          {}

func (i *instance) Run(ctx context.Context, nframes int) error {
	if !i.active || i.proc == nil {
		return nil
	}
	i.proc(i.ports, nframes)
	return nil
}

func (i *instance) SelectProgram(bank, program int) error { return graph.ErrUnsupported }
func (i *instance) Configure(key, value string) error     { return graph.ErrUnsupported }
func (i *instance) Learn() error                          { return graph.ErrUnsupported }
