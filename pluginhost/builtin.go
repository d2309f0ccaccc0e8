package pluginhost

import "github.com/ingen-audio/ingen/graph"

// RegisterBuiltins adds a handful of trivial plugins useful for
// exercising the graph without any real DSP backend: a mono passthrough,
// a mono gain stage, and a constant CV source.
func RegisterBuiltins(h *TestHost) {
	h.Register(graph.Descriptor{
		URI:  "ingen:builtin:passthrough",
		Type: "internal",
		Ports: []graph.PortSpec{
			{Index: 0, Symbol: "in", Dir: graph.Input, Type: graph.TypeAudio},
			{Index: 1, Symbol: "out", Dir: graph.Output, Type: graph.TypeAudio},
		},
	}, func() Processor {
		return func(ports []graph.Buffer, nframes int) {
			in, ok1 := ports[0].(*graph.AudioBuffer)
			out, ok2 := ports[1].(*graph.AudioBuffer)
			if !ok1 || !ok2 {
				return
			}
			copy(out.Samples, in.Samples)
		}
	})

	h.Register(graph.Descriptor{
		URI:  "ingen:builtin:gain",
		Type: "internal",
		Ports: []graph.PortSpec{
			{Index: 0, Symbol: "in", Dir: graph.Input, Type: graph.TypeAudio},
			{Index: 1, Symbol: "gain", Dir: graph.Input, Type: graph.TypeControl, HasDefault: true, Default: graph.FloatValue(1)},
			{Index: 2, Symbol: "out", Dir: graph.Output, Type: graph.TypeAudio},
		},
	}, func() Processor {
		return func(ports []graph.Buffer, nframes int) {
			in, ok1 := ports[0].(*graph.AudioBuffer)
			gainBuf, ok2 := ports[1].(*graph.AudioBuffer)
			out, ok3 := ports[2].(*graph.AudioBuffer)
			if !ok1 || !ok2 || !ok3 {
				return
			}
			g := gainBuf.Last()
			for i := range out.Samples {
				out.Samples[i] = in.Samples[i] * g
			}
		}
	})

	h.Register(graph.Descriptor{
		URI:  "ingen:builtin:constant-cv",
		Type: "internal",
		Ports: []graph.PortSpec{
			{Index: 0, Symbol: "value", Dir: graph.Input, Type: graph.TypeControl, HasDefault: true, Default: graph.FloatValue(0)},
			{Index: 1, Symbol: "out", Dir: graph.Output, Type: graph.TypeCV},
		},
	}, func() Processor {
		return func(ports []graph.Buffer, nframes int) {
			val, ok1 := ports[0].(*graph.AudioBuffer)
			out, ok2 := ports[1].(*graph.CVBuffer)
			if !ok1 || !ok2 {
				return
			}
			out.Set(val.Last())
		}
	})
}
