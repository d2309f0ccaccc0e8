// Package control implements MIDI control-binding storage and the
// MIDI-Learn workflow. It depends only on package
// graph, not on package event, so that event.ControlTable (the narrow
// interface event actually needs) can be satisfied without an import
// cycle between the two.
package control

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ingen-audio/ingen/graph"
)

// Kind is the MIDI message shape a Binding matches.
type Kind int

const (
	KindCC Kind = iota
	KindNote
	KindPitchBend
)

// Binding ties one port to one MIDI control surface: a channel number,
// a controller/note number, and the [Min,Max] range its 0-127 value is
// scaled into. Table.HandleMessage matches only control-change and
// note-on messages, so a KindPitchBend binding is never triggered.
type Binding struct {
	Kind       Kind
	Channel    uint8
	Controller uint8 // CC number or note number; unused for pitch bend
	Min, Max   float64
}

// Scale maps a raw 0-127 controller value into [b.Min, b.Max].
func (b Binding) Scale(raw uint8) float64 {
	t := float64(raw) / 127.0
	return b.Min + t*(b.Max-b.Min)
}

// ParseBinding decodes the compact textual form a controlBinding
// property stores, e.g. "cc:0:74:0:1" (kind:channel:controller:min:max)
// or "note:0:60:0:1". This is the encoding SetMetadata's Add map uses.
func ParseBinding(v graph.Value) (Binding, error) {
	if v.Kind != graph.ValueString {
		return Binding{}, fmt.Errorf("control: binding value must be a string, got %v", v.Kind)
	}
	parts := strings.Split(v.String, ":")
	if len(parts) != 5 {
		return Binding{}, fmt.Errorf("control: malformed binding %q", v.String)
	}
	var kind Kind
	switch parts[0] {
	case "cc":
		kind = KindCC
	case "note":
		kind = KindNote
	case "bend":
		kind = KindPitchBend
	default:
		return Binding{}, fmt.Errorf("control: unknown binding kind %q", parts[0])
	}
	ch, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return Binding{}, fmt.Errorf("control: bad channel in %q: %w", v.String, err)
	}
	ctrl, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return Binding{}, fmt.Errorf("control: bad controller in %q: %w", v.String, err)
	}
	min, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return Binding{}, fmt.Errorf("control: bad min in %q: %w", v.String, err)
	}
	max, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return Binding{}, fmt.Errorf("control: bad max in %q: %w", v.String, err)
	}
	return Binding{Kind: kind, Channel: uint8(ch), Controller: uint8(ctrl), Min: min, Max: max}, nil
}

// Encode is ParseBinding's inverse, used when a freshly learned binding
// is written back into a port's controlBinding property.
func (b Binding) Encode() graph.Value {
	var kind string
	switch b.Kind {
	case KindCC:
		kind = "cc"
	case KindNote:
		kind = "note"
	case KindPitchBend:
		kind = "bend"
	}
	return graph.StringValue(fmt.Sprintf("%s:%d:%d:%g:%g", kind, b.Channel, b.Controller, b.Min, b.Max))
}
