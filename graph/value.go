package graph

import "fmt"

// ValueKind tags the payload carried by a Value.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueURI
	ValueBlob
	ValueDict
)

// Value is the tagged union every Property maps a URI to.
// Only the field matching Kind is meaningful; the zero Value is ValueNone.
type Value struct {
	Kind    ValueKind
	Bool    bool
	Int     int64
	Float   float64
	String  string // also holds URI when Kind == ValueURI
	BlobURI string // Blob's type-URI
	Blob    []byte
	Dict    map[string]Value
}

func BoolValue(b bool) Value     { return Value{Kind: ValueBool, Bool: b} }
func IntValue(i int64) Value     { return Value{Kind: ValueInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: ValueFloat, Float: f} }
func StringValue(s string) Value { return Value{Kind: ValueString, String: s} }
func URIValue(u string) Value    { return Value{Kind: ValueURI, String: u} }
func BlobValue(typeURI string, data []byte) Value {
	return Value{Kind: ValueBlob, BlobURI: typeURI, Blob: data}
}
func DictValue(d map[string]Value) Value { return Value{Kind: ValueDict, Dict: d} }

// Equal does a structural comparison, used by round-trip tests.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.Bool == o.Bool
	case ValueInt:
		return v.Int == o.Int
	case ValueFloat:
		return v.Float == o.Float
	case ValueString, ValueURI:
		return v.String == o.String
	case ValueBlob:
		if v.BlobURI != o.BlobURI || len(v.Blob) != len(o.Blob) {
			return false
		}
		for i := range v.Blob {
			if v.Blob[i] != o.Blob[i] {
				return false
			}
		}
		return true
	case ValueDict:
		if len(v.Dict) != len(o.Dict) {
			return false
		}
		for k, vv := range v.Dict {
			ov, ok := o.Dict[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) String_() string {
	switch v.Kind {
	case ValueBool:
		return fmt.Sprintf("%v", v.Bool)
	case ValueInt:
		return fmt.Sprintf("%d", v.Int)
	case ValueFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValueString, ValueURI:
		return v.String
	case ValueBlob:
		return fmt.Sprintf("blob<%s,%dB>", v.BlobURI, len(v.Blob))
	case ValueDict:
		return fmt.Sprintf("dict<%d>", len(v.Dict))
	default:
		return "<none>"
	}
}

// Property URIs with engine-level meaning.
const (
	PropPolyphony      = "polyphony"
	PropPolyphonic     = "polyphonic"
	PropEnabled        = "enabled"
	PropValue          = "value"
	PropControlBinding = "controlBinding"
	PropBroadcast      = "broadcast"
	PropInstanceOf     = "instanceOf"
	PropPluginType     = "pluginType"
)

// Properties is the URI -> Value map every graph object carries.
// It is only ever mutated from pre_process(); execute() observes a
// frozen map captured at publish time.
type Properties map[string]Value

// Clone returns a shallow copy safe for publication to a new object
// revision without aliasing the original map.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with add applied on top, honoring replace vs.
// append semantics used by SetMetadata: replace always wins for scalar
// keys, since Properties has no multi-valued slots in this model.
func (p Properties) Merge(add Properties) Properties {
	out := p.Clone()
	if out == nil {
		out = make(Properties, len(add))
	}
	for k, v := range add {
		out[k] = v
	}
	return out
}
