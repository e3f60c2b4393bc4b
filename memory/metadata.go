package memory

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

// Value is one metadata value: a string, number, bool, or list of scalars.
// Metadata has no fixed schema; values are checked only when a filter
// clause touches them.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
}

func String(s string) Value     { return Value{kind: KindString, str: s} }
func Number(n float64) Value    { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func List(elems ...Value) Value { return Value{kind: KindList, list: elems} }

func (v Value) Kind() Kind { return v.kind }

// AsString returns the string variant, or false if v holds something else.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric variant, or false if v holds something else.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the bool variant, or false if v holds something else.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsList returns the list variant, or false if v holds something else.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// Equal compares values by kind and content. Lists compare elementwise.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes the underlying scalar or list directly, so metadata
// round-trips as plain JSON objects.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		elems := v.list
		if elems == nil {
			elems = []Value{}
		}
		return json.Marshal(elems)
	}
	return nil, goerr.New("cannot marshal invalid metadata value", goerr.T(TagValidation))
}

// UnmarshalJSON accepts a JSON string, number, bool, or array of scalars.
// Objects and nested arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "invalid metadata value", goerr.T(TagValidation))
	}
	val, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func valueOf(raw any) (Value, error) {
	switch t := raw.(type) {
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case []any:
		elems := make([]Value, 0, len(t))
		for _, e := range t {
			ev, err := valueOf(e)
			if err != nil {
				return Value{}, err
			}
			if ev.kind == KindList {
				return Value{}, goerr.New("nested lists are not allowed in metadata",
					goerr.T(TagValidation))
			}
			elems = append(elems, ev)
		}
		return List(elems...), nil
	default:
		return Value{}, goerr.New("unsupported metadata value type",
			goerr.T(TagValidation), goerr.V("value", raw))
	}
}

// Metadata is the open-schema record metadata: string keys mapped to
// scalar or list-of-scalar values.
type Metadata map[string]Value

// Clone returns a shallow copy. List values share backing arrays, which is
// fine because Value contents are never mutated in place.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MetadataFromJSON decodes a JSON object into Metadata.
// An empty input yields an empty Metadata.
func MetadataFromJSON(data []byte) (Metadata, error) {
	if len(data) == 0 {
		return Metadata{}, nil
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, goerr.Wrap(err, "invalid metadata JSON", goerr.T(TagValidation))
	}
	if md == nil {
		md = Metadata{}
	}
	return md, nil
}

// JSON encodes the metadata as a JSON object string for persistence.
func (m Metadata) JSON() (string, error) {
	if m == nil {
		m = Metadata{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode metadata", goerr.T(TagValidation))
	}
	return string(data), nil
}
