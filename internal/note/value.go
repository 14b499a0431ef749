package note

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the only timestamp form that becomes a date Value.
const DateLayout = "2006-01-02"

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindDatetime
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindDatetime:
		return "datetime"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is a front matter value. Front matter is free-form YAML, so every
// consumer has to check the kind it expects before using a value.
type Value struct {
	value interface{}
}

// Internal types to distinguish the string-backed variants.
type dateValue struct{ s string }
type datetimeValue struct{ s string }

type mapValue struct {
	keys   []string
	values map[string]Value
}

// String creates a string Value.
func String(s string) Value {
	return Value{value: s}
}

// Int creates an integer Value.
func Int(n int64) Value {
	return Value{value: n}
}

// Float creates a floating point Value.
func Float(f float64) Value {
	return Value{value: f}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{value: b}
}

// Date creates a date Value from a YYYY-MM-DD string.
func Date(s string) Value {
	return Value{value: dateValue{s}}
}

// Datetime creates a datetime Value.
func Datetime(s string) Value {
	return Value{value: datetimeValue{s}}
}

// List creates a list Value.
func List(items []Value) Value {
	return Value{value: items}
}

// Null creates a null Value.
func Null() Value {
	return Value{}
}

// Kind reports the variant held by the value.
func (v Value) Kind() Kind {
	switch v.value.(type) {
	case string:
		return KindString
	case int64, float64:
		return KindNumber
	case bool:
		return KindBool
	case dateValue:
		return KindDate
	case datetimeValue:
		return KindDatetime
	case []Value:
		return KindList
	case mapValue:
		return KindMap
	default:
		return KindNull
	}
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.value == nil
}

// AsString returns the value if it is a plain string. Dates are not strings.
func (v Value) AsString() (string, bool) {
	s, ok := v.value.(string)
	return s, ok
}

// AsDate returns the YYYY-MM-DD form of a date value.
func (v Value) AsDate() (string, bool) {
	d, ok := v.value.(dateValue)
	return d.s, ok
}

// AsNumber returns the value as a float64, if it is numeric.
func (v Value) AsNumber() (float64, bool) {
	switch n := v.value.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// AsBool returns the value as a boolean, if possible.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.value.(bool)
	return b, ok
}

// AsList returns the list items, if the value is a list.
func (v Value) AsList() ([]Value, bool) {
	items, ok := v.value.([]Value)
	return items, ok
}

// MapKeys returns the keys of a mapping value in document order.
func (v Value) MapKeys() []string {
	m, ok := v.value.(mapValue)
	if !ok {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// MapGet returns an entry of a mapping value.
func (v Value) MapGet(key string) (Value, bool) {
	m, ok := v.value.(mapValue)
	if !ok {
		return Value{}, false
	}
	item, ok := m.values[key]
	return item, ok
}

// Raw returns the plain Go value: string, int64, float64, bool, nil,
// []interface{} or map[string]interface{}. Dates come back as strings.
func (v Value) Raw() interface{} {
	switch x := v.value.(type) {
	case dateValue:
		return x.s
	case datetimeValue:
		return x.s
	case []Value:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = item.Raw()
		}
		return out
	case mapValue:
		out := make(map[string]interface{}, len(x.keys))
		for _, k := range x.keys {
			out[k] = x.values[k].Raw()
		}
		return out
	default:
		return x
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

// ValueFromNode converts a YAML node into a Value.
func ValueFromNode(node *yaml.Node) Value {
	if node == nil {
		return Null()
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null()
		}
		return ValueFromNode(node.Content[0])
	case yaml.AliasNode:
		return ValueFromNode(node.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			items = append(items, ValueFromNode(child))
		}
		return List(items)
	case yaml.MappingNode:
		m := mapValue{values: make(map[string]Value)}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if _, seen := m.values[key]; !seen {
				m.keys = append(m.keys, key)
			}
			m.values[key] = ValueFromNode(node.Content[i+1])
		}
		return Value{value: m}
	case yaml.ScalarNode:
		return scalarValue(node)
	}
	return Null()
}

func scalarValue(node *yaml.Node) Value {
	switch node.ShortTag() {
	case "!!null":
		return Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return Bool(b)
		}
	case "!!int":
		var n int64
		if err := node.Decode(&n); err == nil {
			return Int(n)
		}
		var f float64
		if err := node.Decode(&f); err == nil {
			return Float(f)
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil {
			return Float(f)
		}
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err == nil {
			return timeValue(node.Value)
		}
	}
	return String(node.Value)
}

// timeValue keeps a timestamp as written. Only a bare YYYY-MM-DD is a date.
func timeValue(text string) Value {
	if _, err := time.Parse(DateLayout, text); err == nil {
		return Date(text)
	}
	return Datetime(text)
}
