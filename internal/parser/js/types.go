package js

import "bennypowers.dev/sitecheck/internal/parser/css"

// ValueKind identifies the literal type of an object property value
type ValueKind int

const (
	// OtherValue is any expression that is not a plain literal (identifiers, calls, functions)
	OtherValue ValueKind = iota
	NumberValue
	StringValue
	BoolValue
	ObjectValue
	ArrayValue
)

// Value is a property value from an object literal
type Value struct {
	Kind ValueKind
	// Raw is the value's source text
	Raw    string
	Number float64
	Text   string
	Bool   bool
	Object *Object
	Range  css.Range
}

// Property is a single key/value pair of an object literal
type Property struct {
	// Key is the property name: identifiers and strings as written, numbers in canonical form
	Key   string
	Value *Value
}

// Object is an object literal with its properties in source order
type Object struct {
	Properties []*Property
}

// Get returns the value of key. Duplicate keys resolve to the last one, as
// they do at runtime.
func (o *Object) Get(key string) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	for i := len(o.Properties) - 1; i >= 0; i-- {
		if o.Properties[i].Key == key {
			return o.Properties[i].Value, true
		}
	}
	return nil, false
}

// Number returns the numeric value of key
func (o *Object) Number(key string) (float64, bool) {
	v, ok := o.Get(key)
	if !ok || v.Kind != NumberValue {
		return 0, false
	}
	return v.Number, true
}

// Nested returns the object literal stored under key
func (o *Object) Nested(key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok || v.Kind != ObjectValue {
		return nil, false
	}
	return v.Object, true
}

// WidgetCall is a `new Constructor('selector', {...})` expression
type WidgetCall struct {
	Constructor string
	// Selector is the first argument when it is a string literal, else empty
	Selector string
	// Body is the text between the braces of the configuration object
	Body string
	// Config is nil when the second argument is not an object literal
	Config *Object
	Range  css.Range
}
