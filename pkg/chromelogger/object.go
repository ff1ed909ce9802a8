package chromelogger

import (
	"bytes"
)

// ClassNameKey holds the Go type name of a flattened value.
const ClassNameKey = "___class_name"

// Object is a flattened value. Keys keep their insertion order when encoded.
type Object struct {
	keys   []string
	values map[string]any
}

func newObject(className string) *Object {
	o := &Object{values: make(map[string]any)}
	o.Set(ClassNameKey, className)
	return o
}

// Set stores a value, appending the key if it is new.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// ClassName returns the recorded type name.
func (o *Object) ClassName() string {
	name, _ := o.values[ClassNameKey].(string)
	return name
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys, including ClassNameKey.
func (o *Object) Len() int { return len(o.keys) }

// MarshalJSON encodes the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshalJSON(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
