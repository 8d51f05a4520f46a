// Package document provides the JSON value model used by the enrichment
// pipeline. OpenAPI documents are decoded into a small sum of kinds —
// *Object, Array, string, Number, bool, nil — so transforms can do explicit
// recursive descent instead of scattering runtime type assertions over
// untyped maps. Object preserves key order end to end, which keeps
// re-serialized specs diffable against their inputs.
package document

import (
	json "github.com/goccy/go-json"
)

// Value is one of: *Object, Array, string, Number, bool, or nil.
type Value = any

// Array is an ordered JSON array of values.
type Array []Value

// Number is a JSON number kept in its source representation.
type Number = json.Number

// Object is a JSON object that preserves key insertion order.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns a copy of the key list in insertion order. Safe to iterate
// while mutating the object.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.vals[key]
	return ok
}

// Get returns the value for key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// GetObject returns the value for key if it is an object.
func (o *Object) GetObject(key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok
}

// GetArray returns the value for key if it is an array.
func (o *Object) GetArray(key string) (Array, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.(Array)
	return arr, ok
}

// GetString returns the value for key if it is a string.
func (o *Object) GetString(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores key=value, appending the key if it is new.
func (o *Object) Set(key string, v Value) {
	if o.vals == nil {
		o.vals = make(map[string]Value)
	}
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// SetFirst stores key=value, inserting the key at the front of the key
// order if it is new. Used where a field should lead the serialized object.
func (o *Object) SetFirst(key string, v Value) {
	if o.vals == nil {
		o.vals = make(map[string]Value)
	}
	if _, exists := o.vals[key]; !exists {
		o.keys = append([]string{key}, o.keys...)
	}
	o.vals[key] = v
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, exists := o.vals[key]; !exists {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{
		keys: make([]string, len(o.keys)),
		vals: make(map[string]Value, len(o.vals)),
	}
	copy(out.keys, o.keys)
	for k, v := range o.vals {
		out.vals[k] = CloneValue(v)
	}
	return out
}

// CloneValue returns a deep copy of any document value. Scalars are shared;
// they are immutable.
func CloneValue(v Value) Value {
	switch tv := v.(type) {
	case *Object:
		return tv.Clone()
	case Array:
		out := make(Array, len(tv))
		for i, item := range tv {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Int returns the value as an int64 when it carries an integral number.
func Int(v Value) (int64, bool) {
	switch tv := v.(type) {
	case Number:
		n, err := tv.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case int:
		return int64(tv), true
	case int64:
		return tv, true
	case float64:
		if tv == float64(int64(tv)) {
			return int64(tv), true
		}
	}
	return 0, false
}

// Float returns the value as a float64 when it carries a number.
func Float(v Value) (float64, bool) {
	switch tv := v.(type) {
	case Number:
		f, err := tv.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case int:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case float64:
		return tv, true
	}
	return 0, false
}

// Equal reports deep equality of two document values. Numbers compare
// numerically regardless of source representation.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			bval, ok := bv.Get(k)
			if !ok || !Equal(av.vals[k], bval) {
				return false
			}
		}
		return true
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	if af, ok := Float(a); ok {
		bf, ok := Float(b)
		return ok && af == bf
	}
	return a == b
}
