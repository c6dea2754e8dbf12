package jsonval

import "github.com/xiaonanln/goelko/engine/consts"

// Object is a JSON object. Keys are unique and remember their insertion order.
type Object struct {
	props map[string]interface{}
	keys  []string
}

// NewObject creates an empty Object
func NewObject() *Object {
	return &Object{props: map[string]interface{}{}}
}

// NewMessage creates an Object addressed to a target with the given verb
func NewMessage(to, op string) *Object {
	obj := NewObject()
	if to != "" {
		obj.Set(consts.KEY_TO, to)
	}
	obj.Set(consts.KEY_OP, op)
	return obj
}

// NewTyped creates an Object descriptor carrying a type tag
func NewTyped(tag string) *Object {
	obj := NewObject()
	obj.Set(consts.KEY_TYPE, tag)
	return obj
}

func (o *Object) String() string {
	return EncodeValue(ForClient, o)
}

// Len returns the number of properties
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the property names in insertion order
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Range calls f for each property in insertion order until f returns false
func (o *Object) Range(f func(name string, value interface{}) bool) {
	for _, key := range o.keys {
		if !f(key, o.props[key]) {
			return
		}
	}
}

// Get returns the value of a property and whether it exists
func (o *Object) Get(name string) (interface{}, bool) {
	v, ok := o.props[name]
	return v, ok
}

// Has checks if the object has the property
func (o *Object) Has(name string) bool {
	_, ok := o.props[name]
	return ok
}

// Set adds or replaces a property. The value is normalized first.
func (o *Object) Set(name string, value interface{}) {
	if o.props == nil {
		o.props = map[string]interface{}{}
	}
	if _, ok := o.props[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.props[name] = Normalize(value)
}

// Remove deletes a property, returning its old value
func (o *Object) Remove(name string) interface{} {
	v, ok := o.props[name]
	if !ok {
		return nil
	}
	delete(o.props, name)
	for i, key := range o.keys {
		if key == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return v
}

// CopyFrom copies one property of another object, if it exists there
func (o *Object) CopyFrom(other *Object, name string) {
	if v, ok := other.props[name]; ok {
		o.Set(name, v)
	}
}

// Copy returns a shallow copy of the object
func (o *Object) Copy() *Object {
	cp := &Object{props: make(map[string]interface{}, len(o.props)), keys: o.Keys()}
	for k, v := range o.props {
		cp.props[k] = v
	}
	return cp
}

// Equal compares two objects property by property, ignoring key order
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.props) != len(other.props) {
		return false
	}
	for k, v := range o.props {
		ov, ok := other.props[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// Verb returns the message verb, "" if absent
func (o *Object) Verb() string {
	return o.weakString(consts.KEY_OP)
}

// Target returns the message target reference, "" if absent
func (o *Object) Target() string {
	return o.weakString(consts.KEY_TO)
}

// TypeTag returns the descriptor type tag, "" if absent
func (o *Object) TypeTag() string {
	return o.weakString(consts.KEY_TYPE)
}

func (o *Object) weakString(name string) string {
	if s, ok := o.props[name].(string); ok {
		return s
	}
	return ""
}

func (o *Object) lookup(name string) (interface{}, error) {
	v, ok := o.props[name]
	if !ok {
		return nil, &DecodingError{Where: name, Missing: true}
	}
	return v, nil
}

func propName(name string) string {
	return "property '" + name + "'"
}

// GetString returns a string property
func (o *Object) GetString(name string) (string, error) {
	v, err := o.lookup(name)
	if err != nil {
		return "", err
	}
	return asString(propName(name), v)
}

// GetInt returns an integer property as int
func (o *Object) GetInt(name string) (int, error) {
	n, err := o.GetInt64(name)
	return int(n), err
}

// GetInt64 returns an integer property. Floating values are truncated.
func (o *Object) GetInt64(name string) (int64, error) {
	v, err := o.lookup(name)
	if err != nil {
		return 0, err
	}
	return asInt64(propName(name), v)
}

// GetFloat returns a numeric property as float64
func (o *Object) GetFloat(name string) (float64, error) {
	v, err := o.lookup(name)
	if err != nil {
		return 0, err
	}
	return asFloat(propName(name), v)
}

// GetBool returns a boolean property
func (o *Object) GetBool(name string) (bool, error) {
	v, err := o.lookup(name)
	if err != nil {
		return false, err
	}
	return asBool(propName(name), v)
}

// GetArray returns an array property
func (o *Object) GetArray(name string) (Array, error) {
	v, err := o.lookup(name)
	if err != nil {
		return nil, err
	}
	return asArray(propName(name), v)
}

// GetObject returns an object property
func (o *Object) GetObject(name string) (*Object, error) {
	v, err := o.lookup(name)
	if err != nil {
		return nil, err
	}
	return asObject(propName(name), v)
}

// OptString returns a string property, or def if the property is absent or null
func (o *Object) OptString(name string, def string) (string, error) {
	if v := o.props[name]; v != nil {
		return asString(propName(name), v)
	}
	return def, nil
}

// OptInt returns an integer property, or def if the property is absent or null
func (o *Object) OptInt(name string, def int) (int, error) {
	n, err := o.OptInt64(name, int64(def))
	return int(n), err
}

// OptInt64 returns an integer property, or def if the property is absent or null
func (o *Object) OptInt64(name string, def int64) (int64, error) {
	if v := o.props[name]; v != nil {
		return asInt64(propName(name), v)
	}
	return def, nil
}

// OptFloat returns a numeric property, or def if the property is absent or null
func (o *Object) OptFloat(name string, def float64) (float64, error) {
	if v := o.props[name]; v != nil {
		return asFloat(propName(name), v)
	}
	return def, nil
}

// OptBool returns a boolean property, or def if the property is absent or null
func (o *Object) OptBool(name string, def bool) (bool, error) {
	if v := o.props[name]; v != nil {
		return asBool(propName(name), v)
	}
	return def, nil
}

// OptArray returns an array property, or def if the property is absent or null
func (o *Object) OptArray(name string, def Array) (Array, error) {
	if v := o.props[name]; v != nil {
		return asArray(propName(name), v)
	}
	return def, nil
}

// OptObject returns an object property, or def if the property is absent or null
func (o *Object) OptObject(name string, def *Object) (*Object, error) {
	if v := o.props[name]; v != nil {
		return asObject(propName(name), v)
	}
	return def, nil
}

func asString(where string, v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", mismatch(where, KindString, v)
}

func asInt64(where string, v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	}
	return 0, mismatch(where, KindInt, v)
}

func asFloat(where string, v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	}
	return 0, mismatch(where, KindFloat, v)
}

func asBool(where string, v interface{}) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, mismatch(where, KindBool, v)
}

func asArray(where string, v interface{}) (Array, error) {
	if a, ok := v.(Array); ok {
		return a, nil
	}
	return nil, mismatch(where, KindArray, v)
}

func asObject(where string, v interface{}) (*Object, error) {
	if o, ok := v.(*Object); ok && o != nil {
		return o, nil
	}
	return nil, mismatch(where, KindObject, v)
}
