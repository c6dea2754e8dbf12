// Package jsonval is the value model of the message protocol.
//
// A Value is held as a plain Go value of one of these dynamic types:
//
//	nil        JSON null
//	bool       JSON boolean
//	int64      JSON integer
//	float64    JSON floating point number
//	string     JSON string
//	Array      JSON array
//	*Object    JSON object
//
// Values produced by the parser always use exactly these types. Values built by
// application code are normalized by Object.Set and Array.Append.
package jsonval

import (
	"fmt"
	"math"
)

// Kind is the tag of a Value
type Kind uint8

const (
	// KindInvalid is the kind of Go values that are not part of the value model
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBool:    "boolean",
	KindInt:     "integer",
	KindFloat:   "float",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// KindOf returns the kind of a normalized value
func KindOf(v interface{}) Kind {
	switch v := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	case Array:
		return KindArray
	case *Object:
		if v == nil {
			return KindNull
		}
		return KindObject
	}
	return KindInvalid
}

// Normalize converts Go numeric kinds and []interface{} into value model types.
// Array elements are normalized too, in a new Array when any of them changes.
// Values it does not know are returned unchanged.
func Normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return float64(n)
	case []interface{}:
		return normalizeElements(n)
	case Array:
		for _, elem := range n {
			if !isNormalized(elem) {
				return normalizeElements(n)
			}
		}
	}
	return v
}

func isNormalized(v interface{}) bool {
	switch n := v.(type) {
	case nil, bool, int64, float64, string, *Object:
		return true
	case Array:
		for _, elem := range n {
			if !isNormalized(elem) {
				return false
			}
		}
		return true
	}
	return false
}

// normalizeElements copies elems into a new Array, normalizing each
func normalizeElements(elems []interface{}) Array {
	arr := make(Array, len(elems))
	for i, elem := range elems {
		arr[i] = Normalize(elem)
	}
	return arr
}

// Equal reports whether two values are deeply equal. Object key order is ignored.
func Equal(a, b interface{}) bool {
	a, b = Normalize(a), Normalize(b)
	switch av := a.(type) {
	case nil:
		return KindOf(b) == KindNull
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return false
		}
		return av == bv || (math.IsNaN(av) && math.IsNaN(bv))
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		return ok && av.Equal(bv)
	case *Object:
		if av == nil {
			return KindOf(b) == KindNull
		}
		bv, ok := b.(*Object)
		return ok && av.Equal(bv)
	}
	return a == b
}
