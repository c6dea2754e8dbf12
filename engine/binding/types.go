package binding

import (
	"reflect"

	"github.com/xiaonanln/goelko/engine/jsonval"
)

type typeKind uint8

const (
	kindAny typeKind = iota
	kindString
	kindInt
	kindInt8
	kindInt16
	kindInt32
	kindInt64
	kindFloat32
	kindFloat64
	kindBool
	kindOptString
	kindOptInt
	kindOptFloat
	kindOptBool
	kindJSONArray
	kindJSONObject
	kindSlice
	kindDecodable
)

// ParamType is the declared type of a parameter
type ParamType struct {
	kind typeKind
	elem *ParamType  // for SliceOf
	base *Capability // for Decodable
}

// Declared parameter types
var (
	Any        = ParamType{kind: kindAny}
	String     = ParamType{kind: kindString}
	Int        = ParamType{kind: kindInt}
	Int8       = ParamType{kind: kindInt8}
	Int16      = ParamType{kind: kindInt16}
	Int32      = ParamType{kind: kindInt32}
	Int64      = ParamType{kind: kindInt64}
	Float32    = ParamType{kind: kindFloat32}
	Float64    = ParamType{kind: kindFloat64}
	Bool       = ParamType{kind: kindBool}
	OptString  = ParamType{kind: kindOptString}
	OptInt     = ParamType{kind: kindOptInt}
	OptFloat   = ParamType{kind: kindOptFloat}
	OptBool    = ParamType{kind: kindOptBool}
	JSONArray  = ParamType{kind: kindJSONArray}
	JSONObject = ParamType{kind: kindJSONObject}
)

// SliceOf is a native slice whose elements are coerced to elem
func SliceOf(elem ParamType) ParamType {
	return ParamType{kind: kindSlice, elem: &elem}
}

// Decodable is an object decoded against base
func Decodable(base *Capability) ParamType {
	if base == nil {
		panic("Decodable: nil capability")
	}
	return ParamType{kind: kindDecodable, base: base}
}

var typeNames = [...]string{
	kindAny:        "any",
	kindString:     "string",
	kindInt:        "int",
	kindInt8:       "int8",
	kindInt16:      "int16",
	kindInt32:      "int32",
	kindInt64:      "int64",
	kindFloat32:    "float32",
	kindFloat64:    "float64",
	kindBool:       "bool",
	kindOptString:  "OptString",
	kindOptInt:     "OptInt",
	kindOptFloat:   "OptFloat",
	kindOptBool:    "OptBool",
	kindJSONArray:  "Array",
	kindJSONObject: "Object",
}

func (t ParamType) String() string {
	switch t.kind {
	case kindSlice:
		return "[]" + t.elem.String()
	case kindDecodable:
		return t.base.Name()
	}
	return typeNames[t.kind]
}

// IsOptionalWrapper reports whether the type is one of the Opt wrappers
func (t ParamType) IsOptionalWrapper() bool {
	switch t.kind {
	case kindOptString, kindOptInt, kindOptFloat, kindOptBool:
		return true
	}
	return false
}

// IsCollection reports whether the type is an array or slice type
func (t ParamType) IsCollection() bool {
	return t.kind == kindJSONArray || t.kind == kindSlice
}

var (
	interfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
	goTypes       = [...]reflect.Type{
		kindAny:        interfaceType,
		kindString:     reflect.TypeOf(""),
		kindInt:        reflect.TypeOf(int(0)),
		kindInt8:       reflect.TypeOf(int8(0)),
		kindInt16:      reflect.TypeOf(int16(0)),
		kindInt32:      reflect.TypeOf(int32(0)),
		kindInt64:      reflect.TypeOf(int64(0)),
		kindFloat32:    reflect.TypeOf(float32(0)),
		kindFloat64:    reflect.TypeOf(float64(0)),
		kindBool:       reflect.TypeOf(false),
		kindOptString:  reflect.TypeOf(jsonval.OptString{}),
		kindOptInt:     reflect.TypeOf(jsonval.OptInt{}),
		kindOptFloat:   reflect.TypeOf(jsonval.OptFloat{}),
		kindOptBool:    reflect.TypeOf(jsonval.OptBool{}),
		kindJSONArray:  reflect.TypeOf(jsonval.Array{}),
		kindJSONObject: reflect.TypeOf((*jsonval.Object)(nil)),
		kindDecodable:  interfaceType,
	}
)

// GoType returns the Go type of the bound argument
func (t ParamType) GoType() reflect.Type {
	if t.kind == kindSlice {
		return reflect.SliceOf(t.elem.GoType())
	}
	return goTypes[t.kind]
}

// absentValue is the value bound to an optional wrapper slot nothing was supplied for
func (t ParamType) absentValue() interface{} {
	switch t.kind {
	case kindOptString:
		return jsonval.AbsentString
	case kindOptInt:
		return jsonval.AbsentInt
	case kindOptFloat:
		return jsonval.AbsentFloat
	case kindOptBool:
		return jsonval.AbsentBool
	}
	return nil
}

// zeroValue is the value bound to an empty slot flagged optional
func (t ParamType) zeroValue() interface{} {
	if t.IsOptionalWrapper() {
		return t.absentValue()
	}
	switch t.kind {
	case kindAny, kindDecodable, kindJSONArray, kindJSONObject, kindSlice:
		return nil
	}
	return reflect.Zero(t.GoType()).Interface()
}
