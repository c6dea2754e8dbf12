package binding

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/typeconv"
)

// Thunk calls a handler or constructor with a bound argument vector
type Thunk func(args []interface{}) (interface{}, error)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Func adapts a Go function to a Thunk. The function receives the argument vector
// positionally, each argument converted to the parameter type with typeconv, and may
// return nothing, an error, a value, or a value and an error.
func Func(fn interface{}) Thunk {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		gwlog.Panicf("Func: %T is not a function", fn)
	}
	if ft.IsVariadic() {
		gwlog.Panicf("Func: variadic function %s is not supported", ft)
	}

	resultValue, resultError := -1, -1
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			resultError = 0
		} else {
			resultValue = 0
		}
	case 2:
		if ft.Out(1) != errorType {
			gwlog.Panicf("Func: second result of %s must be error", ft)
		}
		resultValue, resultError = 0, 1
	default:
		gwlog.Panicf("Func: %s returns too many results", ft)
	}

	numIn := ft.NumIn()
	return func(args []interface{}) (result interface{}, err error) {
		if len(args) != numIn {
			return nil, errors.Errorf("%s called with %d arguments", ft, len(args))
		}

		in := make([]reflect.Value, numIn)
		for i, arg := range args {
			in[i], err = convertArg(arg, ft.In(i))
			if err != nil {
				return nil, errors.Wrapf(err, "argument %d of %s", i, ft)
			}
		}

		out := fv.Call(in)
		if resultError >= 0 && !out[resultError].IsNil() {
			err = out[resultError].Interface().(error)
		}
		if resultValue >= 0 && !isNilValue(out[resultValue]) {
			result = out[resultValue].Interface()
		}
		return
	}
}

func convertArg(arg interface{}, t reflect.Type) (v reflect.Value, err error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(t) {
		return av, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("cannot convert %T to %s: %v", arg, t, r)
		}
	}()
	return typeconv.Convert(arg, t), nil
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
