package binding

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/common"
	"github.com/xiaonanln/goelko/engine/consts"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

// ReservedKeys are envelope fields tolerated without warning when no parameter takes them
var ReservedKeys = common.NewStringSet(consts.KEY_OP, consts.KEY_TO, consts.KEY_TYPE, consts.KEY_REF, consts.KEY_ID)

// Invoker binds supplied named values to the argument vector of one ParamSpec
type Invoker struct {
	owner string
	spec  ParamSpec
	index map[string]int
}

// NewInvoker validates the spec and builds its name index. owner names the handler
// or constructor in diagnostics.
func NewInvoker(owner string, spec ParamSpec) (*Invoker, error) {
	if spec.Leading < 0 {
		return nil, errors.Errorf("%s: negative leading parameter count %d", owner, spec.Leading)
	}
	index := make(map[string]int, len(spec.Params))
	for i, p := range spec.Params {
		if p.Name == "" {
			return nil, errors.Errorf("%s: parameter %d has no name", owner, i)
		}
		if _, ok := index[p.Name]; ok {
			return nil, errors.Errorf("%s: duplicate parameter '%s'", owner, p.Name)
		}
		if p.Type.kind == kindSlice && p.Type.elem == nil {
			return nil, errors.Errorf("%s: parameter '%s' has a slice type without element type", owner, p.Name)
		}
		index[p.Name] = i
	}
	return &Invoker{owner: owner, spec: spec, index: index}, nil
}

// MustInvoker is NewInvoker that panics on an invalid spec
func MustInvoker(owner string, spec ParamSpec) *Invoker {
	inv, err := NewInvoker(owner, spec)
	if err != nil {
		gwlog.Panicf("%s", err)
	}
	return inv
}

// Owner returns the name of the handler or constructor
func (inv *Invoker) Owner() string {
	return inv.owner
}

// Spec returns the bound ParamSpec
func (inv *Invoker) Spec() ParamSpec {
	return inv.spec
}

// Bind builds the argument vector: the fixed leading values followed by the supplied
// fields coerced to the declared parameter types. It returns a *Failure when a value
// cannot be coerced or a required parameter is missing; the vector is then nil.
//
// Nested descriptors are decoded with DefaultDecoders and the given resolver
// (DefaultResolver when nil).
func (inv *Invoker) Bind(fixed []interface{}, supplied *jsonval.Object, resolver TypeResolver) ([]interface{}, error) {
	return inv.bind(fixed, supplied, resolver, DefaultDecoders)
}

func (inv *Invoker) bind(fixed []interface{}, supplied *jsonval.Object, resolver TypeResolver, decoders *DecoderTable) ([]interface{}, error) {
	if len(fixed) != inv.spec.Leading {
		return nil, errors.Errorf("%s: expects %d leading arguments, got %d", inv.owner, inv.spec.Leading, len(fixed))
	}
	if resolver == nil {
		resolver = DefaultResolver
	}

	params := inv.spec.Params
	args := make([]interface{}, inv.spec.Arity())
	filled := make([]bool, len(params))
	var failure error

	if supplied != nil {
		supplied.Range(func(name string, value interface{}) bool {
			i, ok := inv.index[name]
			if !ok {
				if !ReservedKeys.Contains(name) {
					gwlog.Warnf("%s: ignoring unknown parameter '%s'", inv.owner, name)
				}
				return true
			}
			if value == nil {
				return true // null is treated as not supplied
			}
			p := params[i]
			v, ok, cause := coerce(value, p.Type, resolver, decoders)
			if !ok {
				failure = &Failure{
					Kind:     ErrParameterTypeMismatch,
					Owner:    inv.owner,
					Param:    p.Name,
					Expected: p.Type,
					Got:      jsonval.KindOf(value),
					Cause:    cause,
				}
				return false
			}
			args[inv.spec.Leading+i] = v
			filled[i] = true
			return true
		})
	}
	if failure != nil {
		return nil, failure
	}

	for i, p := range params {
		if filled[i] {
			continue
		}
		switch {
		case p.Type.IsOptionalWrapper():
			args[inv.spec.Leading+i] = p.Type.absentValue()
		case p.Type.IsCollection():
			args[inv.spec.Leading+i] = nil
		case p.Optional:
			args[inv.spec.Leading+i] = p.Type.zeroValue()
		default:
			return nil, &Failure{
				Kind:     ErrMissingParameter,
				Owner:    inv.owner,
				Param:    p.Name,
				Expected: p.Type,
				Got:      jsonval.KindNull,
			}
		}
	}

	copy(args, fixed)
	return args, nil
}

// coerce converts a normalized value to the declared type
func coerce(v interface{}, t ParamType, resolver TypeResolver, decoders *DecoderTable) (interface{}, bool, error) {
	switch t.kind {
	case kindAny:
		return v, true, nil
	case kindString:
		s, ok := v.(string)
		return s, ok, nil
	case kindOptString:
		if s, ok := v.(string); ok {
			return jsonval.SomeString(s), true, nil
		}
	case kindInt, kindInt8, kindInt16, kindInt32, kindInt64, kindOptInt:
		var n int64
		switch x := v.(type) {
		case int64:
			n = x
		case float64:
			n = int64(x)
		default:
			return nil, false, nil
		}
		switch t.kind {
		case kindInt:
			return int(n), true, nil
		case kindInt8:
			return int8(n), true, nil
		case kindInt16:
			return int16(n), true, nil
		case kindInt32:
			return int32(n), true, nil
		case kindInt64:
			return n, true, nil
		default:
			return jsonval.SomeInt(int(n)), true, nil
		}
	case kindFloat32, kindFloat64, kindOptFloat:
		var f float64
		switch x := v.(type) {
		case int64:
			f = float64(x)
		case float64:
			f = x
		default:
			return nil, false, nil
		}
		switch t.kind {
		case kindFloat32:
			return float32(f), true, nil
		case kindFloat64:
			return f, true, nil
		default:
			return jsonval.SomeFloat(f), true, nil
		}
	case kindBool:
		b, ok := v.(bool)
		return b, ok, nil
	case kindOptBool:
		if b, ok := v.(bool); ok {
			return jsonval.SomeBool(b), true, nil
		}
	case kindJSONArray:
		a, ok := v.(jsonval.Array)
		return a, ok, nil
	case kindJSONObject:
		if o, ok := v.(*jsonval.Object); ok && o != nil {
			return o, true, nil
		}
	case kindSlice:
		return coerceSlice(v, t, resolver, decoders)
	case kindDecodable:
		if o, ok := v.(*jsonval.Object); ok && o != nil {
			obj, err := decoders.decode(t.base, o, resolver)
			if err != nil {
				return nil, false, err
			}
			return obj, true, nil
		}
		if t.base.Accepts(v) {
			return v, true, nil
		}
	}
	return nil, false, nil
}

func coerceSlice(v interface{}, t ParamType, resolver TypeResolver, decoders *DecoderTable) (interface{}, bool, error) {
	arr, ok := v.(jsonval.Array)
	if !ok {
		return nil, false, nil
	}
	slice := reflect.MakeSlice(t.GoType(), len(arr), len(arr))
	for i, elem := range arr {
		ev, ok, cause := coerce(elem, *t.elem, resolver, decoders)
		if !ok {
			return nil, false, cause
		}
		if ev != nil {
			slice.Index(i).Set(reflect.ValueOf(ev))
		}
	}
	return slice.Interface(), true, nil
}
