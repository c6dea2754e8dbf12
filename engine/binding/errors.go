package binding

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

var (
	// ErrParameterTypeMismatch means a supplied value cannot be coerced to its parameter type
	ErrParameterTypeMismatch = errors.New("parameter type mismatch")
	// ErrMissingParameter means a required parameter was not supplied
	ErrMissingParameter = errors.New("missing parameter")
	// ErrUnknownTypeTag means a descriptor's type tag resolves to no capability
	ErrUnknownTypeTag = errors.New("unknown type tag")
	// ErrNoDecoder means the resolved capability declares no constructor
	ErrNoDecoder = errors.New("no decoder")
)

// Failure is a binding failure of one parameter
type Failure struct {
	Kind     error // ErrParameterTypeMismatch or ErrMissingParameter
	Owner    string
	Param    string
	Expected ParamType
	Got      jsonval.Kind
	Cause    error // decode failure of a nested descriptor, if any
}

func (f *Failure) Error() string {
	if f.Kind == ErrMissingParameter {
		return fmt.Sprintf("%s: missing parameter '%s'", f.Owner, f.Param)
	}
	msg := fmt.Sprintf("%s: parameter '%s' expects %s, got %s", f.Owner, f.Param, f.Expected, f.Got)
	if f.Cause != nil {
		msg += ": " + f.Cause.Error()
	}
	return msg
}

// Unwrap returns the failure kind
func (f *Failure) Unwrap() error {
	return f.Kind
}

// TypeTagError reports a descriptor whose type tag cannot be decoded against a base
type TypeTagError struct {
	Base *Capability
	Tag  string
}

func (e *TypeTagError) Error() string {
	return fmt.Sprintf("no capability associated with type tag '%s' under %s", e.Tag, e.Base.Name())
}

// Unwrap returns ErrUnknownTypeTag
func (e *TypeTagError) Unwrap() error {
	return ErrUnknownTypeTag
}
