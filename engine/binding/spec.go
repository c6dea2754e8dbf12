package binding

import (
	"bytes"
	"fmt"
)

// Param is one named parameter
type Param struct {
	Name     string
	Type     ParamType
	Optional bool
}

// Required declares a parameter that must be supplied
func Required(name string, t ParamType) Param {
	return Param{Name: name, Type: t}
}

// Optional declares a parameter that is bound to its zero value when not supplied
func Optional(name string, t ParamType) Param {
	return Param{Name: name, Type: t, Optional: true}
}

// ParamSpec describes the parameters of a handler or constructor.
//
// The first Leading arguments are supplied by the caller (the sender, or the raw
// descriptor) and the rest are bound by name from JSON fields.
type ParamSpec struct {
	Leading int
	Params  []Param
}

// NewParamSpec creates a spec with the given number of leading fixed parameters
func NewParamSpec(leading int, params ...Param) ParamSpec {
	return ParamSpec{Leading: leading, Params: params}
}

// Arity returns the length of argument vectors bound for the spec
func (s ParamSpec) Arity() int {
	return s.Leading + len(s.Params)
}

func (s ParamSpec) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i := 0; i < s.Leading; i++ {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("_")
	}
	for i, p := range s.Params {
		if i > 0 || s.Leading > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s %s", p.Name, p.Type)
		if p.Optional {
			buf.WriteByte('?')
		}
	}
	buf.WriteByte(')')
	return buf.String()
}
