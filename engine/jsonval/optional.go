package jsonval

import "fmt"

// Optional is implemented by the optional wrappers. Literals omit absent optionals.
type Optional interface {
	Present() bool
	Interface() interface{}
}

// OptString is a string that may be absent
type OptString struct {
	value   string
	present bool
}

// AbsentString is the canonical absent OptString
var AbsentString = OptString{}

// SomeString wraps a present string
func SomeString(s string) OptString {
	return OptString{value: s, present: true}
}

// Present reports whether the value is present
func (o OptString) Present() bool { return o.present }

// Value returns the string, panics if absent
func (o OptString) Value() string {
	if !o.present {
		panic("OptString: value is absent")
	}
	return o.value
}

// ValueOr returns the string, or def if absent
func (o OptString) ValueOr(def string) string {
	if o.present {
		return o.value
	}
	return def
}

// Interface returns the string or nil
func (o OptString) Interface() interface{} {
	if o.present {
		return o.value
	}
	return nil
}

func (o OptString) String() string {
	if o.present {
		return fmt.Sprintf("OptString(%q)", o.value)
	}
	return "OptString(absent)"
}

// OptInt is an integer that may be absent
type OptInt struct {
	value   int
	present bool
}

// AbsentInt is the canonical absent OptInt
var AbsentInt = OptInt{}

// SomeInt wraps a present integer
func SomeInt(n int) OptInt {
	return OptInt{value: n, present: true}
}

// Present reports whether the value is present
func (o OptInt) Present() bool { return o.present }

// Value returns the integer, panics if absent
func (o OptInt) Value() int {
	if !o.present {
		panic("OptInt: value is absent")
	}
	return o.value
}

// ValueOr returns the integer, or def if absent
func (o OptInt) ValueOr(def int) int {
	if o.present {
		return o.value
	}
	return def
}

// Interface returns the integer as int64 or nil
func (o OptInt) Interface() interface{} {
	if o.present {
		return int64(o.value)
	}
	return nil
}

func (o OptInt) String() string {
	if o.present {
		return fmt.Sprintf("OptInt(%d)", o.value)
	}
	return "OptInt(absent)"
}

// OptFloat is a floating point number that may be absent
type OptFloat struct {
	value   float64
	present bool
}

// AbsentFloat is the canonical absent OptFloat
var AbsentFloat = OptFloat{}

// SomeFloat wraps a present float
func SomeFloat(f float64) OptFloat {
	return OptFloat{value: f, present: true}
}

// Present reports whether the value is present
func (o OptFloat) Present() bool { return o.present }

// Value returns the float, panics if absent
func (o OptFloat) Value() float64 {
	if !o.present {
		panic("OptFloat: value is absent")
	}
	return o.value
}

// ValueOr returns the float, or def if absent
func (o OptFloat) ValueOr(def float64) float64 {
	if o.present {
		return o.value
	}
	return def
}

// Interface returns the float or nil
func (o OptFloat) Interface() interface{} {
	if o.present {
		return o.value
	}
	return nil
}

func (o OptFloat) String() string {
	if o.present {
		return fmt.Sprintf("OptFloat(%v)", o.value)
	}
	return "OptFloat(absent)"
}

// OptBool is a boolean that may be absent
type OptBool struct {
	value   bool
	present bool
}

// AbsentBool is the canonical absent OptBool
var AbsentBool = OptBool{}

// SomeBool wraps a present boolean
func SomeBool(b bool) OptBool {
	return OptBool{value: b, present: true}
}

// Present reports whether the value is present
func (o OptBool) Present() bool { return o.present }

// Value returns the boolean, panics if absent
func (o OptBool) Value() bool {
	if !o.present {
		panic("OptBool: value is absent")
	}
	return o.value
}

// ValueOr returns the boolean, or def if absent
func (o OptBool) ValueOr(def bool) bool {
	if o.present {
		return o.value
	}
	return def
}

// Interface returns the boolean or nil
func (o OptBool) Interface() interface{} {
	if o.present {
		return o.value
	}
	return nil
}

func (o OptBool) String() string {
	if o.present {
		return fmt.Sprintf("OptBool(%v)", o.value)
	}
	return "OptBool(absent)"
}
