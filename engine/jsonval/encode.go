package jsonval

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xiaonanln/goelko/engine/consts"
)

var reservedKeyOrder = [...]string{consts.KEY_TO, consts.KEY_OP, consts.KEY_TYPE}

// EncodeValue returns the wire text of any value
func EncodeValue(ctl EncodeControl, v interface{}) string {
	var buf bytes.Buffer
	if !writeValue(&buf, ctl, v) {
		return ""
	}
	return buf.String()
}

// writeValue appends the wire text of v. It returns false, possibly after writing
// partial text, when v asks to be omitted.
func writeValue(buf *bytes.Buffer, ctl EncodeControl, v interface{}) bool {
	switch v := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		writeString(buf, v, ctl.Strict())
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case int:
		buf.WriteString(strconv.Itoa(v))
	case int8:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case int16:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case uint:
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint8:
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint16:
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(v, 10))
	case float32:
		writeFloat(buf, float64(v), 32)
	case float64:
		writeFloat(buf, v, 64)
	case *Literal:
		if v == nil {
			buf.WriteString("null")
		} else {
			buf.WriteString(v.SendableString())
		}
	case *LiteralArray:
		if v == nil {
			buf.WriteString("null")
		} else {
			buf.WriteString(v.SendableString())
		}
	case *Object:
		if v == nil {
			buf.WriteString("null")
		} else {
			writeObject(buf, ctl, v)
		}
	case Array:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i] })
	case []interface{}:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i] })
	case []string:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i] })
	case []int:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i] })
	case []int64:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i] })
	case []float64:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i] })
	case []bool:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i] })
	case []Encodable:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i] })
	case []Referenceable:
		writeArray(buf, ctl, len(v), func(i int) interface{} { return v[i].Ref() })
	case Optional:
		if !v.Present() {
			return false
		}
		return writeValue(buf, ctl, v.Interface())
	case Encodable:
		lit := v.Encode(ctl)
		if lit == nil {
			return false
		}
		buf.WriteString(lit.SendableString())
	case Referenceable:
		writeString(buf, v.Ref(), ctl.Strict())
	default:
		writeString(buf, fmt.Sprint(v), ctl.Strict())
	}
	return true
}

// writeFloat keeps a decimal point or exponent in the text so that the value
// parses back as a float
func writeFloat(buf *bytes.Buffer, f float64, bitSize int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteString("null")
		return
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	buf.WriteString(s)
	if !strings.ContainsAny(s, ".e") {
		buf.WriteString(".0")
	}
}

func writeObject(buf *bytes.Buffer, ctl EncodeControl, obj *Object) {
	buf.WriteByte('{')
	started := false
	writeField := func(name string, value interface{}) {
		mark := buf.Len()
		if started {
			buf.WriteString(", ")
		}
		writeKey(buf, name, ctl)
		if writeValue(buf, ctl, value) {
			started = true
		} else {
			buf.Truncate(mark)
		}
	}
	for _, key := range reservedKeyOrder {
		if v, ok := obj.props[key]; ok {
			writeField(key, v)
		}
	}
	for _, key := range obj.keys {
		if key == consts.KEY_TO || key == consts.KEY_OP || key == consts.KEY_TYPE {
			continue
		}
		writeField(key, obj.props[key])
	}
	buf.WriteByte('}')
}

func writeArray(buf *bytes.Buffer, ctl EncodeControl, n int, elem func(i int) interface{}) {
	buf.WriteByte('[')
	started := false
	for i := 0; i < n; i++ {
		mark := buf.Len()
		if started {
			buf.WriteString(", ")
		}
		if writeValue(buf, ctl, elem(i)) {
			started = true
		} else {
			buf.Truncate(mark)
		}
	}
	buf.WriteByte(']')
}

func writeKey(buf *bytes.Buffer, name string, ctl EncodeControl) {
	if ctl.Strict() || !IsSymbol(name) {
		writeString(buf, name, ctl.Strict())
	} else {
		buf.WriteString(name)
	}
	buf.WriteByte(':')
}

func writeString(buf *bytes.Buffer, s string, strict bool) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '/':
			if strict {
				buf.WriteString(`\/`)
			} else {
				buf.WriteByte(c)
			}
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}

// IsSymbol reports whether s can be written as a bare object key
func IsSymbol(s string) bool {
	if s == "" || s == "true" || s == "false" || s == "null" {
		return false
	}
	for i, r := range s {
		if r == utf8.RuneError {
			return false
		}
		if !IsSymbolRune(r, i == 0) {
			return false
		}
	}
	return true
}

// IsSymbolRune reports whether r may appear in a bare symbol
func IsSymbolRune(r rune, first bool) bool {
	if r == '_' || r == '$' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}
