package jsonval

import (
	"bytes"

	"github.com/xiaonanln/goelko/engine/consts"
	"github.com/xiaonanln/goelko/engine/gwlog"
)

type literalState uint8

const (
	stateInitial literalState = iota
	stateStarted
	stateComplete
)

// Literal builds the wire text of one JSON object incrementally.
//
// Nested literals created by BeginObject and BeginArray write into the buffer of
// their parent, so the parent must not be touched until the child is finished.
// A Literal is owned by a single goroutine.
type Literal struct {
	buf   *bytes.Buffer
	ctl   EncodeControl
	start int
	end   int
	state literalState
	child nestedBuilder
}

type nestedBuilder interface {
	complete() bool
}

// NewLiteral begins an empty object literal
func NewLiteral(ctl EncodeControl) *Literal {
	buf := &bytes.Buffer{}
	buf.Grow(consts.LITERAL_INITIAL_BUFFER_SIZE)
	return newLiteralIn(buf, ctl)
}

// NewMessageLiteral begins a message literal addressed to target with the given verb
func NewMessageLiteral(ctl EncodeControl, to, op string) *Literal {
	lit := NewLiteral(ctl)
	lit.AddField(consts.KEY_TO, to)
	lit.AddField(consts.KEY_OP, op)
	return lit
}

// NewTypedLiteral begins an object descriptor literal with a type tag
func NewTypedLiteral(ctl EncodeControl, tag string) *Literal {
	lit := NewLiteral(ctl)
	lit.AddField(consts.KEY_TYPE, tag)
	return lit
}

func newLiteralIn(buf *bytes.Buffer, ctl EncodeControl) *Literal {
	lit := &Literal{buf: buf, ctl: ctl, start: buf.Len()}
	buf.WriteByte('{')
	return lit
}

// Control returns the encode control of the literal
func (l *Literal) Control() EncodeControl {
	return l.ctl
}

func (l *Literal) complete() bool {
	return l.state == stateComplete
}

func (l *Literal) checkWritable(op string) {
	if l.state == stateComplete {
		gwlog.Panicf("Literal.%s: literal is already complete: %s", op, l.String())
	}
	if l.child != nil && !l.child.complete() {
		gwlog.Panicf("Literal.%s: nested literal is still open", op)
	}
	l.child = nil
}

func (l *Literal) beginField(name string) {
	if l.state == stateStarted {
		l.buf.WriteString(", ")
	} else {
		l.state = stateStarted
	}
	writeKey(l.buf, name, l.ctl)
}

// AddField adds a field. If value is an Encodable that encodes to nil, or an absent
// optional, the field is left out entirely.
func (l *Literal) AddField(name string, value interface{}) {
	l.checkWritable("AddField")
	mark, state := l.buf.Len(), l.state
	l.beginField(name)
	if !writeValue(l.buf, l.ctl, value) {
		l.buf.Truncate(mark)
		l.state = state
	}
}

// AddFieldIfPresent adds a field unless value is nil or absent
func (l *Literal) AddFieldIfPresent(name string, value interface{}) {
	if !isAbsent(value) {
		l.AddField(name, value)
	}
}

// AddFieldRef adds a "ref$name" field holding the reference of value, or the
// references of a slice of Referenceables
func (l *Literal) AddFieldRef(name string, value interface{}) {
	switch v := value.(type) {
	case Referenceable:
		l.AddField(consts.REF_PREFIX+name, v.Ref())
	case []Referenceable:
		refs := make([]string, len(v))
		for i, r := range v {
			refs[i] = r.Ref()
		}
		l.AddField(consts.REF_PREFIX+name, refs)
	default:
		l.AddField(consts.REF_PREFIX+name, value)
	}
}

// BeginObject adds a field whose value is a nested object literal written in place
func (l *Literal) BeginObject(name string) *Literal {
	l.checkWritable("BeginObject")
	l.beginField(name)
	child := newLiteralIn(l.buf, l.ctl)
	l.child = child
	return child
}

// BeginArray adds a field whose value is a nested array literal written in place
func (l *Literal) BeginArray(name string) *LiteralArray {
	l.checkWritable("BeginArray")
	l.beginField(name)
	child := newLiteralArrayIn(l.buf, l.ctl)
	l.child = child
	return child
}

// Finish completes the literal. Finishing twice panics.
func (l *Literal) Finish() {
	if l.state == stateComplete {
		gwlog.Panicf("Literal.Finish: literal is already complete: %s", l.String())
	}
	l.checkWritable("Finish")
	l.buf.WriteByte('}')
	l.end = l.buf.Len()
	l.state = stateComplete
}

// Len returns the length of the finished text
func (l *Literal) Len() int {
	return l.end - l.start
}

// String returns the text of the literal, which is partial if it is not finished yet
func (l *Literal) String() string {
	if l.state == stateComplete {
		return string(l.buf.Bytes()[l.start:l.end])
	}
	return string(l.buf.Bytes()[l.start:])
}

// SendableString finishes the literal if needed and returns its text
func (l *Literal) SendableString() string {
	if l.state != stateComplete {
		l.Finish()
	}
	return l.String()
}

// LiteralArray builds the wire text of one JSON array incrementally
type LiteralArray struct {
	buf   *bytes.Buffer
	ctl   EncodeControl
	start int
	end   int
	state literalState
	size  int
	child nestedBuilder
}

// NewLiteralArray begins an empty array literal
func NewLiteralArray(ctl EncodeControl) *LiteralArray {
	buf := &bytes.Buffer{}
	buf.Grow(consts.LITERAL_INITIAL_BUFFER_SIZE)
	return newLiteralArrayIn(buf, ctl)
}

func newLiteralArrayIn(buf *bytes.Buffer, ctl EncodeControl) *LiteralArray {
	arr := &LiteralArray{buf: buf, ctl: ctl, start: buf.Len()}
	buf.WriteByte('[')
	return arr
}

func (a *LiteralArray) complete() bool {
	return a.state == stateComplete
}

func (a *LiteralArray) checkWritable(op string) {
	if a.state == stateComplete {
		gwlog.Panicf("LiteralArray.%s: literal array is already complete: %s", op, a.String())
	}
	if a.child != nil && !a.child.complete() {
		gwlog.Panicf("LiteralArray.%s: nested literal is still open", op)
	}
	a.child = nil
}

func (a *LiteralArray) beginElement() {
	if a.state == stateStarted {
		a.buf.WriteString(", ")
	} else {
		a.state = stateStarted
	}
}

// AddElement appends an element. Encodables that encode to nil and absent
// optionals are left out.
func (a *LiteralArray) AddElement(value interface{}) {
	a.checkWritable("AddElement")
	mark, state := a.buf.Len(), a.state
	a.beginElement()
	if writeValue(a.buf, a.ctl, value) {
		a.size++
	} else {
		a.buf.Truncate(mark)
		a.state = state
	}
}

// AddElementIfPresent appends an element unless it is nil or absent
func (a *LiteralArray) AddElementIfPresent(value interface{}) {
	if !isAbsent(value) {
		a.AddElement(value)
	}
}

// BeginObject appends an element that is a nested object literal written in place
func (a *LiteralArray) BeginObject() *Literal {
	a.checkWritable("BeginObject")
	a.beginElement()
	a.size++
	child := newLiteralIn(a.buf, a.ctl)
	a.child = child
	return child
}

// BeginArray appends an element that is a nested array literal written in place
func (a *LiteralArray) BeginArray() *LiteralArray {
	a.checkWritable("BeginArray")
	a.beginElement()
	a.size++
	child := newLiteralArrayIn(a.buf, a.ctl)
	a.child = child
	return child
}

// Finish completes the array literal. Finishing twice panics.
func (a *LiteralArray) Finish() {
	if a.state == stateComplete {
		gwlog.Panicf("LiteralArray.Finish: literal array is already complete: %s", a.String())
	}
	a.checkWritable("Finish")
	a.buf.WriteByte(']')
	a.end = a.buf.Len()
	a.state = stateComplete
}

// Size returns the number of elements added so far
func (a *LiteralArray) Size() int {
	return a.size
}

// String returns the text of the array, which is partial if it is not finished yet
func (a *LiteralArray) String() string {
	if a.state == stateComplete {
		return string(a.buf.Bytes()[a.start:a.end])
	}
	return string(a.buf.Bytes()[a.start:])
}

// SendableString finishes the array if needed and returns its text
func (a *LiteralArray) SendableString() string {
	if a.state != stateComplete {
		a.Finish()
	}
	return a.String()
}

func isAbsent(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *Object:
		return v == nil
	case *Literal:
		return v == nil
	case *LiteralArray:
		return v == nil
	case Array:
		return v == nil
	case Optional:
		return !v.Present()
	}
	return false
}
