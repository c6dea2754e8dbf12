package dispatch

import (
	"reflect"

	"github.com/xiaonanln/goelko/engine/binding"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

// Deliverer accepts finished literals for transmission. Message senders are Deliverers.
type Deliverer interface {
	Send(msg *jsonval.Literal)
}

// DelivererFunc adapts a function to Deliverer
type DelivererFunc func(msg *jsonval.Literal)

// Send calls f
func (f DelivererFunc) Send(msg *jsonval.Literal) {
	f(msg)
}

// Retargetable is implemented by targets that hand messages meant for a capability
// to another object. FindActualTarget returns nil if no object fields the capability.
type Retargetable interface {
	FindActualTarget(c *binding.Capability) interface{}
}

// SourceSubstitute is implemented by senders that stand in for another sender.
// FindEffectiveSource returns the sender handlers should see for messages to target,
// or nil if the message must not be delivered.
type SourceSubstitute interface {
	FindEffectiveSource(target interface{}) Deliverer
}

// DefaultHandler is implemented by targets that handle messages no registered
// method accepts
type DefaultHandler interface {
	HandleMessage(from Deliverer, msg *jsonval.Object) error
}

func isNil(obj interface{}) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func sameObject(a, b interface{}) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// findActualTarget follows the retargeting chain from target for c. It returns nil
// when the chain ends in an object not satisfying c, and an error when the chain
// loops or is longer than maxHops.
func findActualTarget(target interface{}, c *binding.Capability, maxHops int) (interface{}, error) {
	cur := target
	visited := []interface{}{cur}
	for hops := 0; ; hops++ {
		rt, ok := cur.(Retargetable)
		if !ok {
			if c.Accepts(cur) {
				return cur, nil
			}
			return nil, nil
		}

		next := rt.FindActualTarget(c)
		if isNil(next) {
			return nil, nil
		}
		if sameObject(next, cur) {
			if c.Accepts(cur) {
				return cur, nil
			}
			return nil, nil
		}
		for _, v := range visited {
			if sameObject(v, next) {
				return nil, &TargetError{Target: target, Capability: c, Reason: "retargeting cycle"}
			}
		}
		if hops+1 > maxHops {
			return nil, &TargetError{Target: target, Capability: c, Reason: "too many retargeting hops"}
		}
		visited = append(visited, next)
		cur = next
	}
}

// effectiveSource applies source substitution of from for messages to target
func effectiveSource(from Deliverer, target interface{}) (Deliverer, error) {
	if ss, ok := from.(SourceSubstitute); ok {
		from = ss.FindEffectiveSource(target)
	}
	if isNil(from) {
		return nil, &TargetError{Target: target, Reason: "no effective message source"}
	}
	return from, nil
}
