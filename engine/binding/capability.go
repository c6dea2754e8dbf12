// Package binding binds named JSON values to the positional parameters of handlers
// and constructors.
//
// Application code describes, at startup, which roles (Capabilities) its objects play,
// which parameters each handler or constructor takes (ParamSpec) and how to call it.
// The Invoker coerces the fields of a message or object descriptor into an argument
// vector for such a description, and the decoder turns tagged object descriptors into
// instances by resolving the tag to a Capability that carries a constructor.
package binding

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/xiaonanln/goelko/engine/gwlog"
)

// TagLookup maps a type tag to the capability that decodes it, or nil if the tag is unknown
type TagLookup func(tag string) *Capability

// Constructor describes how descriptors of one concrete capability are decoded.
// When Spec.Leading is 1 the raw descriptor object is passed as the first argument.
type Constructor struct {
	Spec      ParamSpec
	Construct Thunk
}

// Capability is a role an object can satisfy
type Capability struct {
	name      string
	accepts   func(obj interface{}) bool
	supers    []*Capability
	tagLookup TagLookup
	ctor      *Constructor
}

// NewCapability creates a capability whose membership is decided by accepts
func NewCapability(name string, accepts func(obj interface{}) bool, supers ...*Capability) *Capability {
	if accepts == nil {
		gwlog.Panicf("capability %s: nil membership test", name)
	}
	return &Capability{
		name:    name,
		accepts: accepts,
		supers:  supers,
	}
}

// InterfaceCapability creates a capability satisfied by objects implementing an interface.
// iface must be a nil pointer to the interface, e.g. (*Geometry)(nil).
func InterfaceCapability(name string, iface interface{}, supers ...*Capability) *Capability {
	t := reflect.TypeOf(iface)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		gwlog.Panicf("capability %s: %T is not a pointer to an interface", name, iface)
	}
	ifaceType := t.Elem()
	return NewCapability(name, func(obj interface{}) bool {
		return obj != nil && reflect.TypeOf(obj).Implements(ifaceType)
	}, supers...)
}

// TypeCapability creates a capability satisfied by objects of the same dynamic type as sample
func TypeCapability(name string, sample interface{}, supers ...*Capability) *Capability {
	sampleType := reflect.TypeOf(sample)
	if sampleType == nil {
		gwlog.Panicf("capability %s: nil sample", name)
	}
	return NewCapability(name, func(obj interface{}) bool {
		return reflect.TypeOf(obj) == sampleType
	}, supers...)
}

// Name returns the capability name
func (c *Capability) Name() string {
	return c.name
}

func (c *Capability) String() string {
	return fmt.Sprintf("Capability<%s>", c.name)
}

// Accepts reports whether obj satisfies the capability
func (c *Capability) Accepts(obj interface{}) bool {
	return obj != nil && c.accepts(obj)
}

// Supers returns the declared supertypes
func (c *Capability) Supers() []*Capability {
	return c.supers
}

// IsA reports whether c is other or inherits from it
func (c *Capability) IsA(other *Capability) bool {
	if c == other {
		return true
	}
	for _, s := range c.supers {
		if s.IsA(other) {
			return true
		}
	}
	return false
}

// SetTagLookup installs the tag lookup used to resolve descriptors decoded against c
// or against capabilities inheriting from c. Must be called at startup.
func (c *Capability) SetTagLookup(lookup TagLookup) *Capability {
	c.tagLookup = lookup
	return c
}

// SetTagTable installs a tag lookup backed by a fixed table
func (c *Capability) SetTagTable(table map[string]*Capability) *Capability {
	tags := make(map[string]*Capability, len(table))
	for tag, target := range table {
		tags[tag] = target
	}
	return c.SetTagLookup(func(tag string) *Capability {
		return tags[tag]
	})
}

// TagLookup returns the tag lookup declared on c itself
func (c *Capability) TagLookup() TagLookup {
	return c.tagLookup
}

// SetConstructor declares how descriptors of c are decoded. Must be called at startup.
func (c *Capability) SetConstructor(spec ParamSpec, construct Thunk) *Capability {
	if construct == nil {
		gwlog.Panicf("%s: nil constructor", c)
	}
	if spec.Leading > 1 {
		gwlog.Panicf("%s: constructor takes at most the raw descriptor as leading parameter", c)
	}
	c.ctor = &Constructor{Spec: spec, Construct: construct}
	return c
}

// Constructor returns the constructor of c, or nil
func (c *Capability) Constructor() *Constructor {
	return c.ctor
}

var (
	registeredCapabilities     = map[string]*Capability{}
	registeredCapabilitiesLock sync.RWMutex
)

// RegisterCapability makes the capability findable by name, e.g. from class descriptors
func RegisterCapability(c *Capability) *Capability {
	registeredCapabilitiesLock.Lock()
	defer registeredCapabilitiesLock.Unlock()

	if _, ok := registeredCapabilities[c.name]; ok {
		gwlog.Panicf("RegisterCapability: capability %s already registered", c.name)
	}
	registeredCapabilities[c.name] = c
	return c
}

// LookupCapability returns the registered capability of the name, or nil
func LookupCapability(name string) *Capability {
	registeredCapabilitiesLock.RLock()
	c := registeredCapabilities[name]
	registeredCapabilitiesLock.RUnlock()
	return c
}
