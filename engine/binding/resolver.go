package binding

import "sync"

// TypeResolver maps a type tag to the concrete capability decoding it, given the base
// capability a descriptor is decoded against. It returns nil for unknown tags.
type TypeResolver interface {
	ResolveType(base *Capability, tag string) *Capability
}

// TypeResolverFunc adapts a function to TypeResolver
type TypeResolverFunc func(base *Capability, tag string) *Capability

// ResolveType calls f
func (f TypeResolverFunc) ResolveType(base *Capability, tag string) *Capability {
	return f(base, tag)
}

// StaticResolver resolves tags with the tag lookups declared on capabilities. The
// lookup of a base is the first one found walking up from the base through its
// supertypes; when there is none the base itself is the answer.
type StaticResolver struct {
	lookups sync.Map // *Capability -> TagLookup (nil TagLookup when the chain has none)
}

// DefaultResolver is the process wide StaticResolver
var DefaultResolver = &StaticResolver{}

// ResolveType implements TypeResolver
func (r *StaticResolver) ResolveType(base *Capability, tag string) *Capability {
	lookup := r.lookupFor(base)
	if lookup == nil {
		return base
	}
	return lookup(tag)
}

func (r *StaticResolver) lookupFor(base *Capability) TagLookup {
	if cached, ok := r.lookups.Load(base); ok {
		return cached.(TagLookup)
	}
	lookup := findTagLookup(base, map[*Capability]bool{})
	actual, _ := r.lookups.LoadOrStore(base, lookup)
	return actual.(TagLookup)
}

// findTagLookup searches c and its supertypes, depth first in declaration order
func findTagLookup(c *Capability, visited map[*Capability]bool) TagLookup {
	if visited[c] {
		return nil
	}
	visited[c] = true
	if c.tagLookup != nil {
		return c.tagLookup
	}
	for _, s := range c.supers {
		if lookup := findTagLookup(s, visited); lookup != nil {
			return lookup
		}
	}
	return nil
}
