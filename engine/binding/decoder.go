package binding

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/consts"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/gwutils"
	"github.com/xiaonanln/goelko/engine/jsonparse"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

type decoderEntry struct {
	ctor *Constructor
	inv  *Invoker
}

// DecoderTable caches the compiled constructors of concrete capabilities. A capability
// without a usable constructor is cached as a negative entry.
type DecoderTable struct {
	entries sync.Map // *Capability -> *decoderEntry
}

// DefaultDecoders is the process wide DecoderTable
var DefaultDecoders = NewDecoderTable()

// NewDecoderTable creates an empty DecoderTable
func NewDecoderTable() *DecoderTable {
	return &DecoderTable{}
}

// Len returns the number of cached entries, negative ones included
func (dt *DecoderTable) Len() int {
	n := 0
	dt.entries.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (dt *DecoderTable) entryFor(target *Capability) *decoderEntry {
	if cached, ok := dt.entries.Load(target); ok {
		return cached.(*decoderEntry)
	}

	var entry *decoderEntry
	if ctor := target.Constructor(); ctor == nil {
		gwlog.Errorf("no constructor for %s", target)
	} else if inv, err := NewInvoker(target.Name(), ctor.Spec); err != nil {
		gwlog.Errorf("bad constructor for %s: %s", target, err)
	} else {
		entry = &decoderEntry{ctor: ctor, inv: inv}
	}

	actual, _ := dt.entries.LoadOrStore(target, entry)
	return actual.(*decoderEntry)
}

func (dt *DecoderTable) decode(base *Capability, obj *jsonval.Object, resolver TypeResolver) (interface{}, error) {
	if resolver == nil {
		resolver = DefaultResolver
	}
	target := base
	if tag := obj.TypeTag(); tag != "" {
		target = resolver.ResolveType(base, tag)
		if target == nil {
			return nil, &TypeTagError{Base: base, Tag: tag}
		}
	}
	if consts.DEBUG_DECODE {
		gwlog.Debugf("decode %s as %s: %s", base.Name(), target.Name(), obj)
	}

	entry := dt.entryFor(target)
	if entry == nil {
		return nil, errors.Wrapf(ErrNoDecoder, "decode %s", target.Name())
	}
	var fixed []interface{}
	if entry.inv.spec.Leading == 1 {
		fixed = []interface{}{obj}
	}
	args, err := entry.inv.bind(fixed, obj, resolver, dt)
	if err != nil {
		return nil, err
	}

	var result interface{}
	if perr := gwutils.CatchPanic(func() {
		result, err = entry.ctor.Construct(args)
	}); perr != nil {
		return nil, errors.Errorf("construct %s: panic: %v", target.Name(), perr)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "construct %s", target.Name())
	}
	if result == nil {
		return nil, errors.Errorf("construct %s: constructor returned nil", target.Name())
	}
	return result, nil
}

// DecodeErr decodes obj against base. The type tag of obj, if any, is resolved with
// resolver (DefaultResolver when nil); without a tag base itself is decoded.
func (dt *DecoderTable) DecodeErr(base *Capability, obj *jsonval.Object, resolver TypeResolver) (interface{}, error) {
	if obj == nil {
		return nil, errors.Errorf("decode %s: nil descriptor", base.Name())
	}
	return dt.decode(base, obj, resolver)
}

// Decode is DecodeErr that logs failures and returns nil for them
func (dt *DecoderTable) Decode(base *Capability, obj *jsonval.Object, resolver TypeResolver) interface{} {
	result, err := dt.DecodeErr(base, obj, resolver)
	if err != nil {
		gwlog.Errorf("decode %s failed: %s", base.Name(), err)
		return nil
	}
	return result
}

// DecodeErr decodes with DefaultDecoders
func DecodeErr(base *Capability, obj *jsonval.Object, resolver TypeResolver) (interface{}, error) {
	return DefaultDecoders.DecodeErr(base, obj, resolver)
}

// Decode decodes with DefaultDecoders, logging failures and returning nil for them
func Decode(base *Capability, obj *jsonval.Object, resolver TypeResolver) interface{} {
	return DefaultDecoders.Decode(base, obj, resolver)
}

// DecodeText parses the first object of text and decodes it with DefaultDecoders
func DecodeText(base *Capability, text string, resolver TypeResolver) interface{} {
	obj, err := jsonparse.ParseObject(text)
	if err != nil {
		gwlog.Warnf("syntax error decoding %s: %s", base.Name(), err)
		return nil
	}
	return Decode(base, obj, resolver)
}
