// Package dispatch delivers JSON messages to the handler registered for their verb.
//
// Handlers are registered per Capability. To dispatch a message the handlers of its
// verb are scanned, most recently registered first, for one whose capability the
// target satisfies, directly or through retargeting. The fields of the message are
// bound to the handler's parameters, with the effective sender as first argument.
package dispatch

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/binding"
	"github.com/xiaonanln/goelko/engine/consts"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/gwutils"
	"github.com/xiaonanln/goelko/engine/jsonparse"
	"github.com/xiaonanln/goelko/engine/jsonval"
	"github.com/xiaonanln/goelko/engine/opmon"
	"go.uber.org/multierr"
)

// Method is a message handler of one verb
type Method struct {
	Verb   string
	Params []binding.Param
	// Call receives the actual target, the effective sender and the bound parameters
	Call binding.Thunk
}

// NewMethod describes a handler implemented by fn, a function taking the target, the
// sender and the parameters in order, e.g.
//
//	func(r *Room, from dispatch.Deliverer, text string) error
func NewMethod(verb string, fn interface{}, params ...binding.Param) Method {
	return Method{Verb: verb, Params: params, Call: binding.Func(fn)}
}

type handlerBinding struct {
	verb       string
	capability *binding.Capability
	inv        *binding.Invoker
	call       binding.Thunk
}

// Options tunes a Dispatcher
type Options struct {
	MaxRetargetHops int
	WarnThreshold   time.Duration
}

// DefaultOptions are used for a nil *Options
var DefaultOptions = Options{
	MaxRetargetHops: consts.DEFAULT_MAX_RETARGET_HOPS,
	WarnThreshold:   consts.DEFAULT_DISPATCH_WARN_THRESHOLD,
}

// Dispatcher routes messages to registered handlers
type Dispatcher struct {
	resolver binding.TypeResolver
	opts     Options

	lock         sync.RWMutex
	chains       map[string][]*handlerBinding // most recently registered first
	capabilities map[*binding.Capability]bool
}

// NewDispatcher creates a Dispatcher. resolver resolves the type tags of descriptors
// passed as handler parameters; nil means binding.DefaultResolver.
func NewDispatcher(resolver binding.TypeResolver, opts *Options) *Dispatcher {
	if resolver == nil {
		resolver = binding.DefaultResolver
	}
	o := DefaultOptions
	if opts != nil {
		o = *opts
	}
	if o.MaxRetargetHops <= 0 {
		o.MaxRetargetHops = consts.DEFAULT_MAX_RETARGET_HOPS
	}
	return &Dispatcher{
		resolver:     resolver,
		opts:         o,
		chains:       map[string][]*handlerBinding{},
		capabilities: map[*binding.Capability]bool{},
	}
}

// Register adds the handlers of a capability. Registering a capability again is a
// no-op; two handlers of the same verb for one capability is a programming error.
func (d *Dispatcher) Register(c *binding.Capability, methods ...Method) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.capabilities[c] {
		return
	}

	bindings := make([]*handlerBinding, 0, len(methods))
	seen := map[string]bool{}
	for _, m := range methods {
		if m.Verb == "" {
			gwlog.Panicf("Register %s: handler without verb", c.Name())
		}
		if seen[m.Verb] {
			gwlog.Panicf("Register %s: verb %s registered twice", c.Name(), m.Verb)
		}
		if m.Call == nil {
			gwlog.Panicf("Register %s: verb %s has no handler", c.Name(), m.Verb)
		}
		seen[m.Verb] = true

		inv := binding.MustInvoker(c.Name()+"."+m.Verb, binding.NewParamSpec(1, m.Params...))
		bindings = append(bindings, &handlerBinding{verb: m.Verb, capability: c, inv: inv, call: m.Call})
	}

	for _, hb := range bindings {
		chain := d.chains[hb.verb]
		d.chains[hb.verb] = append([]*handlerBinding{hb}, chain...)
	}
	d.capabilities[c] = true
}

// Verbs returns the number of verbs with registered handlers
func (d *Dispatcher) Verbs() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.chains)
}

// Dispatch delivers msg from a sender to a target
func (d *Dispatcher) Dispatch(from Deliverer, target interface{}, msg *jsonval.Object) error {
	if msg == nil {
		return errors.Wrap(ErrMalformedMessage, "nil message")
	}
	verb := msg.Verb()
	if verb == "" {
		return errors.Wrapf(ErrMalformedMessage, "message has no verb: %s", msg)
	}
	if consts.DEBUG_DISPATCH {
		gwlog.Debugf("dispatch %s to %v: %s", verb, target, msg)
	}

	d.lock.RLock()
	chain := d.chains[verb]
	d.lock.RUnlock()

	for _, hb := range chain {
		actual, err := findActualTarget(target, hb.capability, d.opts.MaxRetargetHops)
		if err != nil {
			return err
		}
		if actual == nil {
			continue
		}
		source, err := effectiveSource(from, target)
		if err != nil {
			return err
		}
		return d.invoke(hb, actual, source, msg)
	}

	if dh, ok := target.(DefaultHandler); ok {
		source, err := effectiveSource(from, target)
		if err != nil {
			return err
		}
		return d.invokeDefault(dh, verb, source, msg)
	}
	return errors.Wrapf(ErrUnknownVerb, "no message handler method for verb '%s'", verb)
}

func (d *Dispatcher) invoke(hb *handlerBinding, target interface{}, from Deliverer, msg *jsonval.Object) error {
	args, err := hb.inv.Bind([]interface{}{from}, msg, d.resolver)
	if err != nil {
		return err
	}

	callArgs := make([]interface{}, 0, len(args)+1)
	callArgs = append(callArgs, target)
	callArgs = append(callArgs, args...)

	op := opmon.StartOperation("dispatch." + hb.verb)
	defer op.Finish(d.opts.WarnThreshold)
	if r := gwutils.CatchPanic(func() {
		_, err = hb.call(callArgs)
	}); r != nil {
		return &HandlerError{Verb: hb.verb, Cause: panicCause(r), Panicked: true}
	}
	if err != nil {
		return &HandlerError{Verb: hb.verb, Cause: err}
	}
	return nil
}

func (d *Dispatcher) invokeDefault(dh DefaultHandler, verb string, from Deliverer, msg *jsonval.Object) (err error) {
	op := opmon.StartOperation("dispatch.<default>")
	defer op.Finish(d.opts.WarnThreshold)
	if r := gwutils.CatchPanic(func() {
		err = dh.HandleMessage(from, msg)
	}); r != nil {
		return &HandlerError{Verb: verb, Cause: panicCause(r), Panicked: true}
	}
	if err != nil {
		return &HandlerError{Verb: verb, Cause: err}
	}
	return nil
}

// Deliver dispatches msg and logs a failure instead of returning it
func (d *Dispatcher) Deliver(from Deliverer, target interface{}, msg *jsonval.Object) bool {
	err := d.Dispatch(from, target, msg)
	if err == nil {
		return true
	}
	verb := ""
	if msg != nil {
		verb = msg.Verb()
	}
	if he, ok := err.(*HandlerError); ok && he.Panicked {
		gwlog.TraceError("message %s to %v could not be handled: %s", verb, target, err)
	} else {
		gwlog.Errorf("message %s to %v could not be handled: %s", verb, target, err)
	}
	return false
}

// DispatchText parses every message in text and dispatches them in order. Dispatch
// failures do not stop later messages and are returned together; a syntax error stops
// the parse.
func (d *Dispatcher) DispatchText(from Deliverer, target interface{}, text string) error {
	var errs error
	p := jsonparse.NewParser(text)
	for {
		v, err := p.Next()
		if err == io.EOF {
			return errs
		} else if err != nil {
			return multierr.Append(errs, err)
		}
		msg, ok := v.(*jsonval.Object)
		if !ok {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformedMessage, "message is %s, not an object", jsonval.KindOf(v)))
			continue
		}
		errs = multierr.Append(errs, d.Dispatch(from, target, msg))
	}
}
