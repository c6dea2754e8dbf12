package dispatch

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/binding"
)

var (
	// ErrMalformedMessage means the message has no verb
	ErrMalformedMessage = errors.New("malformed message")
	// ErrUnknownVerb means no handler accepts the verb and the target has no default handler
	ErrUnknownVerb = errors.New("unknown verb")
	// ErrInvalidTarget means retargeting or source substitution produced no usable object
	ErrInvalidTarget = errors.New("invalid message target")
	// ErrHandlerExecution is matched by every HandlerError
	ErrHandlerExecution = errors.New("handler execution error")
)

// TargetError reports a failed retargeting or source substitution
type TargetError struct {
	Target     interface{}
	Capability *binding.Capability // nil for source substitution failures
	Reason     string
}

func (e *TargetError) Error() string {
	if e.Capability != nil {
		return fmt.Sprintf("invalid message target %v for %s: %s", e.Target, e.Capability.Name(), e.Reason)
	}
	return fmt.Sprintf("invalid message target %v: %s", e.Target, e.Reason)
}

// Unwrap returns ErrInvalidTarget
func (e *TargetError) Unwrap() error {
	return ErrInvalidTarget
}

// HandlerError wraps a failure raised inside a handler, or the value it panicked with
type HandlerError struct {
	Verb     string
	Cause    error
	Panicked bool
}

func (e *HandlerError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("handler of '%s' panicked: %s", e.Verb, e.Cause)
	}
	return fmt.Sprintf("handler of '%s' failed: %s", e.Verb, e.Cause)
}

// Unwrap returns the original cause
func (e *HandlerError) Unwrap() error {
	return e.Cause
}

// Is matches ErrHandlerExecution
func (e *HandlerError) Is(target error) bool {
	return target == ErrHandlerExecution
}

func panicCause(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.Errorf("%v", r)
}
