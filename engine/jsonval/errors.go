package jsonval

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDecoding is the cause of all DecodingErrors
var ErrDecoding = errors.New("json decoding error")

// DecodingError reports a stored value whose shape disagrees with the requested type
type DecodingError struct {
	Where    string // property name or element position
	Expected Kind
	Got      Kind
	Missing  bool
}

func (e *DecodingError) Error() string {
	if e.Missing {
		return fmt.Sprintf("property '%s' not found", e.Where)
	}
	return fmt.Sprintf("%s is not %s but %s", e.Where, articled(e.Expected), articled(e.Got))
}

// Unwrap returns ErrDecoding
func (e *DecodingError) Unwrap() error {
	return ErrDecoding
}

func articled(k Kind) string {
	switch k {
	case KindNull:
		return "null"
	case KindArray, KindObject, KindInt, KindInvalid:
		return "an " + k.String()
	}
	return "a " + k.String()
}

func mismatch(where string, expected Kind, got interface{}) error {
	return &DecodingError{Where: where, Expected: expected, Got: KindOf(got)}
}
