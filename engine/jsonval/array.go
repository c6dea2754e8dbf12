package jsonval

import "strconv"

// Array is a JSON array
type Array []interface{}

// NewArray creates an Array from the given values, normalizing each
func NewArray(values ...interface{}) Array {
	arr := make(Array, 0, len(values))
	for _, v := range values {
		arr = append(arr, Normalize(v))
	}
	return arr
}

// Append adds a normalized value to the end of the array
func (a *Array) Append(v interface{}) {
	*a = append(*a, Normalize(v))
}

func (a Array) String() string {
	return EncodeValue(ForClient, a)
}

// Equal compares two arrays element by element
func (a Array) Equal(other Array) bool {
	if len(a) != len(other) {
		return false
	}
	for i := range a {
		if !Equal(a[i], other[i]) {
			return false
		}
	}
	return true
}

func elemName(i int) string {
	return "element #" + strconv.Itoa(i)
}

func (a Array) elem(i int) (interface{}, error) {
	if i < 0 || i >= len(a) {
		return nil, &DecodingError{Where: elemName(i), Missing: true}
	}
	return a[i], nil
}

// GetString returns a string element
func (a Array) GetString(i int) (string, error) {
	v, err := a.elem(i)
	if err != nil {
		return "", err
	}
	return asString(elemName(i), v)
}

// GetInt returns an integer element as int
func (a Array) GetInt(i int) (int, error) {
	n, err := a.GetInt64(i)
	return int(n), err
}

// GetInt64 returns an integer element
func (a Array) GetInt64(i int) (int64, error) {
	v, err := a.elem(i)
	if err != nil {
		return 0, err
	}
	return asInt64(elemName(i), v)
}

// GetFloat returns a numeric element as float64
func (a Array) GetFloat(i int) (float64, error) {
	v, err := a.elem(i)
	if err != nil {
		return 0, err
	}
	return asFloat(elemName(i), v)
}

// GetBool returns a boolean element
func (a Array) GetBool(i int) (bool, error) {
	v, err := a.elem(i)
	if err != nil {
		return false, err
	}
	return asBool(elemName(i), v)
}

// GetArray returns an array element
func (a Array) GetArray(i int) (Array, error) {
	v, err := a.elem(i)
	if err != nil {
		return nil, err
	}
	return asArray(elemName(i), v)
}

// GetObject returns an object element
func (a Array) GetObject(i int) (*Object, error) {
	v, err := a.elem(i)
	if err != nil {
		return nil, err
	}
	return asObject(elemName(i), v)
}
