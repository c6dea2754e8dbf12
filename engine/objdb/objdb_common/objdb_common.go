package objdbcommon

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
)

// ErrExists is returned by Put when requireNew is set and the ref is already stored
var ErrExists = errors.New("object already exists")

// ErrInvalidRef is returned for refs that can not name a stored object
var ErrInvalidRef = errors.New("invalid object ref")

// ObjectStore defines the interface of object store backends.
// Objects are stored as descriptor text keyed by ref.
type ObjectStore interface {
	// Get returns the descriptor text of ref, or "" if nothing is stored
	Get(ref string) (string, error)
	Put(ref string, text string, requireNew bool) error
	Remove(ref string) error
	List() ([]string, error)
	Close()
	IsEOF(err error) bool
}

// CheckRef validates a ref before it is used as a key or file name
func CheckRef(ref string) error {
	if ref == "" || ref == "." || ref == ".." || strings.ContainsAny(ref, "/\\\x00") {
		return errors.Wrapf(ErrInvalidRef, "%q", ref)
	}
	return nil
}

// RecordVersion is the current layout of a packed Record
const RecordVersion = 1

// Record is the value stored by key-value backends
type Record struct {
	Obj string `msgpack:"obj"`
	Ver int    `msgpack:"ver"`
}

// PackRecord packs descriptor text to bytes in MessagePack format
func PackRecord(text string) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := msgpack.NewEncoder(&buffer)
	if err := encoder.Encode(&Record{Obj: text, Ver: RecordVersion}); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// UnpackRecord unpacks bytes in MessagePack format to descriptor text
func UnpackRecord(data []byte) (string, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return "", errors.Wrap(err, "unpack object record")
	}
	if rec.Ver > RecordVersion {
		return "", errors.Errorf("object record version %d is newer than %d", rec.Ver, RecordVersion)
	}
	return rec.Obj, nil
}
