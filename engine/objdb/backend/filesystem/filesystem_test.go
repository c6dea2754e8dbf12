package objstorefilesystem

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	. "github.com/xiaonanln/goelko/engine/objdb/objdb_common"
)

func TestFileSystemObjectStore(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenDirectory(filepath.Join(dir, "objects"))
	assert.Equal(t, nil, err)
	defer store.Close()

	text, err := store.Get("room1")
	assert.Equal(t, nil, err)
	assert.Equal(t, "", text)

	assert.Equal(t, nil, store.Put("room1", `{"type":"room", "name":"lobby"}`, true))
	err = store.Put("room1", `{"type":"room"}`, true)
	assert.T(t, errors.Is(err, ErrExists))

	assert.Equal(t, nil, store.Put("room1", `{"type":"room", "name":"hall"}`, false))
	assert.Equal(t, nil, store.Put("user-1", `{"type":"user"}`, false))

	text, err = store.Get("room1")
	assert.Equal(t, nil, err)
	assert.Equal(t, `{"type":"room", "name":"hall"}`, text)

	refs, err := store.List()
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"room1", "user-1"}, refs)

	// no temp files are left behind
	files, _ := ioutil.ReadDir(filepath.Join(dir, "objects"))
	assert.Equal(t, 2, len(files))

	assert.Equal(t, nil, store.Remove("room1"))
	assert.Equal(t, nil, store.Remove("room1"))
	text, _ = store.Get("room1")
	assert.Equal(t, "", text)
	assert.Equal(t, false, store.IsEOF(errors.New("x")))
}

func TestFileSystemRejectsPathRefs(t *testing.T) {
	store, err := OpenDirectory(t.TempDir())
	assert.Equal(t, nil, err)
	for _, ref := range []string{"../escape", "a/b", ""} {
		_, err := store.Get(ref)
		assert.T(t, errors.Is(err, ErrInvalidRef), ref)
		err = store.Put(ref, "{}", false)
		assert.T(t, errors.Is(err, ErrInvalidRef), ref)
	}
}
