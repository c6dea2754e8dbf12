package objstorememory

import (
	"sync"

	"github.com/petar/GoLLRB/llrb"
	"github.com/pkg/errors"
	. "github.com/xiaonanln/goelko/engine/objdb/objdb_common"
)

type memoryItem struct {
	ref  string
	text string
}

func (it *memoryItem) Less(_other llrb.Item) bool {
	return it.ref < _other.(*memoryItem).ref
}

// MemoryObjectStore keeps objects in a tree ordered by ref. It is lost when the process exits.
type MemoryObjectStore struct {
	lock  sync.RWMutex
	btree *llrb.LLRB
}

// NewMemoryObjectStore creates an empty memory object store
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{
		btree: llrb.New(),
	}
}

// Get returns the text stored for ref
func (ms *MemoryObjectStore) Get(ref string) (string, error) {
	if err := CheckRef(ref); err != nil {
		return "", err
	}
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	item := ms.btree.Get(&memoryItem{ref: ref})
	if item == nil {
		return "", nil
	}
	return item.(*memoryItem).text, nil
}

// Put stores the text of ref
func (ms *MemoryObjectStore) Put(ref string, text string, requireNew bool) error {
	if err := CheckRef(ref); err != nil {
		return err
	}
	ms.lock.Lock()
	defer ms.lock.Unlock()
	if requireNew && ms.btree.Has(&memoryItem{ref: ref}) {
		return errors.Wrapf(ErrExists, "%s", ref)
	}
	ms.btree.ReplaceOrInsert(&memoryItem{ref: ref, text: text})
	return nil
}

// Remove deletes ref
func (ms *MemoryObjectStore) Remove(ref string) error {
	if err := CheckRef(ref); err != nil {
		return err
	}
	ms.lock.Lock()
	ms.btree.Delete(&memoryItem{ref: ref})
	ms.lock.Unlock()
	return nil
}

// List returns all refs in order
func (ms *MemoryObjectStore) List() ([]string, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	refs := make([]string, 0, ms.btree.Len())
	// refs are never empty, so "" is below all of them
	ms.btree.AscendGreaterOrEqual(&memoryItem{}, func(_item llrb.Item) bool {
		refs = append(refs, _item.(*memoryItem).ref)
		return true
	})
	return refs, nil
}

// Close keeps the objects, so the store can be used again after reopen
func (ms *MemoryObjectStore) Close() {
}

// IsEOF is always false for memory
func (ms *MemoryObjectStore) IsEOF(err error) bool {
	return false
}
