// Package objdb loads and stores persistent objects as descriptors.
//
// A stored object is the descriptor text of one Object, keyed by its ref. Loading
// decodes the descriptor through the binding package, with the ObjDB acting as the
// type resolver: tags are looked up in the ObjDB's class table, which is filled by
// AddClass and by class descriptor objects read with LoadClassDesc.
//
// A property named "ref$name" holds the ref, or an array of refs, of other stored
// objects. Loading replaces it with the property "name" holding the loaded
// descriptors, so constructors see them as nested descriptors.
//
// Load and Save run on the caller's goroutine. GetObject, PutObject, RemoveObject and
// ListRefs are queued to the storage routine of the ObjDB, and their callbacks are
// posted to be run by post.Tick.
package objdb

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	"github.com/xiaonanln/goelko/engine/binding"
	"github.com/xiaonanln/goelko/engine/common"
	"github.com/xiaonanln/goelko/engine/consts"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/gwutils"
	"github.com/xiaonanln/goelko/engine/jsonparse"
	"github.com/xiaonanln/goelko/engine/jsonval"
	"github.com/xiaonanln/goelko/engine/objdb/objdb_common"
	"github.com/xiaonanln/goelko/engine/opmon"
	"github.com/xiaonanln/goelko/engine/post"
	"github.com/xiaonanln/goelko/engine/uuid"
)

var (
	// ErrNotFound is returned when no object is stored under a ref
	ErrNotFound = errors.New("object not found")
	// ErrRefCycle is returned when stored objects reference each other in a cycle
	ErrRefCycle = errors.New("object reference cycle")
	// ErrNotPersistable is returned when an object encodes to nothing for the repository
	ErrNotPersistable = errors.New("object has nothing to persist")
	// ErrClosed is returned for requests made after Shutdown
	ErrClosed = errors.New("objdb is closed")
)

// StoreOpener opens the backing store. It is called again to reconnect after the
// store reports a broken connection.
type StoreOpener func() (objdbcommon.ObjectStore, error)

// GetCallback receives the decoded object of GetObject
type GetCallback func(obj interface{}, err error)

// PutCallback receives the result of PutObject and RemoveObject
type PutCallback func(err error)

// ListCallback receives the result of ListRefs
type ListCallback func(refs []string, err error)

type getRequest struct {
	Ref      string
	Base     *binding.Capability
	Callback GetCallback
}

type putRequest struct {
	Ref        string
	Text       string
	RequireNew bool
	Callback   PutCallback
}

type removeRequest struct {
	Ref      string
	Callback PutCallback
}

type listRequest struct {
	Callback ListCallback
}

// ObjDB is an object database over one ObjectStore
type ObjDB struct {
	opener    StoreOpener
	storeLock sync.Mutex
	store     objdbcommon.ObjectStore

	classLock sync.RWMutex
	classes   map[string]*binding.Capability
	decoders  *binding.DecoderTable
	encoder   jsonval.Encoder

	operationQueue       *xnsyncutil.SyncQueue
	routineTerminated    *xnsyncutil.OneTimeCond
	recentWarnedQueueLen int64
	closed               int32
}

// Open opens the store and starts the storage routine
func Open(opener StoreOpener) (*ObjDB, error) {
	store, err := opener()
	if err != nil {
		return nil, errors.Wrap(err, "open object store")
	}

	db := &ObjDB{
		opener:            opener,
		store:             store,
		classes:           map[string]*binding.Capability{},
		decoders:          binding.NewDecoderTable(),
		encoder:           jsonval.StrictEncoder,
		operationQueue:    xnsyncutil.NewSyncQueue(),
		routineTerminated: xnsyncutil.NewOneTimeCond(),
	}
	db.AddClass(consts.CLASSDESC_TAG, ClassDescCapability)
	db.AddClass(consts.CLASS_TAG, ClassTagCapability)
	go db.storageRoutine()
	return db, nil
}

// OpenStore opens an ObjDB over a store that is never reopened
func OpenStore(store objdbcommon.ObjectStore) *ObjDB {
	opened := false
	db, _ := Open(func() (objdbcommon.ObjectStore, error) {
		if opened {
			return nil, errors.New("object store can not be reopened")
		}
		opened = true
		return store, nil
	})
	return db
}

// SetEncoder sets the encoder used to write objects, StrictEncoder by default
func (db *ObjDB) SetEncoder(enc jsonval.Encoder) {
	db.encoder = enc
}

// AddClass maps a type tag to a capability
func (db *ObjDB) AddClass(tag string, c *binding.Capability) {
	db.classLock.Lock()
	db.classes[tag] = c
	db.classLock.Unlock()
}

// Class returns the capability of a type tag, nil if unknown
func (db *ObjDB) Class(tag string) *binding.Capability {
	db.classLock.RLock()
	c := db.classes[tag]
	db.classLock.RUnlock()
	return c
}

// ResolveType implements binding.TypeResolver. Tags in the class table resolve only
// to capabilities that are a base. Other tags are resolved by binding.DefaultResolver.
func (db *ObjDB) ResolveType(base *binding.Capability, tag string) *binding.Capability {
	if c := db.Class(tag); c != nil {
		if !c.IsA(base) {
			gwlog.Errorf("objdb: class %s of tag '%s' is not a %s", c.Name(), tag, base.Name())
			return nil
		}
		return c
	}
	return binding.DefaultResolver.ResolveType(base, tag)
}

// NewRef generates a ref for a new object
func (db *ObjDB) NewRef(prefix string) string {
	return uuid.GenRef(prefix)
}

// withStore runs f against the store, reopening it first if the connection was lost.
// broken reports that the store is unusable and the operation may be retried.
func (db *ObjDB) withStore(f func(store objdbcommon.ObjectStore) error) (broken bool, err error) {
	db.storeLock.Lock()
	defer db.storeLock.Unlock()

	if db.store == nil {
		if atomic.LoadInt32(&db.closed) != 0 {
			return false, ErrClosed
		}
		if db.store, err = db.opener(); err != nil {
			db.store = nil
			gwlog.Errorf("objdb: object store is not ready: %s", err)
			return true, errors.Wrap(err, "reopen object store")
		}
	}
	err = f(db.store)
	if err != nil && db.store.IsEOF(err) {
		db.store.Close()
		db.store = nil
		return true, err
	}
	return false, err
}

func (db *ObjDB) getText(ref string) (text string, err error) {
	_, err = db.withStore(func(store objdbcommon.ObjectStore) (err error) {
		text, err = store.Get(ref)
		return
	})
	if consts.DEBUG_SAVE_LOAD {
		gwlog.Debugf("objdb: GET %s: %q %v", ref, text, err)
	}
	return
}

// LoadObject reads the descriptor of ref with every ref$ property dereferenced
func (db *ObjDB) LoadObject(ref string) (*jsonval.Object, error) {
	obj, err := db.loadTree(ref, common.StringSet{})
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(ErrNotFound, "%s", ref)
	}
	return obj, nil
}

// Load reads ref and decodes it as an instance of base
func (db *ObjDB) Load(ref string, base *binding.Capability) (interface{}, error) {
	obj, err := db.LoadObject(ref)
	if err != nil {
		return nil, err
	}
	return db.decoders.DecodeErr(base, obj, db)
}

func (db *ObjDB) loadTree(ref string, visiting common.StringSet) (*jsonval.Object, error) {
	if visiting.Contains(ref) {
		return nil, errors.Wrapf(ErrRefCycle, "%s", ref)
	}
	text, err := db.getText(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", ref)
	}
	if text == "" {
		return nil, nil
	}
	obj, err := jsonparse.ParseObject(text)
	if err != nil {
		return nil, errors.Wrapf(err, "object %s", ref)
	}

	visiting.Add(ref)
	defer visiting.Remove(ref)
	if err := db.insertContents(obj, visiting); err != nil {
		return nil, err
	}
	return obj, nil
}

func (db *ObjDB) insertContents(obj *jsonval.Object, visiting common.StringSet) error {
	var refProps []string
	obj.Range(func(name string, _ interface{}) bool {
		if strings.HasPrefix(name, consts.REF_PREFIX) {
			refProps = append(refProps, name)
		}
		return true
	})

	for _, name := range refProps {
		contents, err := db.dereference(obj.Remove(name), visiting)
		if err != nil {
			return err
		}
		if contents != nil {
			obj.Set(name[len(consts.REF_PREFIX):], contents)
		}
	}
	return nil
}

// dereference loads the objects named by a ref$ property value
func (db *ObjDB) dereference(v interface{}, visiting common.StringSet) (interface{}, error) {
	switch v := v.(type) {
	case string:
		obj, err := db.loadTree(v, visiting)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			gwlog.Errorf("objdb: referenced object %s is not found", v)
			return nil, nil
		}
		return obj, nil
	case jsonval.Array:
		contents := make(jsonval.Array, 0, len(v))
		for _, elem := range v {
			ref, ok := elem.(string)
			if !ok {
				gwlog.Warnf("objdb: ignoring ref %v of kind %s", elem, jsonval.KindOf(elem))
				continue
			}
			obj, err := db.loadTree(ref, visiting)
			if err != nil {
				return nil, err
			}
			if obj == nil {
				gwlog.Errorf("objdb: referenced object %s is not found", ref)
				continue
			}
			contents = append(contents, obj)
		}
		return contents, nil
	}
	gwlog.Warnf("objdb: ignoring ref %v of kind %s", v, jsonval.KindOf(v))
	return nil, nil
}

func (db *ObjDB) encode(obj interface{}) (string, error) {
	text := jsonval.EncodeValue(db.encoder.ForRepository(), obj)
	if text == "" {
		return "", errors.Wrapf(ErrNotPersistable, "%T", obj)
	}
	return text, nil
}

// Save encodes obj for the repository and stores it under ref
func (db *ObjDB) Save(ref string, obj interface{}, requireNew bool) error {
	text, err := db.encode(obj)
	if err != nil {
		return err
	}
	return db.put(ref, text, requireNew)
}

func (db *ObjDB) put(ref string, text string, requireNew bool) (err error) {
	for attempt := 0; ; attempt++ {
		if consts.DEBUG_SAVE_LOAD {
			gwlog.Debugf("objdb: PUT %s: %s ...", ref, text)
		}
		var broken bool
		broken, err = db.withStore(func(store objdbcommon.ObjectStore) error {
			return store.Put(ref, text, requireNew)
		})
		if !broken || attempt >= consts.OBJDB_PUT_RETRIES {
			return
		}
		gwlog.Errorf("objdb: put %s failed: %s, retrying ...", ref, err)
		time.Sleep(consts.OBJDB_RETRY_INTERVAL)
	}
}

// Remove deletes the object stored under ref
func (db *ObjDB) Remove(ref string) error {
	_, err := db.withStore(func(store objdbcommon.ObjectStore) error {
		return store.Remove(ref)
	})
	return err
}

// List returns the refs of all stored objects
func (db *ObjDB) List() (refs []string, err error) {
	_, err = db.withStore(func(store objdbcommon.ObjectStore) (err error) {
		refs, err = store.List()
		return
	})
	return
}

// GetObject loads and decodes ref on the storage routine
func (db *ObjDB) GetObject(ref string, base *binding.Capability, callback GetCallback) {
	db.pushRequest(getRequest{Ref: ref, Base: base, Callback: callback})
}

// PutObject encodes obj now and stores it on the storage routine
func (db *ObjDB) PutObject(ref string, obj interface{}, requireNew bool, callback PutCallback) {
	text, err := db.encode(obj)
	if err != nil {
		if callback != nil {
			post.Post(func() {
				callback(err)
			})
		}
		return
	}
	db.pushRequest(putRequest{Ref: ref, Text: text, RequireNew: requireNew, Callback: callback})
}

// RemoveObject deletes ref on the storage routine
func (db *ObjDB) RemoveObject(ref string, callback PutCallback) {
	db.pushRequest(removeRequest{Ref: ref, Callback: callback})
}

// ListRefs lists stored refs on the storage routine
//
// Return values can be large for big databases
func (db *ObjDB) ListRefs(callback ListCallback) {
	db.pushRequest(listRequest{Callback: callback})
}

func (db *ObjDB) pushRequest(req interface{}) {
	if atomic.LoadInt32(&db.closed) != 0 {
		gwlog.Errorf("objdb: request %T after shutdown", req)
		db.reject(req)
		return
	}
	db.operationQueue.Push(req)
	db.checkOperationQueueLen()
}

func (db *ObjDB) reject(req interface{}) {
	post.Post(func() {
		switch req := req.(type) {
		case getRequest:
			if req.Callback != nil {
				req.Callback(nil, ErrClosed)
			}
		case putRequest:
			if req.Callback != nil {
				req.Callback(ErrClosed)
			}
		case removeRequest:
			if req.Callback != nil {
				req.Callback(ErrClosed)
			}
		case listRequest:
			if req.Callback != nil {
				req.Callback(nil, ErrClosed)
			}
		}
	})
}

func (db *ObjDB) checkOperationQueueLen() {
	qlen := int64(db.operationQueue.Len())
	if qlen > consts.OBJDB_QUEUE_WARN_STEP && qlen%consts.OBJDB_QUEUE_WARN_STEP == 0 && atomic.SwapInt64(&db.recentWarnedQueueLen, qlen) != qlen {
		gwlog.Warnf("objdb operation queue length = %d", qlen)
	}
}

// Shutdown stops the storage routine after the queued requests are done, and closes the store
func (db *ObjDB) Shutdown() {
	if !atomic.CompareAndSwapInt32(&db.closed, 0, 1) {
		return
	}
	db.operationQueue.Close()
	db.routineTerminated.Wait()
}

func (db *ObjDB) closeStore() {
	db.storeLock.Lock()
	if db.store != nil {
		db.store.Close()
		db.store = nil
	}
	db.storeLock.Unlock()
}

func (db *ObjDB) storageRoutine() {
	// a panic in one request must not stop the routine
	gwutils.RepeatUntilPanicless(db.serveRequests)
	db.closeStore()
	db.routineTerminated.Signal()
}

func (db *ObjDB) serveRequests() {
	for {
		op := db.operationQueue.Pop()
		if op == nil { // queue closed
			break
		}
		db.handleRequest(op)
	}
}

func (db *ObjDB) handleRequest(op interface{}) {
	switch req := op.(type) {
	case getRequest:
		monop := opmon.StartOperation("objdb.get")
		obj, err := db.Load(req.Ref, req.Base)
		if err != nil {
			gwlog.Errorf("objdb: get %s failed: %s", req.Ref, err)
		}
		monop.Finish(consts.OBJDB_OP_WARN_THRESHOLD)
		if req.Callback != nil {
			post.Post(func() {
				req.Callback(obj, err)
			})
		}
	case putRequest:
		monop := opmon.StartOperation("objdb.put")
		err := db.put(req.Ref, req.Text, req.RequireNew)
		if err != nil {
			gwlog.Errorf("objdb: put %s failed: %s", req.Ref, err)
		}
		monop.Finish(consts.OBJDB_OP_WARN_THRESHOLD)
		if req.Callback != nil {
			post.Post(func() {
				req.Callback(err)
			})
		}
	case removeRequest:
		monop := opmon.StartOperation("objdb.remove")
		err := db.Remove(req.Ref)
		monop.Finish(consts.OBJDB_OP_WARN_THRESHOLD)
		if req.Callback != nil {
			post.Post(func() {
				req.Callback(err)
			})
		}
	case listRequest:
		monop := opmon.StartOperation("objdb.list")
		refs, err := db.List()
		if err != nil {
			gwlog.Errorf("objdb: list failed: %s", err)
		}
		monop.Finish(consts.OBJDB_OP_WARN_THRESHOLD * 10)
		if req.Callback != nil {
			post.Post(func() {
				req.Callback(refs, err)
			})
		}
	default:
		gwlog.Panicf("objdb: unknown operation: %v", op)
	}
}
