package objstoremongodb

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/jsonparse"
	"github.com/xiaonanln/goelko/engine/jsonval"
	"github.com/xiaonanln/goelko/engine/objdb/objdb_common"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const (
	_DEFAULT_DB_NAME = "goelko"
	_OBJ_FIELD       = "obj"
)

type mongoDBObjectStore struct {
	session *mgo.Session
	col     *mgo.Collection
}

// OpenMongoDB opens a mongodb collection as object store
func OpenMongoDB(url string, dbname string, collection string) (objdbcommon.ObjectStore, error) {
	gwlog.Debugf("Connecting MongoDB ...")
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "mongodb dial failed")
	}

	session.SetMode(mgo.Monotonic, true)
	if dbname == "" {
		// if db is not specified, use default
		dbname = _DEFAULT_DB_NAME
	}
	return &mongoDBObjectStore{
		session: session,
		col:     session.DB(dbname).C(collection),
	}, nil
}

func (ms *mongoDBObjectStore) Get(ref string) (string, error) {
	var doc bson.M
	err := ms.col.FindId(ref).One(&doc)
	if err == mgo.ErrNotFound {
		return "", nil
	} else if err != nil {
		return "", err
	}
	obj, ok := fromBSON(doc[_OBJ_FIELD]).(*jsonval.Object)
	if !ok {
		return "", errors.Errorf("mongodb document %s has no object", ref)
	}
	return jsonval.EncodeValue(jsonval.ForRepository, obj), nil
}

func (ms *mongoDBObjectStore) Put(ref string, text string, requireNew bool) error {
	if err := objdbcommon.CheckRef(ref); err != nil {
		return err
	}
	obj, err := jsonparse.ParseObject(text)
	if err != nil {
		return err
	}
	doc := bson.D{{Name: "_id", Value: ref}, {Name: _OBJ_FIELD, Value: ObjectToBSON(obj)}}

	if requireNew {
		err = ms.col.Insert(doc)
		if mgo.IsDup(err) {
			return errors.Wrapf(objdbcommon.ErrExists, "%s", ref)
		}
		return err
	}
	_, err = ms.col.UpsertId(ref, doc)
	return err
}

func (ms *mongoDBObjectStore) Remove(ref string) error {
	err := ms.col.RemoveId(ref)
	if err == mgo.ErrNotFound {
		return nil
	}
	return err
}

func (ms *mongoDBObjectStore) List() ([]string, error) {
	var docs []bson.M
	err := ms.col.Find(nil).Select(bson.M{"_id": 1}).All(&docs)
	if err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(docs))
	for _, doc := range docs {
		if ref, ok := doc["_id"].(string); ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (ms *mongoDBObjectStore) Close() {
	ms.session.Close()
}

func (ms *mongoDBObjectStore) IsEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}

// ObjectToBSON converts an object to an ordered bson document
func ObjectToBSON(obj *jsonval.Object) bson.D {
	doc := make(bson.D, 0, obj.Len())
	obj.Range(func(name string, value interface{}) bool {
		doc = append(doc, bson.DocElem{Name: name, Value: toBSON(value)})
		return true
	})
	return doc
}

func toBSON(v interface{}) interface{} {
	switch v := v.(type) {
	case *jsonval.Object:
		return ObjectToBSON(v)
	case jsonval.Array:
		list := make([]interface{}, len(v))
		for i, elem := range v {
			list[i] = toBSON(elem)
		}
		return list
	}
	return v
}

// fromBSON converts a decoded bson value back to the value model
func fromBSON(v interface{}) interface{} {
	switch v := v.(type) {
	case nil, bool, int64, float64, string:
		return v
	case int:
		return int64(v)
	case bson.D:
		obj := jsonval.NewObject()
		for _, elem := range v {
			obj.Set(elem.Name, fromBSON(elem.Value))
		}
		return obj
	case bson.M:
		return mapToObject(v)
	case map[string]interface{}:
		return mapToObject(v)
	case []interface{}:
		arr := make(jsonval.Array, len(v))
		for i, elem := range v {
			arr[i] = fromBSON(elem)
		}
		return arr
	}
	return fmt.Sprint(v)
}

// mapToObject sets keys in sorted order, since bson.M has none
func mapToObject(m map[string]interface{}) *jsonval.Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	obj := jsonval.NewObject()
	for _, k := range keys {
		obj.Set(k, fromBSON(m[k]))
	}
	return obj
}
