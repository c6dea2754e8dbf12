package objstoremongodb

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/jsonparse"
	"github.com/xiaonanln/goelko/engine/jsonval"
	"github.com/xiaonanln/goelko/engine/objdb/objdb_common"
	"github.com/xiaonanln/goelko/engine/uuid"
	"gopkg.in/mgo.v2/bson"
)

func TestBSONConversion(t *testing.T) {
	obj, err := jsonparse.ParseObject(`{type:"box", size:3, ratio:0.5, tags:["a", null, true], inner:{type:"cart", w:1}}`)
	assert.Equal(t, nil, err)

	doc := ObjectToBSON(obj)
	assert.Equal(t, "type", doc[0].Name)
	assert.Equal(t, 5, len(doc))

	// a bson round trip decodes nested documents as bson.M
	data, err := bson.Marshal(bson.D{{Name: "obj", Value: doc}})
	assert.Equal(t, nil, err)
	var decoded bson.M
	assert.Equal(t, nil, bson.Unmarshal(data, &decoded))

	back := fromBSON(decoded["obj"]).(*jsonval.Object)
	assert.T(t, jsonval.Equal(obj, back), back.String())
}

func TestMongoDBObjectStore(t *testing.T) {
	store, err := OpenMongoDB("mongodb://127.0.0.1:27017/?connect=direct", "goelko_test", "objects")
	if err != nil {
		t.Skipf("mongodb is not available: %s", err)
	}
	defer store.Close()

	ref := uuid.GenRef("test")
	defer store.Remove(ref)

	text, err := store.Get(ref)
	assert.Equal(t, nil, err)
	assert.Equal(t, "", text)

	assert.Equal(t, nil, store.Put(ref, `{"type":"room", "name":"lobby"}`, true))
	assert.T(t, errors.Is(store.Put(ref, `{"type":"room"}`, true), objdbcommon.ErrExists))
	assert.Equal(t, nil, store.Put(ref, `{"type":"room", "name":"hall"}`, false))

	text, err = store.Get(ref)
	assert.Equal(t, nil, err)
	obj, err := jsonparse.ParseObject(text)
	assert.Equal(t, nil, err)
	name, _ := obj.GetString("name")
	assert.Equal(t, "hall", name)

	refs, err := store.List()
	assert.Equal(t, nil, err)
	assert.T(t, len(refs) > 0)

	assert.Equal(t, nil, store.Remove(ref))
	text, _ = store.Get(ref)
	assert.Equal(t, "", text)
}
