package objstoreredis

import (
	"io"
	"strings"

	"github.com/garyburd/redigo/redis"
	"github.com/pkg/errors"
	. "github.com/xiaonanln/goelko/engine/objdb/objdb_common"
)

const keyPrefix = "obj$"

type redisObjectStore struct {
	c redis.Conn
}

// OpenRedis opens redis as object store. url is either host:port or a redis:// URL.
func OpenRedis(url string, dbindex int) (ObjectStore, error) {
	var c redis.Conn
	var err error
	if strings.Contains(url, "://") {
		c, err = redis.DialURL(url, redis.DialDatabase(dbindex))
	} else {
		c, err = redis.Dial("tcp", url, redis.DialDatabase(dbindex))
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis dail failed")
	}

	return &redisObjectStore{
		c: c,
	}, nil
}

func objectKey(ref string) string {
	return keyPrefix + ref
}

func (rs *redisObjectStore) Get(ref string) (string, error) {
	b, err := redis.Bytes(rs.c.Do("GET", objectKey(ref)))
	if err == redis.ErrNil {
		return "", nil
	} else if err != nil {
		return "", err
	}
	return UnpackRecord(b)
}

func (rs *redisObjectStore) Put(ref string, text string, requireNew bool) error {
	if err := CheckRef(ref); err != nil {
		return err
	}
	b, err := PackRecord(text)
	if err != nil {
		return err
	}

	if requireNew {
		created, err := redis.Bool(rs.c.Do("SETNX", objectKey(ref), b))
		if err != nil {
			return err
		}
		if !created {
			return errors.Wrapf(ErrExists, "%s", ref)
		}
		return nil
	}

	_, err = rs.c.Do("SET", objectKey(ref), b)
	return err
}

func (rs *redisObjectStore) Remove(ref string) error {
	_, err := rs.c.Do("DEL", objectKey(ref))
	return err
}

func (rs *redisObjectStore) List() ([]string, error) {
	keyMatch := keyPrefix + "*"
	var refs []string
	cursor := interface{}("0")
	for {
		r, err := redis.Values(rs.c.Do("SCAN", cursor, "MATCH", keyMatch, "COUNT", 10000))
		if err != nil {
			return nil, err
		}
		keys, err := redis.Strings(r[1], nil)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			refs = append(refs, key[len(keyPrefix):])
		}

		cursor = r[0]
		if isZeroCursor(cursor) {
			break
		}
	}
	return refs, nil
}

func isZeroCursor(c interface{}) bool {
	return string(c.([]byte)) == "0"
}

func (rs *redisObjectStore) Close() {
	rs.c.Close()
}

func (rs *redisObjectStore) IsEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
