package objstorerediscluster

import (
	"io"
	"time"

	rediscluster "github.com/chasex/redis-go-cluster"
	"github.com/garyburd/redigo/redis"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/objdb/objdb_common"
)

const (
	keyPrefix = "obj$"
	// SCAN does not span cluster nodes, so stored refs are also kept in one set
	refsKey = "objdb$refs"
)

type redisClusterObjectStore struct {
	c rediscluster.Cluster
}

// OpenRedisCluster opens redis cluster as object store
func OpenRedisCluster(startNodes []string) (objdbcommon.ObjectStore, error) {
	c, err := rediscluster.NewCluster(&rediscluster.Options{
		StartNodes:   startNodes,
		ConnTimeout:  10 * time.Second, // Connection timeout
		ReadTimeout:  60 * time.Second, // Read timeout
		WriteTimeout: 60 * time.Second, // Write timeout
		KeepAlive:    1,                // Maximum keep alive connecion in each node
		AliveTime:    10 * time.Minute, // Keep alive timeout
	})

	if err != nil {
		return nil, errors.Wrap(err, "connect redis cluster failed")
	}

	return &redisClusterObjectStore{
		c: c,
	}, nil
}

func objectKey(ref string) string {
	return keyPrefix + ref
}

func (rs *redisClusterObjectStore) Get(ref string) (string, error) {
	b, err := redis.Bytes(rs.c.Do("GET", objectKey(ref)))
	if err == redis.ErrNil {
		return "", nil
	} else if err != nil {
		return "", err
	}
	return objdbcommon.UnpackRecord(b)
}

func (rs *redisClusterObjectStore) Put(ref string, text string, requireNew bool) error {
	if err := objdbcommon.CheckRef(ref); err != nil {
		return err
	}
	b, err := objdbcommon.PackRecord(text)
	if err != nil {
		return err
	}

	if requireNew {
		created, err := redis.Bool(rs.c.Do("SETNX", objectKey(ref), b))
		if err != nil {
			return err
		}
		if !created {
			return errors.Wrapf(objdbcommon.ErrExists, "%s", ref)
		}
	} else if _, err = rs.c.Do("SET", objectKey(ref), b); err != nil {
		return err
	}

	_, err = rs.c.Do("SADD", refsKey, ref)
	return err
}

func (rs *redisClusterObjectStore) Remove(ref string) error {
	if _, err := rs.c.Do("DEL", objectKey(ref)); err != nil {
		return err
	}
	_, err := rs.c.Do("SREM", refsKey, ref)
	return err
}

func (rs *redisClusterObjectStore) List() ([]string, error) {
	return redis.Strings(rs.c.Do("SMEMBERS", refsKey))
}

func (rs *redisClusterObjectStore) Close() {
	rs.c.Close()
}

func (rs *redisClusterObjectStore) IsEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
