package objdb

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/config"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/jsonval"
	"github.com/xiaonanln/goelko/engine/objdb/backend/filesystem"
	"github.com/xiaonanln/goelko/engine/objdb/backend/memory"
	"github.com/xiaonanln/goelko/engine/objdb/backend/mongodb"
	"github.com/xiaonanln/goelko/engine/objdb/backend/redis"
	"github.com/xiaonanln/goelko/engine/objdb/backend/redis_cluster"
	"github.com/xiaonanln/goelko/engine/objdb/objdb_common"
)

// StoreOpenerOf returns the opener of the store described by cfg
func StoreOpenerOf(cfg *config.ObjDBConfig) (StoreOpener, error) {
	switch cfg.Type {
	case "filesystem":
		return func() (objdbcommon.ObjectStore, error) {
			return objstorefilesystem.OpenDirectory(cfg.Directory)
		}, nil
	case "memory":
		store := objstorememory.NewMemoryObjectStore()
		return func() (objdbcommon.ObjectStore, error) {
			return store, nil
		}, nil
	case "redis":
		dbindex, err := strconv.Atoi(cfg.DB)
		if err != nil {
			return nil, errors.Wrap(err, "redis db must be integer")
		}
		return func() (objdbcommon.ObjectStore, error) {
			return objstoreredis.OpenRedis(cfg.Url, dbindex)
		}, nil
	case "redis_cluster":
		startNodes := cfg.StartNodes.ToList()
		return func() (objdbcommon.ObjectStore, error) {
			return objstorerediscluster.OpenRedisCluster(startNodes)
		}, nil
	case "mongodb":
		return func() (objdbcommon.ObjectStore, error) {
			return objstoremongodb.OpenMongoDB(cfg.Url, cfg.DB, cfg.Collection)
		}, nil
	}
	return nil, errors.Errorf("unknown objdb type: %s", cfg.Type)
}

// OpenConfig opens the object database described by cfg, using enc to write objects,
// and loads its class descriptors. Class descriptors that fail to load are logged.
func OpenConfig(cfg *config.ObjDBConfig, enc jsonval.Encoder) (*ObjDB, error) {
	opener, err := StoreOpenerOf(cfg)
	if err != nil {
		return nil, err
	}
	db, err := Open(opener)
	if err != nil {
		return nil, err
	}
	db.SetEncoder(enc)
	if err := db.LoadClassDesc(cfg.ClassDesc...); err != nil {
		gwlog.Warnf("objdb: some class descriptors are not loaded: %s", err)
	}
	return db, nil
}

// OpenFromConfig opens the object database of the [objdb] section of the config file
func OpenFromConfig() (*ObjDB, error) {
	return OpenConfig(config.GetObjDB(), jsonval.Encoder{Strict: config.GetJSON().Strict})
}
