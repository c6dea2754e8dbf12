package config

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/common"
	"github.com/xiaonanln/goelko/engine/consts"
	"github.com/xiaonanln/goelko/engine/gwlog"
)

const (
	_DEFAULT_CONFIG_FILE     = "goelko.ini"
	_DEFAULT_LOG_LEVEL       = "info"
	_DEFAULT_OBJDB_TYPE      = "filesystem"
	_DEFAULT_OBJDB_DIRECTORY = "_objdb"
	_DEFAULT_OBJDB_DB        = "goelko"
	_DEFAULT_OBJDB_COLL      = "objects"
)

var (
	configFilePath = _DEFAULT_CONFIG_FILE
	goElkoConfig   *GoElkoConfig
	configLock     sync.Mutex
)

// JSONConfig defines fields of the [json] section
type JSONConfig struct {
	Strict bool // quote object keys when encoding
}

// DispatchConfig defines fields of the [dispatch] section
type DispatchConfig struct {
	MaxRetargetHops int
	OpWarnThreshold time.Duration
}

// LogConfig defines fields of the [log] section
type LogConfig struct {
	Level  string
	File   string
	Stderr bool
}

// ObjDBConfig defines fields of the [objdb] section
type ObjDBConfig struct {
	Type       string // Type of object store (filesystem, memory, redis, redis_cluster, mongodb)
	Directory  string // Directory of filesystem store (filesystem)
	Url        string // Connection URL (redis, mongodb)
	DB         string // Database name (redis, mongodb)
	Collection string // Collection name (mongodb)
	StartNodes common.StringSet
	ClassDesc  []string // refs of class descriptor objects loaded at open
}

// GoElkoConfig defines the total config file structure
type GoElkoConfig struct {
	JSON     JSONConfig
	Dispatch DispatchConfig
	Log      LogConfig
	ObjDB    ObjDBConfig
}

// SetConfigFile sets the config file path (goelko.ini by default)
func SetConfigFile(f string) {
	configLock.Lock()
	configFilePath = f
	goElkoConfig = nil
	configLock.Unlock()
}

// GetConfigDir returns the directory of the config file
func GetConfigDir() string {
	dir, _ := path.Split(configFilePath)
	return dir
}

// GetConfigFilePath returns the config file path
func GetConfigFilePath() string {
	return configFilePath
}

// Get returns the total config
func Get() *GoElkoConfig {
	configLock.Lock()
	defer configLock.Unlock()
	if goElkoConfig == nil {
		goElkoConfig = readGoElkoConfig()
	}
	return goElkoConfig
}

// Reload forces the config file to be read again
func Reload() *GoElkoConfig {
	configLock.Lock()
	goElkoConfig = nil
	configLock.Unlock()

	return Get()
}

// GetJSON returns the json config
func GetJSON() *JSONConfig {
	return &Get().JSON
}

// GetDispatch returns the dispatch config
func GetDispatch() *DispatchConfig {
	return &Get().Dispatch
}

// GetLog returns the log config
func GetLog() *LogConfig {
	return &Get().Log
}

// GetObjDB returns the objdb config
func GetObjDB() *ObjDBConfig {
	return &Get().ObjDB
}

// DumpPretty format config to string in pretty format
func DumpPretty(cfg interface{}) string {
	s, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err.Error()
	}
	return string(s)
}

func readGoElkoConfig() *GoElkoConfig {
	gwlog.Infof("Using config file: %s", configFilePath)
	iniFile, err := ini.Load(configFilePath)
	checkConfigError(err, "")
	return readConfigFrom(iniFile)
}

// Parse reads config from ini text. Missing sections get their defaults.
func Parse(data []byte) (*GoElkoConfig, error) {
	iniFile, err := ini.Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return readConfigFrom(iniFile), nil
}

func readConfigFrom(iniFile *ini.File) *GoElkoConfig {
	var config GoElkoConfig
	readJSONConfig(iniFile.Section("json"), &config.JSON)
	readDispatchConfig(iniFile.Section("dispatch"), &config.Dispatch)
	readLogConfig(iniFile.Section("log"), &config.Log)
	readObjDBConfig(iniFile.Section("objdb"), &config.ObjDB)

	for _, sec := range iniFile.Sections() {
		secName := strings.ToLower(sec.Name())
		switch secName {
		case "default", "json", "dispatch", "log", "objdb":
		default:
			gwlog.Errorf("unknown section: %s", sec.Name())
		}
	}
	return &config
}

func readJSONConfig(sec *ini.Section, config *JSONConfig) {
	config.Strict = true

	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "strict" {
			config.Strict = key.MustBool(config.Strict)
		} else {
			gwlog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
}

func readDispatchConfig(sec *ini.Section, config *DispatchConfig) {
	config.MaxRetargetHops = consts.DEFAULT_MAX_RETARGET_HOPS
	config.OpWarnThreshold = consts.DEFAULT_DISPATCH_WARN_THRESHOLD

	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "max_retarget_hops" {
			config.MaxRetargetHops = key.MustInt(config.MaxRetargetHops)
		} else if name == "op_warn_threshold_ms" {
			config.OpWarnThreshold = time.Millisecond * time.Duration(key.MustInt(int(config.OpWarnThreshold/time.Millisecond)))
		} else {
			gwlog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}

	if config.MaxRetargetHops <= 0 {
		gwlog.Panicf("max_retarget_hops must be positive, not %d", config.MaxRetargetHops)
	}
}

func readLogConfig(sec *ini.Section, config *LogConfig) {
	config.Level = _DEFAULT_LOG_LEVEL
	config.File = ""
	config.Stderr = true

	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "level" {
			config.Level = key.MustString(config.Level)
		} else if name == "file" {
			config.File = key.MustString(config.File)
		} else if name == "stderr" {
			config.Stderr = key.MustBool(config.Stderr)
		} else {
			gwlog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
}

func readObjDBConfig(sec *ini.Section, config *ObjDBConfig) {
	// setup default values
	config.Type = _DEFAULT_OBJDB_TYPE
	config.Directory = _DEFAULT_OBJDB_DIRECTORY
	config.DB = ""
	config.Collection = _DEFAULT_OBJDB_COLL
	config.StartNodes = common.StringSet{}

	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "type" {
			config.Type = key.MustString(config.Type)
		} else if name == "directory" {
			config.Directory = key.MustString(config.Directory)
		} else if name == "url" {
			config.Url = key.MustString(config.Url)
		} else if name == "db" {
			config.DB = key.MustString(config.DB)
		} else if name == "collection" {
			config.Collection = key.MustString(config.Collection)
		} else if name == "classdesc" {
			config.ClassDesc = splitRefs(key.String())
		} else if strings.HasPrefix(name, "start_nodes_") {
			config.StartNodes.Add(key.MustString(""))
		} else {
			gwlog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}

	if config.DB == "" {
		if config.Type == "redis" {
			config.DB = "0"
		} else {
			config.DB = _DEFAULT_OBJDB_DB
		}
	}

	validateObjDBConfig(config)
}

// splitRefs splits a list of refs separated by commas, colons or blanks
func splitRefs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ':' || r == ' ' || r == '\t'
	})
}

func checkConfigError(err error, msg string) {
	if err != nil {
		if msg == "" {
			msg = err.Error()
		}
		gwlog.Panicf("read config error: %s", msg)
	}
}

func validateObjDBConfig(config *ObjDBConfig) {
	if config.Type == "filesystem" {
		// directory must be set
		if config.Directory == "" {
			gwlog.Panicf("directory is not set in %s objdb config", config.Type)
		}
	} else if config.Type == "memory" {
		// nothing to check
	} else if config.Type == "mongodb" {
		if config.Url == "" || config.Collection == "" {
			gwlog.Panicf("invalid %s objdb config:\n%s", config.Type, DumpPretty(config))
		}
	} else if config.Type == "redis" {
		if config.Url == "" {
			gwlog.Panicf("redis host is not set")
		}
		if _, err := strconv.Atoi(config.DB); err != nil {
			gwlog.Panicf("%s", errors.Wrap(err, "redis db must be integer"))
		}
	} else if config.Type == "redis_cluster" {
		if len(config.StartNodes) == 0 {
			gwlog.Panicf("must have at least 1 start_nodes for [objdb].redis_cluster")
		}
		for s := range config.StartNodes {
			if s == "" {
				gwlog.Panicf("start_nodes must not be empty")
			}
		}
	} else {
		gwlog.Panicf("unknown objdb type: %s", config.Type)
	}
}

// String returns a one-line summary of the config
func (cfg *GoElkoConfig) String() string {
	return fmt.Sprintf("GoElkoConfig<strict=%v, hops=%d, log=%s, objdb=%s>",
		cfg.JSON.Strict, cfg.Dispatch.MaxRetargetHops, cfg.Log.Level, cfg.ObjDB.Type)
}
