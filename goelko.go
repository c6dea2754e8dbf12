package goelko

import (
	"sync"
	"time"

	"github.com/xiaonanln/goTimer"
	"github.com/xiaonanln/goelko/engine/binding"
	"github.com/xiaonanln/goelko/engine/config"
	"github.com/xiaonanln/goelko/engine/dispatch"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/jsonparse"
	"github.com/xiaonanln/goelko/engine/jsonval"
	"github.com/xiaonanln/goelko/engine/objdb"
	"github.com/xiaonanln/goelko/engine/post"
)

var (
	setupLock sync.RWMutex
	encoder   = jsonval.StrictEncoder
)

// Setup reads the config file, or goelko.ini if configFile is empty, and applies the
// [log] and [json] sections. It is called once at process start.
func Setup(configFile string) *config.GoElkoConfig {
	if configFile != "" {
		config.SetConfigFile(configFile)
	}
	cfg := config.Get()
	SetupLog(&cfg.Log)

	setupLock.Lock()
	encoder = jsonval.Encoder{Strict: cfg.JSON.Strict}
	setupLock.Unlock()
	gwlog.Infof("goelko setup: %s", cfg)
	return cfg
}

// SetupLog applies a log config to gwlog
func SetupLog(cfg *config.LogConfig) {
	gwlog.SetLevel(gwlog.ParseLevel(cfg.Level))
	var outputs []string
	if cfg.Stderr {
		outputs = append(outputs, "stderr")
	}
	if cfg.File != "" {
		outputs = append(outputs, cfg.File)
	}
	gwlog.SetOutput(outputs)
}

// Encoder returns the process Encoder
func Encoder() jsonval.Encoder {
	setupLock.RLock()
	defer setupLock.RUnlock()
	return encoder
}

// ForClient returns the encode control for messages to remote peers
func ForClient() jsonval.EncodeControl {
	return Encoder().ForClient()
}

// ForRepository returns the encode control for persisted descriptors
func ForRepository() jsonval.EncodeControl {
	return Encoder().ForRepository()
}

// Encode returns the wire text of a value, encoded for remote peers
func Encode(v interface{}) string {
	return Encoder().Encode(v)
}

// NewMessage starts a message literal to a target
func NewMessage(to, op string) *jsonval.Literal {
	return jsonval.NewMessageLiteral(ForClient(), to, op)
}

// Parse parses the first value of text
func Parse(text string) (interface{}, error) {
	return jsonparse.Parse(text)
}

// ParseObject parses the first value of text, which must be an object
func ParseObject(text string) (*jsonval.Object, error) {
	return jsonparse.ParseObject(text)
}

// Decode decodes a descriptor as an instance of base, using the tag lookups of the
// capabilities. It logs and returns nil on failure.
func Decode(base *binding.Capability, obj *jsonval.Object) interface{} {
	return binding.Decode(base, obj, nil)
}

// NewDispatcher creates a Dispatcher with the [dispatch] config
func NewDispatcher() *dispatch.Dispatcher {
	return NewDispatcherWithResolver(binding.DefaultResolver)
}

// NewDispatcherWithResolver creates a Dispatcher with the [dispatch] config, resolving
// the type tags of descriptor parameters with resolver
func NewDispatcherWithResolver(resolver binding.TypeResolver) *dispatch.Dispatcher {
	cfg := config.GetDispatch()
	return dispatch.NewDispatcher(resolver, &dispatch.Options{
		MaxRetargetHops: cfg.MaxRetargetHops,
		WarnThreshold:   cfg.OpWarnThreshold,
	})
}

// OpenObjDB opens the object database of the [objdb] config
func OpenObjDB() (*objdb.ObjDB, error) {
	return objdb.OpenConfig(config.GetObjDB(), Encoder())
}

// AddCallback calls callback once after d, from Tick
func AddCallback(d time.Duration, callback func()) *timer.Timer {
	return timer.AddCallback(d, callback)
}

// AddTimer calls callback every d, from Tick, until the timer is cancelled
func AddTimer(d time.Duration, callback func()) *timer.Timer {
	return timer.AddTimer(d, callback)
}

// Tick runs the callbacks posted by background routines, such as object database
// requests, and the due timers. It is called by the main routine.
func Tick() {
	post.Tick()
	timer.Tick()
}
