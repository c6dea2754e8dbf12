package config

import (
	"testing"
	"time"

	"github.com/bmizerany/assert"
	"github.com/xiaonanln/goelko/engine/gwlog"
)

func init() {
	SetConfigFile("../../goelko.ini.sample")
}

func TestLoad(t *testing.T) {
	config := Get()
	gwlog.Debugf("goelko config: \n%s", config)
	if config == nil {
		t.FailNow()
	}
	assert.Equal(t, true, config.JSON.Strict)
	assert.Equal(t, 16, config.Dispatch.MaxRetargetHops)
	assert.Equal(t, 100*time.Millisecond, config.Dispatch.OpWarnThreshold)
	assert.Equal(t, "filesystem", GetObjDB().Type)
	assert.Equal(t, "_objdb", GetObjDB().Directory)
	assert.Equal(t, []string{"classes"}, GetObjDB().ClassDesc)
}

func TestReload(t *testing.T) {
	first := Get()
	config := Reload()
	assert.NotEqual(t, nil, config)
	assert.T(t, first != config, "reload should read the file again")
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	assert.Equal(t, nil, err)
	assert.Equal(t, true, cfg.JSON.Strict)
	assert.Equal(t, 16, cfg.Dispatch.MaxRetargetHops)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, true, cfg.Log.Stderr)
	assert.Equal(t, "filesystem", cfg.ObjDB.Type)
	assert.Equal(t, "goelko", cfg.ObjDB.DB)
	assert.Equal(t, 0, len(cfg.ObjDB.ClassDesc))
}

func TestParseSections(t *testing.T) {
	cfg, err := Parse([]byte(`
[json]
strict = false
[dispatch]
max_retarget_hops = 4
op_warn_threshold_ms = 250
[log]
level = debug
file = elko.log
stderr = false
[objdb]
type = redis_cluster
start_nodes_1 = 127.0.0.1:7000
start_nodes_2 = 127.0.0.1:7001
classdesc = classes, more extra
`))
	assert.Equal(t, nil, err)
	assert.Equal(t, false, cfg.JSON.Strict)
	assert.Equal(t, 4, cfg.Dispatch.MaxRetargetHops)
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatch.OpWarnThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "elko.log", cfg.Log.File)
	assert.Equal(t, false, cfg.Log.Stderr)
	assert.Equal(t, 2, len(cfg.ObjDB.StartNodes))
	assert.T(t, cfg.ObjDB.StartNodes.Contains("127.0.0.1:7001"))
	assert.Equal(t, []string{"classes", "more", "extra"}, cfg.ObjDB.ClassDesc)
}

func TestRedisDefaultDB(t *testing.T) {
	cfg, err := Parse([]byte("[objdb]\ntype = redis\nurl = redis://127.0.0.1:6379\n"))
	assert.Equal(t, nil, err)
	assert.Equal(t, "0", cfg.ObjDB.DB)
}

func expectPanic(t *testing.T, text string) {
	defer func() {
		if recover() == nil {
			t.Errorf("config should be rejected:\n%s", text)
		}
	}()
	Parse([]byte(text))
}

func TestInvalidConfig(t *testing.T) {
	expectPanic(t, "[json]\nquoted = true\n")
	expectPanic(t, "[dispatch]\nmax_retarget_hops = 0\n")
	expectPanic(t, "[objdb]\ntype = mysql\n")
	expectPanic(t, "[objdb]\ntype = redis\n")
	expectPanic(t, "[objdb]\ntype = redis\nurl = x\ndb = first\n")
	expectPanic(t, "[objdb]\ntype = redis_cluster\n")
	expectPanic(t, "[objdb]\ntype = mongodb\n")
}

func TestMemoryObjDB(t *testing.T) {
	cfg, err := Parse([]byte("[objdb]\ntype = memory\n"))
	assert.Equal(t, nil, err)
	assert.Equal(t, "memory", cfg.ObjDB.Type)
}

func TestDumpPretty(t *testing.T) {
	cfg, _ := Parse(nil)
	s := DumpPretty(cfg.Dispatch)
	assert.T(t, len(s) > 0)
	assert.Equal(t, "GoElkoConfig<strict=true, hops=16, log=info, objdb=filesystem>", cfg.String())
}
