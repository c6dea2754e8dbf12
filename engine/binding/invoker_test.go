package binding

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/jsonparse"
	"github.com/xiaonanln/goelko/engine/jsonval"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func mustParse(t *testing.T, text string) *jsonval.Object {
	obj, err := jsonparse.ParseObject(text)
	if err != nil {
		t.Fatalf("parse %s: %s", text, err)
	}
	return obj
}

func observeWarnings(t *testing.T) *observer.ObservedLogs {
	old := gwlog.GetLogger()
	t.Cleanup(func() { gwlog.SetLogger(old) })
	core, logs := observer.New(zapcore.WarnLevel)
	gwlog.SetLogger(zap.New(core))
	return logs
}

var moveSpec = NewParamSpec(1,
	Required("into", OptString),
	Required("left", Int),
	Required("top", Int),
)

func TestBindMove(t *testing.T) {
	inv := MustInvoker("move", moveSpec)
	args, err := inv.Bind([]interface{}{"sender"}, mustParse(t, `{to:"room1", op:"move", into:"box1", left:5, top:5}`), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, []interface{}{"sender", jsonval.SomeString("box1"), 5, 5}, args)

	args, err = inv.Bind([]interface{}{"sender"}, mustParse(t, `{op:"move", left:5.9, top:-2}`), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, []interface{}{"sender", jsonval.AbsentString, 5, -2}, args)
}

func TestBindMissingParameter(t *testing.T) {
	inv := MustInvoker("say", NewParamSpec(1, Required("text", String)))
	args, err := inv.Bind([]interface{}{"sender"}, mustParse(t, `{op:"say", to:"room1"}`), nil)
	assert.T(t, args == nil)
	assert.T(t, errors.Is(err, ErrMissingParameter))
	failure := err.(*Failure)
	assert.Equal(t, "text", failure.Param)
	assert.Equal(t, "say", failure.Owner)

	// null counts as missing
	_, err = inv.Bind([]interface{}{"sender"}, mustParse(t, `{op:"say", text:null}`), nil)
	assert.T(t, errors.Is(err, ErrMissingParameter))
}

func TestBindTypeMismatch(t *testing.T) {
	inv := MustInvoker("say", NewParamSpec(1, Required("text", String)))
	args, err := inv.Bind([]interface{}{"sender"}, mustParse(t, `{op:"say", text:5}`), nil)
	assert.T(t, args == nil)
	assert.T(t, errors.Is(err, ErrParameterTypeMismatch))
	failure := err.(*Failure)
	assert.Equal(t, jsonval.KindInt, failure.Got)
	assert.Equal(t, "say: parameter 'text' expects string, got integer", failure.Error())

	for _, test := range []struct {
		t    ParamType
		text string
	}{
		{Bool, `{v:1}`},
		{Int, `{v:"1"}`},
		{Float64, `{v:true}`},
		{OptBool, `{v:"yes"}`},
		{JSONArray, `{v:{}}`},
		{JSONObject, `{v:[]}`},
		{SliceOf(Int), `{v:[1, "2"]}`},
		{SliceOf(Int), `{v:5}`},
	} {
		inv := MustInvoker("m", NewParamSpec(0, Required("v", test.t)))
		_, err := inv.Bind(nil, mustParse(t, test.text), nil)
		assert.T(t, errors.Is(err, ErrParameterTypeMismatch), test.t, test.text)
	}
}

func TestBindCoercion(t *testing.T) {
	spec := NewParamSpec(0,
		Required("i8", Int8),
		Required("i16", Int16),
		Required("i32", Int32),
		Required("i64", Int64),
		Required("f32", Float32),
		Required("f64", Float64),
		Required("oi", OptInt),
		Required("of", OptFloat),
		Required("ob", OptBool),
		Required("ints", SliceOf(Int)),
		Required("grid", SliceOf(SliceOf(Float64))),
		Required("names", SliceOf(OptString)),
		Required("raw", JSONArray),
		Required("obj", JSONObject),
		Required("any", Any),
	)
	inv := MustInvoker("coerce", spec)
	args, err := inv.Bind(nil, mustParse(t, `{
		i8: 300, i16: -7.5, i32: 0x10, i64: 9007199254740993,
		f32: 2, f64: 1.25,
		oi: 3.99, of: 4, ob: false,
		ints: [1, 2.7, -3],
		grid: [[1, 2], [], [0.5]],
		names: ["a", "b"],
		raw: [1, "x", null],
		obj: {k: "v"},
		any: "whatever",
	}`), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, int8(44), args[0])
	assert.Equal(t, int16(-7), args[1])
	assert.Equal(t, int32(16), args[2])
	assert.Equal(t, int64(9007199254740993), args[3])
	assert.Equal(t, float32(2), args[4])
	assert.Equal(t, 1.25, args[5])
	assert.Equal(t, jsonval.SomeInt(3), args[6])
	assert.Equal(t, jsonval.SomeFloat(4), args[7])
	assert.Equal(t, jsonval.SomeBool(false), args[8])
	assert.Equal(t, []int{1, 2, -3}, args[9])
	assert.Equal(t, [][]float64{{1, 2}, {}, {0.5}}, args[10])
	assert.Equal(t, []jsonval.OptString{jsonval.SomeString("a"), jsonval.SomeString("b")}, args[11])
	assert.T(t, jsonval.Equal(jsonval.NewArray(1, "x", nil), args[12]))
	k, _ := args[13].(*jsonval.Object).OptString("k", "")
	assert.Equal(t, "v", k)
	assert.Equal(t, "whatever", args[14])
}

func TestBindDefaults(t *testing.T) {
	spec := NewParamSpec(0,
		Optional("n", Int),
		Optional("s", String),
		Optional("o", JSONObject),
		Required("list", SliceOf(String)),
		Required("raw", JSONArray),
		Required("oi", OptInt),
		Optional("ob", OptBool),
	)
	args, err := MustInvoker("defaults", spec).Bind(nil, jsonval.NewObject(), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, []interface{}{0, "", nil, nil, nil, jsonval.AbsentInt, jsonval.AbsentBool}, args)
}

func TestBindUnknownFieldWarning(t *testing.T) {
	logs := observeWarnings(t)

	inv := MustInvoker("say", NewParamSpec(1, Required("text", String)))
	withExtra, err := inv.Bind([]interface{}{"sender"}, mustParse(t, `{op:"say", to:"r", type:"t", ref:"x", _id:"y", text:"hi", color:"red"}`), nil)
	assert.Equal(t, nil, err)
	plain, err := inv.Bind([]interface{}{"sender"}, mustParse(t, `{op:"say", text:"hi"}`), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, plain, withExtra)

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "say: ignoring unknown parameter 'color'", logs.All()[0].Message)
}

func TestNewInvokerValidation(t *testing.T) {
	_, err := NewInvoker("dup", NewParamSpec(0, Required("a", Int), Optional("a", String)))
	assert.NotEqual(t, nil, err)
	_, err = NewInvoker("noname", NewParamSpec(0, Required("", Int)))
	assert.NotEqual(t, nil, err)
	_, err = NewInvoker("neg", NewParamSpec(-1))
	assert.NotEqual(t, nil, err)

	inv := MustInvoker("lead", NewParamSpec(2, Required("a", Int)))
	_, err = inv.Bind([]interface{}{"only one"}, jsonval.NewObject(), nil)
	assert.NotEqual(t, nil, err)
	assert.Equal(t, 3, inv.Spec().Arity())
	assert.Equal(t, "(_, _, a int)", inv.Spec().String())
}

func TestBindBuiltArray(t *testing.T) {
	obj := jsonval.NewObject()
	obj.Set("ints", []interface{}{1, int32(2), []interface{}{uint8(3)}})
	obj.Set("more", jsonval.Array{4, 5})

	inv := MustInvoker("sum", NewParamSpec(0,
		Required("ints", SliceOf(Int)),
		Required("more", SliceOf(Int)),
	))
	_, err := inv.Bind(nil, obj, nil)
	// the nested array is not an int
	assert.T(t, errors.Is(err, ErrParameterTypeMismatch), err)

	obj.Set("ints", []interface{}{1, 2})
	args, err := inv.Bind(nil, obj, nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, []interface{}{[]int{1, 2}, []int{4, 5}}, args)
}
