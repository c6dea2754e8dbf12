package jsonparse

import (
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

func TestParseLenientMessage(t *testing.T) {
	obj, err := ParseObject(`{op:"say", text:"hi", to:"room1"}`)
	assert.Equal(t, nil, err)
	assert.Equal(t, "say", obj.Verb())
	assert.Equal(t, "room1", obj.Target())
	text, err := obj.GetString("text")
	assert.Equal(t, nil, err)
	assert.Equal(t, "hi", text)
}

func TestParseDialect(t *testing.T) {
	text := `
	// a descriptor with every extension
	{
		type: 'cart',          /* single quotes */
		"width": 0x0A,         // hex
		height: +024,          // signed octal
		left: -0, top: 0.0,
		tags: ['a', "b\x21",],
		$nested: {_k: [true, false, null, ], },
	}`
	obj, err := ParseObject(text)
	assert.Equal(t, nil, err)

	want := jsonval.NewTyped("cart")
	want.Set("width", 10)
	want.Set("height", 20)
	want.Set("left", 0)
	want.Set("top", 0.0)
	want.Set("tags", jsonval.NewArray("a", "b!"))
	nested := jsonval.NewObject()
	nested.Set("_k", jsonval.NewArray(true, false, nil))
	want.Set("$nested", nested)

	if diff := cmp.Diff(want, obj); diff != "" {
		t.Errorf("parsed descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSequence(t *testing.T) {
	text := `{op:"a"} [1, 2] "s" 3 /* tail */`
	v, next, err := ParseNextValue(text, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, "a", v.(*jsonval.Object).Verb())

	v, next, err = ParseNextValue(text, next)
	assert.Equal(t, nil, err)
	assert.T(t, jsonval.Equal(jsonval.NewArray(1, 2), v))

	v, next, err = ParseNextValue(text, next)
	assert.Equal(t, nil, err)
	assert.Equal(t, "s", v)

	v, next, err = ParseNextValue(text, next)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(3), v)

	_, _, err = ParseNextValue(text, next)
	assert.Equal(t, io.EOF, err)

	values, err := ParseAll(text)
	assert.Equal(t, nil, err)
	assert.Equal(t, 4, len(values))

	_, err = Parse("   // nothing here\n")
	assert.Equal(t, io.EOF, err)

	// cursors out of range are clamped
	v, next, err = ParseNextValue("[1]", -1)
	assert.Equal(t, nil, err)
	assert.T(t, jsonval.Equal(jsonval.NewArray(1), v))
	assert.Equal(t, 3, next)
	_, _, err = ParseNextValue("[1]", 10)
	assert.Equal(t, io.EOF, err)
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
		pos   int
	}{
		{`{op "say"}`, "expected ':'", 4},
		{`{op:"say" text:"hi"}`, "expected '}'", 10},
		{`{1:2}`, "expected symbol or string", 1},
		{`[1 2]`, "expected ']'", 3},
		{`{a:}`, "expected value", 3},
		{`{a:b}`, "expected value", 3},
		{`{a:1`, "expected '}'", 4},
		{`{a:"open}`, "unterminated string", 3},
		{`[0x]`, "malformed hex number", 1},
		{`{a:#}`, "unexpected character", 3},
		{`}`, "expected value", 0},
	}
	for _, test := range tests {
		_, err := Parse(test.input)
		se, ok := err.(*SyntaxError)
		if !ok {
			t.Errorf("%s: expected SyntaxError, got %v", test.input, err)
			continue
		}
		assert.Equal(t, test.msg, se.Msg, test.input)
		assert.Equal(t, test.pos, se.Pos, test.input)
		assert.T(t, errors.Is(err, ErrSyntax))
	}

	_, err := ParseObject(`[1]`)
	assert.T(t, errors.Is(err, ErrSyntax))
}

func TestParseDepthLimit(t *testing.T) {
	deep := strings.Repeat("[", 600) + strings.Repeat("]", 600)
	_, err := Parse(deep)
	se, ok := err.(*SyntaxError)
	assert.T(t, ok)
	assert.Equal(t, "nesting too deep", se.Msg)

	ok2 := strings.Repeat("[", 100) + strings.Repeat("]", 100)
	_, err = Parse(ok2)
	assert.Equal(t, nil, err)
}

func TestSurrogatePairs(t *testing.T) {
	v, err := Parse(`"\ud83d\ude00 \u00e9 \udc00"`)
	assert.Equal(t, nil, err)
	assert.Equal(t, "😀 é \uFFFD", v)
}

type cart struct{ w, h int }

func (c cart) Encode(ctl jsonval.EncodeControl) *jsonval.Literal {
	lit := jsonval.NewTypedLiteral(ctl, "cart")
	lit.AddField("width", c.w)
	lit.AddField("height", c.h)
	lit.Finish()
	return lit
}

func TestEncodeToObject(t *testing.T) {
	obj, err := EncodeToObject(cart{3, 4}, jsonval.ForRepository)
	assert.Equal(t, nil, err)
	assert.Equal(t, "cart", obj.TypeTag())
	w, _ := obj.GetInt("width")
	assert.Equal(t, 3, w)
}

// randomValue builds values of the shapes the parser produces
func randomValue(r *rand.Rand, depth int) interface{} {
	n := 8
	if depth > 3 {
		n = 5
	}
	switch r.Intn(n) {
	case 0:
		return nil
	case 1:
		return r.Intn(2) == 0
	case 2:
		return r.Int63() - r.Int63()
	case 3:
		return (r.Float64() - 0.5) * float64(r.Intn(1e6)+1)
	case 4:
		return randomString(r)
	case 5, 6:
		arr := jsonval.Array{}
		for i := r.Intn(4); i > 0; i-- {
			arr = append(arr, randomValue(r, depth+1))
		}
		return arr
	default:
		obj := jsonval.NewObject()
		for i := r.Intn(5); i > 0; i-- {
			obj.Set(randomKey(r), randomValue(r, depth+1))
		}
		return obj
	}
}

var stringAlphabet = []rune("ab Z09_$\"'\\/\b\f\n\r\té中😀{}[]:,")

func randomString(r *rand.Rand) string {
	runes := make([]rune, r.Intn(10))
	for i := range runes {
		runes[i] = stringAlphabet[r.Intn(len(stringAlphabet))]
	}
	return string(runes)
}

var keyPool = []string{"to", "op", "type", "ref", "text", "has space", "true", "9lives", "$x", "é", "a/b"}

func randomKey(r *rand.Rand) string {
	if r.Intn(3) == 0 {
		return randomString(r)
	}
	return keyPool[r.Intn(len(keyPool))]
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(20161107))
	for _, enc := range []jsonval.Encoder{jsonval.StrictEncoder, jsonval.LenientEncoder} {
		for i := 0; i < 500; i++ {
			v := randomValue(r, 0)
			text := enc.Encode(v)
			got, err := Parse(text)
			if err != nil {
				t.Fatalf("strict=%v: parse %s: %v", enc.Strict, text, err)
			}
			if !jsonval.Equal(v, got) {
				t.Fatalf("strict=%v: round trip mismatch for %s", enc.Strict, text)
			}
			if again := enc.Encode(got); again != text {
				t.Fatalf("strict=%v: re-encoding differs:\n%s\n%s", enc.Strict, text, again)
			}
		}
	}
}
