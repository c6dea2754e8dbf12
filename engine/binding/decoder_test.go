package binding

import (
	"fmt"
	"sync"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

type geometry interface {
	Area() int
}

type cartGeometry struct {
	Width, Height, Left, Top int
}

func (g *cartGeometry) Area() int { return g.Width * g.Height }

type circleGeometry struct {
	Radius float64
	Raw    *jsonval.Object
}

func (g *circleGeometry) Area() int { return int(3 * g.Radius * g.Radius) }

type box struct {
	Name     string
	Contents []interface{}
}

var (
	itemGeometry = InterfaceCapability("item-geometry", (*geometry)(nil))
	cartCap      = TypeCapability("cart", &cartGeometry{}, itemGeometry).SetConstructor(
		NewParamSpec(0,
			Required("width", Int),
			Required("height", Int),
			Required("left", Int),
			Required("top", Int),
		),
		Func(func(width, height, left, top int) *cartGeometry {
			return &cartGeometry{width, height, left, top}
		}),
	)
	circleCap = TypeCapability("circle", &circleGeometry{}, itemGeometry).SetConstructor(
		NewParamSpec(1, Required("radius", Float64)),
		Func(func(raw *jsonval.Object, radius float64) (*circleGeometry, error) {
			if radius < 0 {
				return nil, fmt.Errorf("negative radius %v", radius)
			}
			return &circleGeometry{radius, raw}, nil
		}),
	)
	boxCap = TypeCapability("box", &box{}).SetConstructor(
		NewParamSpec(0, Required("name", String), Required("contents", SliceOf(Decodable(itemGeometry)))),
		Func(func(name string, contents []interface{}) *box {
			return &box{name, contents}
		}),
	)
)

func init() {
	itemGeometry.SetTagTable(map[string]*Capability{
		"cart":   cartCap,
		"circle": circleCap,
	})
}

func TestDecodeCart(t *testing.T) {
	obj := DecodeText(itemGeometry, `{"type":"cart","width":10,"height":20,"left":0,"top":0}`, nil)
	assert.Equal(t, &cartGeometry{Width: 10, Height: 20, Left: 0, Top: 0}, obj)
	assert.T(t, itemGeometry.Accepts(obj))
	assert.T(t, cartCap.Accepts(obj))
	assert.T(t, !circleCap.Accepts(obj))
}

func TestDecodeUntagged(t *testing.T) {
	obj := Decode(cartCap, mustParse(t, `{width:1, height:2, left:3, top:4}`), nil)
	assert.Equal(t, &cartGeometry{1, 2, 3, 4}, obj)
}

func TestDecodeRawDescriptor(t *testing.T) {
	desc := mustParse(t, `{type:"circle", radius:2, comment:"kept in raw"}`)
	obj := Decode(itemGeometry, desc, nil).(*circleGeometry)
	assert.Equal(t, 2.0, obj.Radius)
	assert.T(t, obj.Raw == desc)
}

func TestDecodeNested(t *testing.T) {
	obj, err := DecodeErr(boxCap, mustParse(t, `{
		name: "toys",
		contents: [{type:"cart", width:1, height:1, left:0, top:0}, {type:"circle", radius:1}],
	}`), nil)
	assert.Equal(t, nil, err)
	b := obj.(*box)
	assert.Equal(t, "toys", b.Name)
	assert.Equal(t, 2, len(b.Contents))
	assert.Equal(t, 1, b.Contents[0].(geometry).Area())
	assert.Equal(t, 3, b.Contents[1].(geometry).Area())

	// an already decoded instance passes through
	inv := MustInvoker("put", NewParamSpec(0, Required("item", Decodable(itemGeometry))))
	supplied := jsonval.NewObject()
	supplied.Set("item", b.Contents[0])
	args, err := inv.Bind(nil, supplied, nil)
	assert.Equal(t, nil, err)
	assert.T(t, args[0] == b.Contents[0])
}

func TestDecodeFailures(t *testing.T) {
	_, err := DecodeErr(itemGeometry, mustParse(t, `{type:"hexagon"}`), nil)
	assert.T(t, errors.Is(err, ErrUnknownTypeTag))

	_, err = DecodeErr(itemGeometry, mustParse(t, `{type:"cart", width:1}`), nil)
	assert.T(t, errors.Is(err, ErrMissingParameter))

	_, err = DecodeErr(itemGeometry, mustParse(t, `{type:"circle", radius:-1}`), nil)
	assert.NotEqual(t, nil, err)

	_, err = DecodeErr(boxCap, mustParse(t, `{name:"bad", contents:[{type:"hexagon"}]}`), nil)
	assert.T(t, errors.Is(err, ErrParameterTypeMismatch))
	assert.T(t, errors.Is(err.(*Failure).Cause, ErrUnknownTypeTag))

	// the failure is logged and nil returned
	assert.Equal(t, nil, Decode(itemGeometry, mustParse(t, `{type:"hexagon"}`), nil))
	assert.Equal(t, nil, DecodeText(itemGeometry, `{type:`, nil))

	// an interface capability with no constructor
	table := NewDecoderTable()
	_, err = table.DecodeErr(itemGeometry, mustParse(t, `{type:"self"}`), TypeResolverFunc(func(base *Capability, tag string) *Capability {
		return base
	}))
	assert.T(t, errors.Is(err, ErrNoDecoder))
	_, err = table.DecodeErr(itemGeometry, mustParse(t, `{}`), nil)
	assert.T(t, errors.Is(err, ErrNoDecoder))
	assert.Equal(t, 1, table.Len())
}

func TestDecodePanickingConstructor(t *testing.T) {
	fragile := NewCapability("fragile", func(interface{}) bool { return true }).SetConstructor(
		NewParamSpec(0),
		func(args []interface{}) (interface{}, error) {
			panic("constructor blew up")
		},
	)
	_, err := DecodeErr(fragile, jsonval.NewObject(), nil)
	assert.NotEqual(t, nil, err)
}

func TestStaticResolver(t *testing.T) {
	root := NewCapability("root", func(interface{}) bool { return true })
	leaf := NewCapability("leaf", func(interface{}) bool { return true })
	mid := NewCapability("mid", func(interface{}) bool { return true }, root)
	sub := NewCapability("sub", func(interface{}) bool { return true }, mid)
	root.SetTagTable(map[string]*Capability{"leaf": leaf})

	r := &StaticResolver{}
	assert.T(t, r.ResolveType(sub, "leaf") == leaf)
	assert.T(t, r.ResolveType(sub, "other") == nil)

	lonely := NewCapability("lonely", func(interface{}) bool { return true })
	assert.T(t, r.ResolveType(lonely, "anything") == lonely)

	assert.T(t, sub.IsA(root))
	assert.T(t, !root.IsA(sub))
}

func TestConcurrentDecoderPopulation(t *testing.T) {
	table := NewDecoderTable()
	resolver := &StaticResolver{}
	desc := mustParse(t, `{type:"cart", width:2, height:3, left:0, top:0}`)

	var wg sync.WaitGroup
	results := make([]interface{}, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = table.Decode(itemGeometry, desc, resolver)
		}(i)
	}
	wg.Wait()

	for _, obj := range results {
		assert.Equal(t, &cartGeometry{2, 3, 0, 0}, obj)
	}
	assert.Equal(t, 1, table.Len())
}

func TestFunc(t *testing.T) {
	thunk := Func(func(a int, s string, f float64, o *jsonval.Object) (string, error) {
		return fmt.Sprintf("%d %s %.1f %v", a, s, f, o == nil), nil
	})
	result, err := thunk([]interface{}{int64(3), "x", 2, nil})
	assert.Equal(t, nil, err)
	assert.Equal(t, "3 x 2.0 true", result)

	_, err = thunk([]interface{}{1})
	assert.NotEqual(t, nil, err)

	failing := Func(func() error { return fmt.Errorf("nope") })
	result, err = failing(nil)
	assert.Equal(t, nil, result)
	assert.Equal(t, "nope", err.Error())

	silent := Func(func(int) {})
	result, err = silent([]interface{}{1})
	assert.Equal(t, nil, result)
	assert.Equal(t, nil, err)
}

func TestRegisterCapability(t *testing.T) {
	c := RegisterCapability(NewCapability("registered-once", func(interface{}) bool { return false }))
	assert.T(t, LookupCapability("registered-once") == c)
	assert.T(t, LookupCapability("never-registered") == nil)

	defer func() {
		assert.NotEqual(t, nil, recover())
	}()
	RegisterCapability(NewCapability("registered-once", func(interface{}) bool { return false }))
}
