package goelko

import (
	"testing"
	"time"

	"github.com/bmizerany/assert"
	"github.com/xiaonanln/goelko/engine/binding"
	"github.com/xiaonanln/goelko/engine/dispatch"
	"github.com/xiaonanln/goelko/engine/gwlog"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

func init() {
	Setup("goelko.ini.sample")
}

type counter struct {
	n int
}

type sink struct {
	sent []string
}

func (s *sink) Send(lit *jsonval.Literal) {
	s.sent = append(s.sent, lit.SendableString())
}

var counterCap = binding.TypeCapability("goelkotest.counter", (*counter)(nil))

func TestSetup(t *testing.T) {
	assert.Equal(t, true, Encoder().Strict)
	assert.Equal(t, gwlog.InfoLevel, gwlog.GetLevel())
	assert.Equal(t, true, ForRepository().ToRepository())
	assert.Equal(t, true, ForClient().Strict())
}

func TestMessageRoundTrip(t *testing.T) {
	lit := NewMessage("counter1", "add")
	lit.AddField("by", 2)
	lit.Finish()
	assert.Equal(t, `{"to":"counter1", "op":"add", "by":2}`, lit.SendableString())

	msg, err := ParseObject(lit.SendableString())
	assert.Equal(t, nil, err)

	d := NewDispatcher()
	d.Register(counterCap, dispatch.NewMethod("add", func(c *counter, from dispatch.Deliverer, by int) error {
		c.n += by
		from.Send(NewMessage("user1", "added"))
		return nil
	}, binding.Required("by", binding.Int)))

	c := &counter{}
	from := &sink{}
	assert.Equal(t, nil, d.Dispatch(from, c, msg))
	assert.Equal(t, 2, c.n)
	assert.Equal(t, 1, len(from.sent))
}

func TestEncode(t *testing.T) {
	v, err := Parse(`[1, {b:true}]`)
	assert.Equal(t, nil, err)
	assert.Equal(t, `[1, {"b":true}]`, Encode(v))
}

func TestTimers(t *testing.T) {
	fired, ticks := 0, 0
	AddCallback(0, func() {
		fired++
	})
	tm := AddTimer(time.Millisecond, func() {
		ticks++
	})
	for i := 0; i < 1000 && ticks < 3; i++ {
		time.Sleep(time.Millisecond * 2)
		Tick()
	}
	tm.Cancel()
	assert.Equal(t, 1, fired)
	assert.T(t, ticks >= 3)
}
