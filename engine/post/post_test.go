package post

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestPost(t *testing.T) {
	var a int
	Post(func() {
		a = 1
		Post(func() {
			a = 2
		})
	})
	Post(func() {
		panic("a posted callback may panic")
	})
	assert.Equal(t, 2, Len())
	Tick()
	assert.Equal(t, 2, a)
	assert.Equal(t, 0, Len())
}
