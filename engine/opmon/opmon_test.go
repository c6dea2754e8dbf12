package opmon

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bmizerany/assert"
)

func TestOperation(t *testing.T) {
	for i := 0; i < 3; i++ {
		op := StartOperation("test.op")
		op.Finish(time.Hour)
	}
	info := Get("test.op")
	assert.Equal(t, uint64(3), info.Count)
	assert.T(t, info.MaxDuration <= info.TotalDuration)

	var buf bytes.Buffer
	Dump(&buf)
	assert.T(t, strings.Contains(buf.String(), "test.op"))
	assert.Equal(t, uint64(0), Get("test.op").Count)
	assert.Equal(t, time.Duration(0), Get("never").AvgDuration())
}
