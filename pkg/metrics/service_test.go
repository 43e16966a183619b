package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.FrameDecoded()
	c.FrameDecoded()
	c.FrameMalformed()
	c.Dispatched()
	c.Gated()
	c.Gated()
	c.DuplicateField()
	c.SinkResult("file", nil)
	c.SinkResult("influxdb", errors.New("connection refused"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Frames.WithLabelValues(FrameValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Frames.WithLabelValues(FrameMalformed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Dispatches))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Suppressed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DuplicateFields))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SinkWrites.WithLabelValues("file")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.SinkFailures.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SinkFailures.WithLabelValues("influxdb")))
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
