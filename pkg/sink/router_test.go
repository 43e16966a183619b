package sink

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
	"github.com/NotCoffee418/alc_charger_logger/pkg/frame/frametest"
	"github.com/NotCoffee418/alc_charger_logger/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name   string
	err    error
	panics bool
	closed bool
	calls  []time.Time
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Write(_ frame.Batch, at time.Time) error {
	if r.panics {
		panic("boom")
	}
	r.calls = append(r.calls, at)
	return r.err
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestRouterIsolatesFailures(t *testing.T) {
	batch, err := frame.Decode(frametest.ValidLine())
	require.NoError(t, err)

	var logs bytes.Buffer
	collector := metrics.NewCollector(prometheus.NewRegistry())
	failing := &recordingSink{name: "influxdb", err: errors.New("connection refused")}
	panicking := &recordingSink{name: "history", panics: true}
	healthy := &recordingSink{name: "file"}
	var console bytes.Buffer

	r := NewRouter(slog.New(slog.NewTextHandler(&logs, nil)), collector, failing, panicking, NewConsoleSink(&console), healthy)

	at := time.Unix(1700000000, 0)
	assert.NotPanics(t, func() { r.Dispatch(batch, at) })

	assert.Equal(t, []time.Time{at}, failing.calls)
	assert.Equal(t, []time.Time{at}, healthy.calls)
	assert.NotEmpty(t, console.String())
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), ErrSinkPanic.Error())

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.SinkFailures.WithLabelValues("influxdb")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.SinkFailures.WithLabelValues("history")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.SinkWrites.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.SinkWrites.WithLabelValues("console")))
}

func TestRouterWithoutSinks(t *testing.T) {
	r := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.NewCollector(prometheus.NewRegistry()))
	assert.NotPanics(t, func() { r.Dispatch(frame.Batch{}, time.Now()) })
	assert.Empty(t, r.Names())
	assert.NoError(t, r.Close())
}

func TestRouterCloseClosesSinks(t *testing.T) {
	a := &recordingSink{name: "a"}
	r := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.NewCollector(prometheus.NewRegistry()), a)
	r.Add(NewConsoleSink(io.Discard))

	assert.Equal(t, []string{"a", "console"}, r.Names())
	require.NoError(t, r.Close())
	assert.True(t, a.closed)
}
