// Package metrics exposes pipeline counters for Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	FrameValid     = "valid"
	FrameMalformed = "malformed"
)

type Collector struct {
	Frames          *prometheus.CounterVec
	Dispatches      prometheus.Counter
	Suppressed      prometheus.Counter
	SinkWrites      *prometheus.CounterVec
	SinkFailures    *prometheus.CounterVec
	DuplicateFields prometheus.Counter
}

// NewCollector registers the pipeline counters on reg.
// Pass prometheus.NewRegistry() in tests to avoid clashing with the default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charger_frames_total",
			Help: "Lines read from the charger, by decode result.",
		}, []string{"result"}),
		Dispatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charger_dispatches_total",
			Help: "Batches handed to the sinks.",
		}),
		Suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charger_suppressed_total",
			Help: "Valid batches dropped by the rate gate.",
		}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charger_sink_writes_total",
			Help: "Successful sink deliveries.",
		}, []string{"sink"}),
		SinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charger_sink_failures_total",
			Help: "Failed sink deliveries.",
		}, []string{"sink"}),
		DuplicateFields: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charger_duplicate_fields_total",
			Help: "Rejected duplicate field writes while building measurements.",
		}),
	}

	reg.MustRegister(c.Frames, c.Dispatches, c.Suppressed, c.SinkWrites, c.SinkFailures, c.DuplicateFields)
	return c
}

func (c *Collector) FrameDecoded() { c.Frames.WithLabelValues(FrameValid).Inc() }
func (c *Collector) FrameMalformed() { c.Frames.WithLabelValues(FrameMalformed).Inc() }
func (c *Collector) Dispatched() { c.Dispatches.Inc() }
func (c *Collector) Gated() { c.Suppressed.Inc() }
func (c *Collector) DuplicateField() { c.DuplicateFields.Inc() }

func (c *Collector) SinkResult(sink string, err error) {
	if err != nil {
		c.SinkFailures.WithLabelValues(sink).Inc()
		return
	}
	c.SinkWrites.WithLabelValues(sink).Inc()
}
