package sink

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
	"github.com/NotCoffee418/alc_charger_logger/pkg/metrics"
)

var ErrSinkPanic = errors.New("sink panicked")

// Router fans accepted batches out to the configured sinks.
// A failing sink is logged and skipped; it never stops the others.
type Router struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Collector
}

func NewRouter(logger *slog.Logger, collector *metrics.Collector, sinks ...Sink) *Router {
	return &Router{
		sinks:   sinks,
		logger:  logger,
		metrics: collector,
	}
}

func (r *Router) Add(s Sink) {
	r.sinks = append(r.sinks, s)
}

func (r *Router) Names() []string {
	names := make([]string, 0, len(r.sinks))
	for _, s := range r.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Dispatch delivers batch to every sink in order.
func (r *Router) Dispatch(batch frame.Batch, at time.Time) {
	for _, s := range r.sinks {
		err := deliver(s, batch, at)
		r.metrics.SinkResult(s.Name(), err)
		if err != nil {
			r.logger.Error("sink delivery failed", "sink", s.Name(), "error", err)
			continue
		}
		r.logger.Debug("sink delivery ok", "sink", s.Name())
	}
}

// Close closes every sink that holds resources.
func (r *Router) Close() error {
	var errs []error
	for _, s := range r.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func deliver(s Sink, batch frame.Batch, at time.Time) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrSinkPanic, rec)
		}
	}()
	return s.Write(batch, at)
}
