// Package poller drives the read, decode, gate, dispatch loop.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
	"github.com/NotCoffee418/alc_charger_logger/pkg/gate"
	"github.com/NotCoffee418/alc_charger_logger/pkg/metrics"
	"github.com/NotCoffee418/alc_charger_logger/pkg/port_reader"
	"github.com/NotCoffee418/alc_charger_logger/pkg/sink"
)

// Tolerance before a broken connection ends the loop.
const maxConsecutiveErrors = 10

// LineReader yields one raw device line per call. It returns
// port_reader.ErrReadTimeout when no line arrived in time and
// port_reader.ErrPortClosed once the connection is gone.
type LineReader interface {
	ReadLine() (string, error)
}

type Poller struct {
	reader  LineReader
	gate    *gate.RateGate
	router  *sink.Router
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

func NewPoller(reader LineReader, g *gate.RateGate, router *sink.Router, collector *metrics.Collector, logger *slog.Logger) *Poller {
	return &Poller{
		reader:  reader,
		gate:    g,
		router:  router,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
}

// Run reads lines until ctx is done or the connection is closed.
// Malformed lines and sink failures never end the loop.
func (p *Poller) Run(ctx context.Context) error {
	consecutiveErrors := 0
	var lastError error

	for consecutiveErrors < maxConsecutiveErrors {
		if err := ctx.Err(); err != nil {
			p.logger.Info("stop signal received")
			return nil
		}

		line, err := p.reader.ReadLine()
		switch {
		case err == nil:
			consecutiveErrors = 0
			p.HandleLine(line)
		case errors.Is(err, port_reader.ErrReadTimeout):
			continue
		case errors.Is(err, port_reader.ErrPortClosed):
			p.logger.Info("connection closed, stopping poller")
			return nil
		default:
			consecutiveErrors++
			lastError = err
			p.logger.Error("error reading line", "attempt", consecutiveErrors, "max", maxConsecutiveErrors, "error", err)
		}
	}

	return fmt.Errorf("too many consecutive read errors (%d): %w", maxConsecutiveErrors, lastError)
}

// HandleLine decodes one line and dispatches it if the gate is open.
// It reports whether the line reached the sinks.
func (p *Poller) HandleLine(line string) bool {
	p.logger.Debug("raw line", "data", line)

	batch, err := frame.Decode(line)
	if err != nil {
		p.metrics.FrameMalformed()
		p.logger.Error("received invalid data", "data", line, "error", err)
		return false
	}
	p.metrics.FrameDecoded()

	now := p.now()
	if !p.gate.ShouldDispatch(now) {
		p.metrics.Gated()
		return false
	}

	p.metrics.Dispatched()
	p.router.Dispatch(batch, now)
	return true
}
