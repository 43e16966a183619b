package sink

import (
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
)

// Sink consumes accepted batches. Every sink of a dispatch sees the same
// batch and timestamp and must not modify either.
type Sink interface {
	Name() string
	Write(batch frame.Batch, at time.Time) error
}
