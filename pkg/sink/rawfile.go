package sink

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
)

// RawFileSink appends every dispatched line to a text file as
// <unix seconds>;<raw fields>. Values are written as received, not coerced.
type RawFileSink struct {
	path string
	file *os.File
}

func NewRawFileSink(path string) (*RawFileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &RawFileSink{path: path, file: f}, nil
}

func (r *RawFileSink) Name() string { return "file" }

func (r *RawFileSink) Write(batch frame.Batch, at time.Time) error {
	line := strconv.FormatInt(at.Unix(), 10) + frame.Delimiter + strings.Join(batch.Raw, frame.Delimiter) + "\n"
	if _, err := r.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to %s: %w", r.path, err)
	}
	return nil
}

func (r *RawFileSink) Close() error {
	return r.file.Close()
}
