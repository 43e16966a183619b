package sink

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
)

const consoleTimeFormat = "06-01-02 15:04:05"

// ConsoleSink prints the batch as a fixed width table.
// Each column is as wide as its label plus one space.
type ConsoleSink struct {
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (c *ConsoleSink) Name() string { return "console" }

func (c *ConsoleSink) Write(batch frame.Batch, at time.Time) error {
	var b strings.Builder

	b.WriteString(at.Format(consoleTimeFormat))
	b.WriteByte('\n')

	for _, def := range frame.SlotFields {
		fmt.Fprintf(&b, "%-*s", columnWidth(def), def.Label)
	}
	b.WriteByte('\n')

	for _, def := range frame.SlotFields {
		b.WriteString(center(def.Unit, columnWidth(def)))
	}
	b.WriteByte('\n')

	for _, slot := range batch.Slots {
		for pos, def := range frame.SlotFields {
			fmt.Fprintf(&b, "%-*s", columnWidth(def), slot.Raw[pos])
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(c.out, b.String())
	return err
}

func columnWidth(def frame.FieldDef) int {
	return len(def.Label) + 1
}

// center pads s to width, putting the odd space on the right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
