package measurement

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
)

var ErrDuplicateField = errors.New("field already set")

func New(name string, t time.Time) *Measurement {
	return &Measurement{
		Name:   name,
		Time:   t,
		Tags:   make(map[string]string),
		fields: make(map[string]any),
	}
}

func (m *Measurement) AddTag(key, value string) {
	m.Tags[key] = value
}

// AddField sets key iff it is absent. A second write for the same key is
// rejected with ErrDuplicateField and the first value stays.
func (m *Measurement) AddField(key string, value any) error {
	if m.Has(key) {
		return fmt.Errorf("%w: %q (kept %v, rejected %v)", ErrDuplicateField, key, m.fields[key], value)
	}
	m.keys = append(m.keys, key)
	m.fields[key] = value
	return nil
}

func (m *Measurement) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

func (m *Measurement) Field(key string) (any, bool) {
	v, ok := m.fields[key]
	return v, ok
}

// Keys returns field names in insertion order.
func (m *Measurement) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Fields returns a copy of the field set.
func (m *Measurement) Fields() map[string]any {
	out := make(map[string]any, len(m.fields))
	for k, v := range m.fields {
		out[k] = v
	}
	return out
}

func (m *Measurement) Len() int {
	return len(m.keys)
}

// FromSlot builds the charger point for one slot. The slot id becomes the
// tag, every other non-empty position becomes a field.
// Rejected duplicate writes are logged and counted through onDuplicate, which may be nil.
func FromSlot(slot frame.SlotRecord, t time.Time, logger *slog.Logger, onDuplicate func()) *Measurement {
	m := New(ChargerMeasurement, t)
	m.AddTag(SlotTag, slot.ID())

	for pos := frame.PosProgram; pos < frame.FieldsPerSlot; pos++ {
		if slot.Raw[pos] == "" {
			continue
		}
		if err := m.AddField(frame.SlotFields[pos].Key, slot.Values[pos].Interface()); err != nil {
			logger.Warn("rejected field write", "slot", slot.ID(), "error", err)
			if onDuplicate != nil {
				onDuplicate()
			}
		}
	}
	return m
}
