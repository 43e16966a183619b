package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedFrame = errors.New("malformed frame")

// Decode splits a raw device line into a Batch.
// Any field count other than FrameFieldCount rejects the whole line.
func Decode(rawLine string) (Batch, error) {
	fields := strings.Split(rawLine, Delimiter)
	if len(fields) != FrameFieldCount {
		return Batch{}, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedFrame, len(fields), FrameFieldCount)
	}

	// Drop the line terminator
	fields = fields[:len(fields)-1]

	batch := Batch{Raw: fields}
	for i := range SlotCount {
		start := i * FieldsPerSlot
		batch.Slots[i] = BuildSlot(fields[start : start+FieldsPerSlot])
	}
	return batch, nil
}

// BuildSlot maps an 11 field window positionally onto a SlotRecord.
// Missing trailing fields are left empty; extra fields are ignored.
func BuildSlot(fields []string) SlotRecord {
	var rec SlotRecord
	for pos := 0; pos < FieldsPerSlot && pos < len(fields); pos++ {
		rec.Raw[pos] = fields[pos]
		if SlotFields[pos].Numeric {
			rec.Values[pos] = Coerce(fields[pos])
		} else {
			rec.Values[pos] = Value{Raw: fields[pos]}
		}
	}
	return rec
}

// Coerce parses raw as a base 10 integer, keeping raw verbatim when it doesn't parse.
func Coerce(raw string) Value {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Value{Raw: raw}
	}
	return Value{Raw: raw, Int: n, Numeric: true}
}
