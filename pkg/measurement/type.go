package measurement

import "time"

// Name of the series every charger slot is written to.
const ChargerMeasurement = "alc1800pc"

const SlotTag = "slot"

// Measurement is one time series point. Fields keep insertion order and
// cannot be overwritten once set.
type Measurement struct {
	Name string
	Time time.Time
	Tags map[string]string

	keys   []string
	fields map[string]any
}
