package chargerdb

import "database/sql"

// SlotReading is one slot of one dispatched batch.
// Measured values are NULL when the charger sent something non-numeric;
// Raw always holds the slot window as received.
type SlotReading struct {
	Timestamp     int64         `db:"timestamp"`
	Slot          string        `db:"slot"`
	Program       string        `db:"program"`
	Status        string        `db:"status"`
	VoltageMv     sql.NullInt64 `db:"voltage_mv"`
	CurrentMa     sql.NullInt64 `db:"current_ma"`
	ChargedMah    sql.NullInt64 `db:"charged_mah"`
	DischargedMah sql.NullInt64 `db:"discharged_mah"`
	EnergyMw      sql.NullInt64 `db:"energy_mw"`
	Runtime       string        `db:"runtime"`
	Raw           string        `db:"raw"`
}
