package chargerdb

import "fmt"

func (c *ChargerDB) InsertSlotReadings(readings []*SlotReading) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO slot_readings " +
			"(timestamp, slot, program, status, voltage_mv, current_ma, charged_mah, discharged_mah, energy_mw, runtime, raw) " +
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range readings {
		_, err := stmt.Exec(
			r.Timestamp,
			r.Slot,
			r.Program,
			r.Status,
			r.VoltageMv,
			r.CurrentMa,
			r.ChargedMah,
			r.DischargedMah,
			r.EnergyMw,
			r.Runtime,
			r.Raw,
		)
		if err != nil {
			return fmt.Errorf("failed to insert slot %s: %w", r.Slot, err)
		}
	}
	return tx.Commit()
}

// LatestSlotReading returns the most recent row stored for slot.
func (c *ChargerDB) LatestSlotReading(slot string) (*SlotReading, error) {
	row := c.db.QueryRow(
		"SELECT timestamp, slot, program, status, voltage_mv, current_ma, charged_mah, discharged_mah, energy_mw, runtime, raw "+
			"FROM slot_readings WHERE slot = ? ORDER BY timestamp DESC, id DESC LIMIT 1",
		slot,
	)
	var r SlotReading
	err := row.Scan(
		&r.Timestamp,
		&r.Slot,
		&r.Program,
		&r.Status,
		&r.VoltageMv,
		&r.CurrentMa,
		&r.ChargedMah,
		&r.DischargedMah,
		&r.EnergyMw,
		&r.Runtime,
		&r.Raw,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
