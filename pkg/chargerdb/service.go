// ChargerDB keeps a local history of dispatched batches, one row per slot.
// It is written by the logger only; nothing in this module reads it back
// beyond what the tests need.
package chargerdb

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
	"github.com/NotCoffee418/dbmigrator"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type ChargerDB struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path and applies migrations.
func Open(path string, logger *slog.Logger) (*ChargerDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// Verify connection, this also creates the file
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// One writer, avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	// Apply migrations
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)

	logger.Info("history database ready", "path", path)
	return &ChargerDB{db: db, logger: logger}, nil
}

func (c *ChargerDB) GetDB() *sql.DB {
	return c.db
}

func (c *ChargerDB) Name() string { return "history" }

// Write stores every slot of batch in one transaction.
func (c *ChargerDB) Write(batch frame.Batch, at time.Time) error {
	readings := make([]*SlotReading, 0, frame.SlotCount)
	for _, slot := range batch.Slots {
		readings = append(readings, SlotReadingFromRecord(slot, at))
	}
	return c.InsertSlotReadings(readings)
}

func (c *ChargerDB) Close() error {
	return c.db.Close()
}

func SlotReadingFromRecord(slot frame.SlotRecord, at time.Time) *SlotReading {
	return &SlotReading{
		Timestamp:     at.Unix(),
		Slot:          slot.ID(),
		Program:       slot.Program(),
		Status:        string(slot.Status()),
		VoltageMv:     nullInt(slot.Voltage()),
		CurrentMa:     nullInt(slot.Current()),
		ChargedMah:    nullInt(slot.ChargedCapacity()),
		DischargedMah: nullInt(slot.DischargedCapacity()),
		EnergyMw:      nullInt(slot.Energy()),
		Runtime:       slot.Runtime(),
		Raw:           strings.Join(slot.Raw[:], frame.Delimiter),
	}
}

func nullInt(v frame.Value) sql.NullInt64 {
	return sql.NullInt64{Int64: v.Int, Valid: v.Numeric}
}
