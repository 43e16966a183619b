// Package timeseries writes charger batches to InfluxDB.
package timeseries

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/config"
	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
	"github.com/NotCoffee418/alc_charger_logger/pkg/measurement"
	client "github.com/influxdata/influxdb1-client/v2"
)

var ErrNotConfigured = errors.New("influxdb not configured")

const writeTimeout = 10 * time.Second

// PointWriter is the part of the InfluxDB client the sink needs.
type PointWriter interface {
	Write(bp client.BatchPoints) error
	Close() error
}

type InfluxSink struct {
	writer      PointWriter
	database    string
	logger      *slog.Logger
	onDuplicate func()
}

// NewInfluxSink opens an HTTP client for cfg. No request is made until the first write.
func NewInfluxSink(cfg *config.InfluxDBConfig, logger *slog.Logger, onDuplicate func()) (*InfluxSink, error) {
	if cfg == nil || cfg.Host == "" || cfg.Database == "" {
		return nil, ErrNotConfigured
	}

	scheme := "http"
	if cfg.TLS {
		scheme = "https"
	}
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:               fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
		Username:           cfg.Username,
		Password:           cfg.Password,
		InsecureSkipVerify: cfg.TLS && !cfg.VerifyTLS,
		Timeout:            writeTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create influxdb client: %w", err)
	}
	return NewInfluxSinkWithWriter(c, cfg.Database, logger, onDuplicate), nil
}

func NewInfluxSinkWithWriter(w PointWriter, database string, logger *slog.Logger, onDuplicate func()) *InfluxSink {
	return &InfluxSink{
		writer:      w,
		database:    database,
		logger:      logger,
		onDuplicate: onDuplicate,
	}
}

func (s *InfluxSink) Name() string { return "influxdb" }

// Write sends one point per slot in a single request. Slots without any
// fields are left out.
func (s *InfluxSink) Write(batch frame.Batch, at time.Time) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  s.database,
		Precision: "s",
	})
	if err != nil {
		return err
	}

	for _, slot := range batch.Slots {
		m := measurement.FromSlot(slot, at, s.logger, s.onDuplicate)
		if m.Len() == 0 {
			s.logger.Debug("skipping slot without fields", "slot", slot.ID())
			continue
		}
		pt, err := client.NewPoint(m.Name, m.Tags, m.Fields(), m.Time)
		if err != nil {
			return fmt.Errorf("failed to build point for slot %s: %w", slot.ID(), err)
		}
		bp.AddPoint(pt)
	}

	if len(bp.Points()) == 0 {
		return nil
	}

	if err := s.writer.Write(bp); err != nil {
		return fmt.Errorf("failed to write to influxdb: %w", err)
	}
	return nil
}

func (s *InfluxSink) Close() error {
	return s.writer.Close()
}
