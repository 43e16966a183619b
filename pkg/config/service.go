package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultSerialDevice = "/dev/ttyUSB0"
	DefaultBaudrate     = 19200
	DefaultInterval     = 5
)

// Default returns the settings used when no config file exists.
// No optional sinks are enabled.
func Default() *ChargerLoggerConfig {
	return &ChargerLoggerConfig{
		SerialDevice: DefaultSerialDevice,
		Baudrate:     DefaultBaudrate,
		Interval:     DefaultInterval,
	}
}

// LoadChargerLoggerConfig reads the TOML file at configPath.
// A missing file yields the defaults without error. An unreadable or invalid
// file yields the defaults together with the error so the caller can warn and carry on.
func LoadChargerLoggerConfig(configPath string) (*ChargerLoggerConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	cfg := Default()
	md, err := toml.DecodeFile(configPath, cfg)
	if err != nil {
		return Default(), fmt.Errorf("failed to load %s: %w", configPath, err)
	}
	// Certificate checks stay on unless verify_ssl is explicitly set
	if cfg.InfluxDB != nil && !md.IsDefined("influxdb", "verify_ssl") {
		cfg.InfluxDB.VerifyTLS = true
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

// WriteDefaultConfig writes an example config with every sink table filled in.
func WriteDefaultConfig(configPath string, historyDbPath string) error {
	cfg := Default()
	cfg.InfluxDB = &InfluxDBConfig{
		Host:      "localhost",
		Port:      8086,
		VerifyTLS: true,
		Database:  "chargers",
	}
	cfg.History = &HistoryConfig{DatabasePath: historyDbPath}
	cfg.LiveFeed = &LiveFeedConfig{ListenAddress: "0.0.0.0", ListenPort: 9040}

	cfgFile, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer cfgFile.Close()
	return toml.NewEncoder(cfgFile).Encode(cfg)
}

func (c *ChargerLoggerConfig) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %d", c.Interval))
	}
	if c.Baudrate == 0 {
		errs = append(errs, errors.New("baudrate must be set"))
	}
	if c.InfluxDB != nil && (c.InfluxDB.Host == "" || c.InfluxDB.Database == "") {
		errs = append(errs, errors.New("influxdb needs host and database"))
	}
	if c.LiveFeed != nil && c.LiveFeed.ListenPort <= 0 {
		errs = append(errs, errors.New("live_feed needs listen_port"))
	}
	return errors.Join(errs...)
}

func (c *ChargerLoggerConfig) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}
