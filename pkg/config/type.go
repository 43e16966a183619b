package config

type ChargerLoggerConfig struct {
	SerialDevice string `toml:"serial_device"`
	Baudrate     uint   `toml:"baudrate"`
	// Seconds between dispatched batches
	Interval int `toml:"interval"`
	// Raw line log, disabled when empty
	LogFile   string `toml:"log_file"`
	Verbosity int    `toml:"verbosity"`
	// Disables the console table
	Quiet bool `toml:"quiet"`

	// Optional sinks. A missing table disables the sink.
	InfluxDB *InfluxDBConfig `toml:"influxdb,omitempty"`
	History  *HistoryConfig  `toml:"history,omitempty"`
	LiveFeed *LiveFeedConfig `toml:"live_feed,omitempty"`
}

type InfluxDBConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	TLS       bool   `toml:"ssl"`
	VerifyTLS bool   `toml:"verify_ssl"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Database  string `toml:"database"`
}

type HistoryConfig struct {
	DatabasePath string `toml:"database_path"`
}

type LiveFeedConfig struct {
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
}
