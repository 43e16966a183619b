// Charger logger polls an ALC 1800 PC over its serial port and fans the
// decoded slot readings out to the configured sinks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/NotCoffee418/alc_charger_logger/pkg/chargerdb"
	"github.com/NotCoffee418/alc_charger_logger/pkg/config"
	"github.com/NotCoffee418/alc_charger_logger/pkg/gate"
	"github.com/NotCoffee418/alc_charger_logger/pkg/livefeed"
	"github.com/NotCoffee418/alc_charger_logger/pkg/logging"
	"github.com/NotCoffee418/alc_charger_logger/pkg/metrics"
	"github.com/NotCoffee418/alc_charger_logger/pkg/pathing"
	"github.com/NotCoffee418/alc_charger_logger/pkg/poller"
	"github.com/NotCoffee418/alc_charger_logger/pkg/port_reader"
	"github.com/NotCoffee418/alc_charger_logger/pkg/sink"
	"github.com/NotCoffee418/alc_charger_logger/pkg/timeseries"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// countFlag counts repeated -v flags.
type countFlag int

func (c *countFlag) String() string { return strconv.Itoa(int(*c)) }

func (c *countFlag) Set(s string) error {
	if s == "true" {
		*c++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*c = countFlag(n)
	return nil
}

func (c *countFlag) IsBoolFlag() bool { return true }

type options struct {
	configPath  string
	quiet       bool
	logFile     string
	interval    int
	verbose     countFlag
	writeConfig bool
}

// newFlagSet binds the command line flags to opts.
func newFlagSet(name string, handling flag.ErrorHandling, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, handling)
	fs.StringVar(&opts.configPath, "c", pathing.GetConfigPath(), "config file")
	fs.BoolVar(&opts.quiet, "q", false, "don't print status messages to stdout")
	fs.StringVar(&opts.logFile, "l", "", "append raw lines to `LOGFILE`")
	fs.IntVar(&opts.interval, "n", config.DefaultInterval, "interval in seconds to write out data")
	fs.Var(&opts.verbose, "v", "show more verbose output, repeat for debug output")
	fs.BoolVar(&opts.writeConfig, "write-config", false, "write an example config to the -c path and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [options] [port]\n\nport defaults to the serial_device from the config, e.g. /dev/ttyUSB0\n\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func main() {
	var opts options
	fs := newFlagSet(os.Args[0], flag.ExitOnError, &opts)
	fs.Parse(os.Args[1:])

	if opts.writeConfig {
		if err := config.WriteDefaultConfig(opts.configPath, pathing.GetHistoryDbPath()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", opts.configPath)
		return
	}

	cfg, cfgErr := config.LoadChargerLoggerConfig(opts.configPath)
	applyFlags(cfg, fs, &opts)

	logger := logging.NewLogger(os.Stderr, cfg.Verbosity, cfg.Quiet)
	if cfgErr != nil {
		logger.Warn("could not load config, running without optional sinks", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("charger logger stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cfg *config.ChargerLoggerConfig, fs *flag.FlagSet, opts *options) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "q":
			cfg.Quiet = opts.quiet
		case "l":
			cfg.LogFile = opts.logFile
		case "n":
			cfg.Interval = opts.interval
		case "v":
			cfg.Verbosity = int(opts.verbose)
		}
	})
	if fs.NArg() > 0 {
		cfg.SerialDevice = fs.Arg(0)
	}
}

func run(ctx context.Context, cfg *config.ChargerLoggerConfig, logger *slog.Logger) error {
	g, err := gate.NewRateGate(cfg.IntervalDuration())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	router, feed := buildRouter(cfg, logger, collector, reg)
	defer func() {
		if err := router.Close(); err != nil {
			logger.Warn("failed to close sinks", "error", err)
		}
	}()
	logger.Info("sinks configured", "sinks", router.Names(), "interval", g.Interval())

	port := port_reader.NewChargerPort(cfg.SerialDevice, cfg.Baudrate, logger)
	if err := port.Connect(); err != nil {
		return err
	}
	defer port.Close()

	if feed != nil {
		addr := fmt.Sprintf("%s:%d", cfg.LiveFeed.ListenAddress, cfg.LiveFeed.ListenPort)
		go func() {
			if err := livefeed.Serve(ctx, addr, feed.Handler(), logger); err != nil {
				logger.Error("live feed stopped", "error", err)
			}
		}()
	}

	return poller.NewPoller(port, g, router, collector, logger).Run(ctx)
}

// buildRouter creates every configured sink. A sink that cannot be created
// is logged and left out; the others still run.
func buildRouter(cfg *config.ChargerLoggerConfig, logger *slog.Logger, collector *metrics.Collector, reg *prometheus.Registry) (*sink.Router, *livefeed.LiveFeed) {
	router := sink.NewRouter(logger, collector)

	if !cfg.Quiet {
		router.Add(sink.NewConsoleSink(os.Stdout))
	}

	if cfg.LogFile != "" {
		fileSink, err := sink.NewRawFileSink(cfg.LogFile)
		if err != nil {
			logger.Error("raw log disabled", "error", err)
		} else {
			router.Add(fileSink)
		}
	}

	if cfg.InfluxDB != nil {
		influx, err := timeseries.NewInfluxSink(cfg.InfluxDB, logger, collector.DuplicateField)
		if err != nil {
			logger.Error("influxdb disabled", "error", err)
		} else {
			router.Add(influx)
		}
	}

	if cfg.History != nil && cfg.History.DatabasePath != "" {
		if err := pathing.EnsureDir(filepath.Dir(cfg.History.DatabasePath)); err != nil {
			logger.Error("history disabled", "error", err)
		} else if db, err := chargerdb.Open(cfg.History.DatabasePath, logger); err != nil {
			logger.Error("history disabled", "error", err)
		} else {
			router.Add(db)
		}
	}

	var feed *livefeed.LiveFeed
	if cfg.LiveFeed != nil {
		feed = livefeed.NewLiveFeed(logger, reg, collector.DuplicateField)
		router.Add(feed)
	}

	return router, feed
}
