// Feed monitor follows a running charger logger's live feed and prints
// every snapshot as one JSON line. Depends on the logger's live_feed being enabled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NotCoffee418/alc_charger_logger/pkg/feedclient"
	"github.com/NotCoffee418/alc_charger_logger/pkg/livefeed"
	"github.com/NotCoffee418/alc_charger_logger/pkg/logging"
)

func main() {
	logger := logging.NewLogger(os.Stderr, 0, false)

	// Set the host:port from env var CHARGER_FEED_HOST
	host := os.Getenv("CHARGER_FEED_HOST")
	if host == "" {
		host = "localhost:9040"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := feedclient.NewListener(host, logger).Run(ctx, handleSnapshot)
	if err != nil {
		logger.Error("feed monitor stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func handleSnapshot(snap *livefeed.Snapshot) {
	fmt.Println(string(snap.ToJsonBytes()))
}
