package feedclient

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
	"github.com/NotCoffee418/alc_charger_logger/pkg/frame/frametest"
	"github.com/NotCoffee418/alc_charger_logger/pkg/livefeed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListenerReceivesSnapshots(t *testing.T) {
	feed := livefeed.NewLiveFeed(discardLogger(), prometheus.NewRegistry(), nil)
	srv := httptest.NewServer(feed.Handler())
	defer srv.Close()
	defer feed.Close()

	var mu sync.Mutex
	var got []*livefeed.Snapshot

	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener(strings.TrimPrefix(srv.URL, "http://"), discardLogger())
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.Run(ctx, func(s *livefeed.Snapshot) {
			mu.Lock()
			got = append(got, s)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool { return feed.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	batch, err := frame.Decode(frametest.ValidLine())
	require.NoError(t, err)
	require.NoError(t, feed.Write(batch, time.Unix(1700000000, 0)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Len(t, got[0].Slots, frame.SlotCount)
	mu.Unlock()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestListenerGivesUp(t *testing.T) {
	// Grab a free port and close it so nothing listens there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	l := NewListener(addr, discardLogger())
	l.MaxRetries = 3
	l.BaseRetryDelay = time.Millisecond
	l.MaxRetryDelay = 5 * time.Millisecond

	err = l.Run(context.Background(), func(*livefeed.Snapshot) {})
	assert.ErrorIs(t, err, ErrGaveUp)
}

func TestListenerStopsWhileWaitingToRetry(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	l := NewListener(addr, discardLogger())
	l.BaseRetryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.NoError(t, l.Run(ctx, func(*livefeed.Snapshot) {}))
}
