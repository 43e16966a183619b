// Package feedclient follows a charger logger's live feed over websocket.
package feedclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/livefeed"
	"github.com/gorilla/websocket"
)

const (
	pingPeriod = 30 * time.Second
	pongWait   = 2 * pingPeriod
)

var ErrGaveUp = errors.New("max reconnect attempts reached")

type Listener struct {
	Host           string
	MaxRetries     int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration

	logger *slog.Logger
}

func NewListener(host string, logger *slog.Logger) *Listener {
	return &Listener{
		Host:           host,
		MaxRetries:     10,
		BaseRetryDelay: 2 * time.Second,
		MaxRetryDelay:  60 * time.Second,
		logger:         logger,
	}
}

// Run keeps a websocket open to the feed and calls handle for every snapshot.
// It reconnects with exponential backoff and returns nil once ctx is done.
func (l *Listener) Run(ctx context.Context, handle func(*livefeed.Snapshot)) error {
	u := url.URL{Scheme: "ws", Host: l.Host, Path: "/ws"}
	retryCount := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		if retryCount > 0 {
			retryDelay := min(time.Duration(1<<(retryCount-1))*l.BaseRetryDelay, l.MaxRetryDelay)
			l.logger.Info("retrying connection", "delay", retryDelay, "attempt", retryCount+1, "max", l.MaxRetries)
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil
			}
		}

		l.logger.Info("connecting", "url", u.String())
		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		c, _, err := dialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			retryCount++
			l.logger.Warn("connection failed", "error", err)
			if retryCount >= l.MaxRetries {
				return fmt.Errorf("%w (%d): %w", ErrGaveUp, l.MaxRetries, err)
			}
			continue
		}

		l.logger.Info("connected, accepting charger snapshots")
		retryCount = 0

		broken := l.handleConnection(ctx, c, handle)
		c.Close()
		if !broken {
			return nil
		}
		l.logger.Info("connection lost, will retry")
		retryCount++
	}
}

// handleConnection reports true when the connection broke and false on a clean shutdown.
func (l *Listener) handleConnection(ctx context.Context, c *websocket.Conn, handle func(*livefeed.Snapshot)) bool {
	done := make(chan struct{})

	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(done)
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					l.logger.Warn("websocket error", "error", err)
				} else {
					l.logger.Info("connection closed", "error", err)
				}
				return
			}
			c.SetReadDeadline(time.Now().Add(pongWait))

			if messageType != websocket.TextMessage {
				l.logger.Debug("ignoring message", "type", messageType)
				continue
			}
			if snap := livefeed.SnapshotFromJsonBytes(message); snap != nil {
				handle(snap)
			} else {
				l.logger.Warn("failed to parse snapshot", "data", string(message))
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return true
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				l.logger.Warn("failed to send ping", "error", err)
			}
		case <-ctx.Done():
			err := c.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			if err != nil {
				l.logger.Debug("error sending close message", "error", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return false
		}
	}
}
