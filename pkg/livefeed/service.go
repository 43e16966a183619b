// Package livefeed serves the latest charger batch over HTTP and pushes
// every dispatched batch to websocket clients.
package livefeed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
	"github.com/NotCoffee418/alc_charger_logger/pkg/measurement"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const writeWait = 5 * time.Second

type LiveFeed struct {
	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	onDuplicate func()
	upgrader    websocket.Upgrader

	latest   *Snapshot
	latestMu sync.RWMutex

	clients   map[*websocket.Conn]*wsClient
	clientsMu sync.RWMutex
}

func NewLiveFeed(logger *slog.Logger, gatherer prometheus.Gatherer, onDuplicate func()) *LiveFeed {
	return &LiveFeed{
		logger:      logger,
		gatherer:    gatherer,
		onDuplicate: onDuplicate,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Read-only feed on the local network
			},
		},
		clients: make(map[*websocket.Conn]*wsClient),
	}
}

func (f *LiveFeed) Name() string { return "livefeed" }

// Write stores batch as the latest snapshot and pushes it to all clients.
// Clients that fail to receive are dropped; that is not a sink failure.
func (f *LiveFeed) Write(batch frame.Batch, at time.Time) error {
	snap := NewSnapshot(batch, at, f.logger, f.onDuplicate)

	f.latestMu.Lock()
	f.latest = snap
	f.latestMu.Unlock()

	f.broadcast(snap.ToJsonBytes())
	return nil
}

func (f *LiveFeed) Latest() *Snapshot {
	f.latestMu.RLock()
	defer f.latestMu.RUnlock()
	return f.latest
}

func NewSnapshot(batch frame.Batch, at time.Time, logger *slog.Logger, onDuplicate func()) *Snapshot {
	snap := &Snapshot{
		Timestamp: at.Format(time.RFC3339),
		Slots:     make([]SlotSnapshot, 0, len(batch.Slots)),
	}
	for _, slot := range batch.Slots {
		m := measurement.FromSlot(slot, at, logger, onDuplicate)
		snap.Slots = append(snap.Slots, SlotSnapshot{
			Slot:              slot.ID(),
			StatusDescription: slot.Status().Description(),
			Fields:            m.Fields(),
		})
	}
	return snap
}

// Handler serves /, /latest, /ws and /metrics.
func (f *LiveFeed) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]string{
			"message": "ALC Charger Logger",
			"status":  "running",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		snap := f.Latest()
		w.Header().Set("Content-Type", "application/json")
		if snap == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "No readings available yet",
			})
			return
		}
		w.Write(snap.ToJsonBytes())
	})

	mux.HandleFunc("/ws", f.serveWebSocket)
	mux.Handle("/metrics", promhttp.HandlerFor(f.gatherer, promhttp.HandlerOpts{}))

	return mux
}

func (f *LiveFeed) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade error", "error", err)
		return
	}

	client := f.addClient(conn)

	// Send current snapshot immediately if available
	if snap := f.Latest(); snap != nil {
		if err := client.send(snap.ToJsonBytes()); err != nil {
			f.removeClient(conn)
			return
		}
	}

	// Keep connection alive until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.removeClient(conn)
			return
		}
	}
}

func (f *LiveFeed) ClientCount() int {
	f.clientsMu.RLock()
	defer f.clientsMu.RUnlock()
	return len(f.clients)
}

// Close disconnects every websocket client.
func (f *LiveFeed) Close() error {
	f.clientsMu.Lock()
	clients := f.clients
	f.clients = make(map[*websocket.Conn]*wsClient)
	f.clientsMu.Unlock()

	var errs []error
	for conn := range clients {
		errs = append(errs, conn.Close())
	}
	return errors.Join(errs...)
}

func (f *LiveFeed) broadcast(data []byte) {
	f.clientsMu.RLock()
	clients := make([]*wsClient, 0, len(f.clients))
	for _, c := range f.clients {
		clients = append(clients, c)
	}
	f.clientsMu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			f.logger.Debug("dropping websocket client", "error", err)
			f.removeClient(c.conn)
		}
	}
}

func (f *LiveFeed) addClient(conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn}
	f.clientsMu.Lock()
	f.clients[conn] = c
	f.clientsMu.Unlock()
	return c
}

func (f *LiveFeed) removeClient(conn *websocket.Conn) {
	f.clientsMu.Lock()
	delete(f.clients, conn)
	f.clientsMu.Unlock()
	conn.Close()
}

func (c *wsClient) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Serve runs the HTTP server on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting live feed", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
