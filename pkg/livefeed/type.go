package livefeed

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Snapshot is the JSON view of the last dispatched batch.
type Snapshot struct {
	Timestamp string         `json:"timestamp"`
	Slots     []SlotSnapshot `json:"slots"`
}

type SlotSnapshot struct {
	Slot              string         `json:"slot"`
	StatusDescription string         `json:"status_description"`
	Fields            map[string]any `json:"fields"`
}

func (s *Snapshot) ToJsonBytes() []byte {
	data, _ := json.Marshal(s)
	return data
}

func SnapshotFromJsonBytes(data []byte) *Snapshot {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}

// gorilla connections allow one writer at a time
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}
