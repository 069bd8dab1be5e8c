// Package ws provides the realtime chat transport for contracts.
//
// A single Hub tracks one room per contract. Clients join rooms over a
// websocket after proving who they are with a JWT; every persisted message is
// fanned out to the room by the message service through the Hub's Broadcast
// method. Slow consumers are disconnected rather than allowed to block the
// fan-out path.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxInboundBytes = 8 * 1024
)

var wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pact_ws_connections",
	Help: "Currently connected websocket clients.",
})

// Hub routes broadcast payloads to the clients subscribed to each contract
// room. All methods are safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// Join subscribes c to the contract's room, creating the room on first use.
func (h *Hub) Join(contractID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[contractID] == nil {
		h.rooms[contractID] = make(map[*Client]bool)
	}
	h.rooms[contractID][c] = true
}

// Leave removes c from the contract's room and drops the room once empty.
func (h *Hub) Leave(contractID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.rooms[contractID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.rooms, contractID)
		}
	}
}

// Broadcast marshals payload once and queues it to every client in the
// contract's room. A client whose send buffer is full is closed instead of
// stalling the others.
func (h *Hub) Broadcast(contractID string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("contract_id", contractID).Msg("ws broadcast marshal")
		return
	}

	h.mu.RLock()
	conns := make([]*Client, 0, len(h.rooms[contractID]))
	for c := range h.rooms[contractID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		select {
		case c.send <- b:
		default:
			go c.Close()
		}
	}
}

// RoomSize reports the number of clients currently in a contract's room.
func (h *Hub) RoomSize(contractID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[contractID])
}
