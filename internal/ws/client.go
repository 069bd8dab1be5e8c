package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// inboundFrame is the envelope clients send over the socket. Type selects the
// action; the remaining fields are per-action.
type inboundFrame struct {
	Type       string `json:"type"`
	ContractID string `json:"contractId"`
	Text       string `json:"text"`
}

// errorFrame is pushed to a single client when one of its frames is rejected.
type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Client is one authenticated websocket connection. The identity is fixed at
// upgrade time from the verified token; nothing in the inbound frames can
// change who the messages are attributed to.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	userID   string
	userName string

	contracts ContractGate
	messages  MessageSender

	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	rooms  map[string]bool
	closed bool
}

func newClient(h *Hub, conn *websocket.Conn, userID, userName string, contracts ContractGate, messages MessageSender) *Client {
	return &Client{
		hub:       h,
		conn:      conn,
		userID:    userID,
		userName:  userName,
		contracts: contracts,
		messages:  messages,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
		rooms:     make(map[string]bool),
	}
}

// readPump consumes inbound frames until the connection errors out. It runs
// on the goroutine that owns all reads from the connection.
func (c *Client) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.reject("malformed frame")
			continue
		}
		c.handle(frame)
	}
}

// handle dispatches one inbound frame. Frames never block the read loop for
// long: joins do a single lookup, sends reuse the REST send path.
func (c *Client) handle(frame inboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch frame.Type {
	case "join_contract":
		contract, err := c.contracts.Get(ctx, frame.ContractID)
		if err != nil {
			c.reject("contract not found")
			return
		}
		if !contract.IsParticipant(c.userID) {
			c.reject("not a participant")
			return
		}
		c.mu.Lock()
		already := c.rooms[contract.ID]
		c.rooms[contract.ID] = true
		c.mu.Unlock()
		if !already {
			c.hub.Join(contract.ID, c)
		}

	case "send_message":
		if strings.TrimSpace(frame.Text) == "" {
			c.reject("empty message")
			return
		}
		// Persist first; the service broadcasts to the room (including this
		// client) only after the row is committed.
		if _, err := c.messages.Send(ctx, c.userID, frame.ContractID, frame.Text); err != nil {
			c.reject(err.Error())
			return
		}

	default:
		c.reject("unknown frame type")
	}
}

// reject queues an error frame to this client only.
func (c *Client) reject(msg string) {
	b, err := json.Marshal(errorFrame{Type: "error", Message: msg})
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// writePump owns all writes to the connection: queued broadcasts plus
// keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close tears the client down exactly once: leaves every joined room, signals
// writePump through done and closes the underlying connection. The send
// channel is never closed; a Broadcast racing a disconnect queues into a
// buffer nobody drains, which the GC reclaims with the client.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	rooms := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		rooms = append(rooms, id)
	}
	c.mu.Unlock()

	for _, id := range rooms {
		c.hub.Leave(id, c)
	}
	close(c.done)
	_ = c.conn.Close()
	wsConnections.Dec()
	log.Debug().Str("user_id", c.userID).Msg("ws client closed")
}
