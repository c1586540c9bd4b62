package ws

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Origins are checked by middleware before the upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one spectator connection watching a match.
type Client struct {
	conn    *websocket.Conn
	id      string
	matchID string
	send    chan []byte
	done    chan struct{}
	once    sync.Once
}

func newClient(conn *websocket.Conn, id, matchID string) *Client {
	return &Client{
		conn:    conn,
		id:      id,
		matchID: matchID,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

// close releases the pumps and the replay goroutine. Safe to call twice.
func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// enqueue hands data to the write pump, giving up when the client is gone.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	}
}

// Hub tracks which clients watch which match.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Run serves register and unregister requests until ctx ends. Once it
// returns, join and leave no longer wait for it.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			room, exists := h.rooms[client.matchID]
			if !exists {
				room = make(map[*Client]struct{})
				h.rooms[client.matchID] = room
			}
			room[client] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] Spectator %s joined match %s (room_size=%d)", client.id, client.matchID, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, exists := h.rooms[client.matchID]; exists {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, client.matchID)
				}
			}
			h.mu.Unlock()
			client.close()
			log.Printf("[WS] Spectator %s left match %s", client.id, client.matchID)
		}
	}
}

// join registers c with the hub. It reports false, closing c, when the hub
// has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		c.close()
		return false
	}
}

// leave unregisters c, or just closes it when the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
		c.close()
	}
}

// RoomSize returns how many clients watch matchID.
func (h *Hub) RoomSize(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// Spectators returns how many clients are connected across all matches.
func (h *Hub) Spectators() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// BroadcastToMatch sends a message to every client watching matchID.
func (h *Hub) BroadcastToMatch(matchID string, message Message) {
	data, err := msgpack.Marshal(&message)
	if err != nil {
		log.Printf("[WS] Error encoding %s message: %v", message.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[matchID] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for spectator %s in match %s, dropping %s", client.id, matchID, message.Type)
		}
	}
}

// writePump writes queued messages to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				log.Printf("[WS] Write error for spectator %s: %v", c.id, err)
				c.close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for spectator %s: %v", c.id, err)
				c.close()
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed. Spectators
// send nothing the server acts on.
func (c *Client) readPump(h *Hub) {
	defer h.leave(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for spectator %s: %v", c.id, err)
			}
			return
		}
	}
}
