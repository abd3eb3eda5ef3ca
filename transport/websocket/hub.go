package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log15 "github.com/inconshreveable/log15/v3"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Per-client outbound queue size.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Envelope is the JSON frame exchanged with clients in both directions
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is an outbound envelope before serialization
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// MessageHandler dispatches inbound envelopes and connection teardown.
// The gateway implements it.
type MessageHandler interface {
	Handle(ctx context.Context, c *Client, env Envelope)
	Disconnected(c *Client)
}

// Client represents one WebSocket connection and the identity it has
// established so far. UserID, Username, and RoomID are written only from
// the client's own read pump.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// mu orders Send against close: the hub drops slow clients from its
	// own goroutine while handlers keep replying from the read pump.
	mu     sync.Mutex
	closed bool

	UserID   string
	Username string
	RoomID   string
}

// subscription moves a client into or out of a room's client set
type subscription struct {
	client *Client
	roomID string
}

// roomMessage is a broadcast targeted at one room's clients
type roomMessage struct {
	roomID  string
	data    []byte
	exclude *Client
}

// Hub maintains the set of active clients grouped by room and fans
// broadcasts out to them.
type Hub struct {
	rooms   map[string]map[*Client]bool
	clients map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan *roomMessage

	handler MessageHandler
	log     log15.Logger
}

// NewHub creates a hub that dispatches inbound envelopes to handler
func NewHub(handler MessageHandler) *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]bool),
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		broadcast:   make(chan *roomMessage, 16),
		handler:     handler,
		log:         log15.New("component", "ws-hub"),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			h.dropClient(client)

		case sub := <-h.subscribe:
			if h.rooms[sub.roomID] == nil {
				h.rooms[sub.roomID] = make(map[*Client]bool)
			}
			h.rooms[sub.roomID][sub.client] = true

		case sub := <-h.unsubscribe:
			h.removeFromRoom(sub.client, sub.roomID)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection and starts
// the client's pumps. Identity is established afterwards through
// REGISTER_USER / LOGIN_USER envelopes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastToRoom sends an event to every client in a room. A non-nil
// exclude client is skipped, which covers "notify the opponent only".
func (h *Hub) BroadcastToRoom(roomID string, event Event, exclude *Client) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal broadcast", "type", event.Type, "err", err)
		return
	}
	h.broadcast <- &roomMessage{roomID: roomID, data: data, exclude: exclude}
}

// JoinRoom adds a client to a room's broadcast set
func (h *Hub) JoinRoom(c *Client, roomID string) {
	h.subscribe <- subscription{client: c, roomID: roomID}
}

// LeaveRoom removes a client from a room's broadcast set
func (h *Hub) LeaveRoom(c *Client, roomID string) {
	h.unsubscribe <- subscription{client: c, roomID: roomID}
}

// deliver fans a room message out, dropping clients whose queue is full
func (h *Hub) deliver(msg *roomMessage) {
	clients, ok := h.rooms[msg.roomID]
	if !ok {
		return
	}
	for client := range clients {
		if client == msg.exclude {
			continue
		}
		select {
		case client.send <- msg.data:
		default:
			h.dropClient(client)
		}
	}
}

// dropClient removes a client from all bookkeeping and closes its queue
func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for roomID := range h.rooms {
		h.removeFromRoom(client, roomID)
	}
	client.close()
	h.log.Debug("client disconnected", "user", client.UserID, "clients", len(h.clients))
}

// removeFromRoom deletes a client from one room set, pruning empty sets
func (h *Hub) removeFromRoom(client *Client, roomID string) {
	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
}

// close marks the client dead and closes its outbound queue. Only the
// hub calls this; Send synchronizes on mu so a late reply is discarded
// instead of hitting the closed channel.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Send queues an event to this client, dropping it if the queue is full
// or the client has already been dropped.
func (c *Client) Send(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		c.hub.log.Error("failed to marshal event", "type", event.Type, "err", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// SendError reports a failure to this client only
func (c *Client) SendError(reason string) {
	c.Send(Event{Type: "ERROR", Payload: map[string]string{"error": reason}})
}

// BroadcastToRoom relays a broadcast request through the client's hub
func (c *Client) BroadcastToRoom(roomID string, event Event, exclude *Client) {
	c.hub.BroadcastToRoom(roomID, event, exclude)
}

// readPump pumps envelopes from the WebSocket connection to the handler
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		c.hub.handler.Disconnected(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read error", "err", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.SendError("Invalid message format")
			continue
		}

		c.hub.handler.Handle(context.Background(), c, env)
	}
}

// writePump pumps queued messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
