// realtime/hub.go
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Envelope is the frame sent to clients.
type Envelope struct {
	Event     string `json:"event"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

type outbound struct {
	room string // empty = global broadcast
	data []byte
}

// Hub fans events out to connected websocket clients. A single
// goroutine owns the client and room sets, so per-connection delivery
// order matches emission order.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	join       chan joinReq
	done       chan struct{}
	stopOnce   sync.Once
	log        *zap.Logger
}

type joinReq struct {
	client *Client
	room   string
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinReq),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns all hub state. Start it once, in its own goroutine; it
// exits when Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				close(c.send)
			}
			h.clients = make(map[*Client]bool)
			h.rooms = make(map[string]map[*Client]bool)
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.Info("client connected", zap.String("remote", c.remote))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				for room := range c.rooms {
					h.leaveRoom(c, room)
				}
				close(c.send)
				h.log.Info("client disconnected", zap.String("remote", c.remote))
			}
		case req := <-h.join:
			if h.rooms[req.room] == nil {
				h.rooms[req.room] = make(map[*Client]bool)
			}
			h.rooms[req.room][req.client] = true
			req.client.rooms[req.room] = true
		case msg := <-h.broadcast:
			if msg.room == "" {
				for c := range h.clients {
					h.deliver(c, msg.data)
				}
			} else {
				for c := range h.rooms[msg.room] {
					h.deliver(c, msg.data)
				}
			}
		}
	}
}

// Stop ends the Run loop and closes every client send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// deliver never blocks the hub loop: a client that cannot keep up is
// dropped rather than stalling everyone else.
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		delete(h.clients, c)
		for room := range c.rooms {
			h.leaveRoom(c, room)
		}
		close(c.send)
		h.log.Warn("client send buffer full, dropping", zap.String("remote", c.remote))
	}
}

func (h *Hub) leaveRoom(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) Broadcast(event string, payload any) {
	h.send("", event, payload)
}

func (h *Hub) BroadcastRoom(room, event string, payload any) {
	h.send(room, event, payload)
}

func (h *Hub) send(room, event string, payload any) {
	b, err := json.Marshal(Envelope{
		Event:     event,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.log.Error("marshal event", zap.String("event", event), zap.Error(err))
		return
	}
	h.broadcast <- outbound{room: room, data: b}
}
