// Package ws is the realtime channel: one websocket per browser tab, bound
// to the user id of the session that opened it.
package ws

import (
	"context"
	"log"

	"github.com/ptitsvieux/backend/internal/model"
)

// delivery is a payload addressed either to every channel of some users or
// to a single client.
type delivery struct {
	userIDs []uint64
	client  *Client
	payload []byte
}

// Hub owns the user id -> channels map.  Only Run touches it.
type Hub struct {
	// Registered clients, by user id.  A user may have several tabs open.
	clients map[uint64]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Outbound payloads.
	deliver chan delivery

	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = map[uint64]map[*Client]bool{}
			return
		case c := <-h.register:
			set := h.clients[c.userID]
			if set == nil {
				set = make(map[*Client]bool)
				h.clients[c.userID] = set
			}
			set[c] = true
		case c := <-h.unregister:
			h.remove(c)
		case d := <-h.deliver:
			if d.client != nil {
				if h.clients[d.client.userID][d.client] {
					h.push(d.client, d.payload)
				}
				continue
			}
			for _, id := range unique(d.userIDs) {
				for c := range h.clients[id] {
					h.push(c, d.payload)
				}
			}
		}
	}
}

// push hands payload to c without blocking the hub.  A client whose buffer
// is full is dropped.
func (h *Hub) push(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		log.Printf("ws: dropping slow client of user %d", c.userID)
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

// SendToUsers queues payload for every open channel of the given users.
// Users without a channel are skipped; nothing is kept for later.
func (h *Hub) SendToUsers(payload []byte, userIDs ...uint64) {
	h.enqueue(delivery{userIDs: userIDs, payload: payload})
}

// DeliverMessage pushes a receive_message event to every channel of the
// sender and the recipient of m.
func (h *Hub) DeliverMessage(m model.Message) {
	h.SendToUsers(encode(EventReceiveMessage, receiveMessageData{Message: m}), m.SenderID, m.RecipientID)
}

// sendTo queues payload for one client only.
func (h *Hub) sendTo(c *Client, payload []byte) {
	h.enqueue(delivery{client: c, payload: payload})
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.deliver <- d:
	case <-h.done:
	}
}

// join registers c.  It reports false when the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func unique(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
