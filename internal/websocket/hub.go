package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TallyUpdate carries a serialized vote-tally payload to every client
// watching a thread.
type TallyUpdate struct {
	ThreadID uuid.UUID
	Payload  []byte
}

// Hub maintains the set of active clients keyed by the thread they watch and
// fans vote-tally updates out to them.
type Hub struct {
	// Registered clients. Maps thread ID to the set of watching connections.
	Watchers map[uuid.UUID]map[*Client]bool

	// Channel for publishing tally updates to a thread's watchers.
	Tallies chan *TallyUpdate

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Mutex to protect concurrent access to the watchers map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Tallies:    make(chan *TallyUpdate, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Watchers:   make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Watchers[client.ThreadID]; !ok {
				h.Watchers[client.ThreadID] = make(map[*Client]bool)
			}
			h.Watchers[client.ThreadID][client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client registered for thread %s", client.ThreadID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if threadClients, ok := h.Watchers[client.ThreadID]; ok {
				if _, clientOk := threadClients[client]; clientOk {
					delete(threadClients, client)
					close(client.Send)
					if len(threadClients) == 0 {
						delete(h.Watchers, client.ThreadID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client unregistered for thread %s", client.ThreadID)

		case update := <-h.Tallies:
			h.mu.RLock()
			for client := range h.Watchers[update.ThreadID] {
				select {
				case client.Send <- update.Payload:
				default:
					log.Printf("Tally send buffer full for a watcher of thread %s", update.ThreadID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishTally queues a tally update for the watchers of a thread. Callers
// never block on slow consumers; an update is dropped if the hub is saturated.
func (h *Hub) PublishTally(threadID uuid.UUID, payload []byte) {
	update := &TallyUpdate{
		ThreadID: threadID,
		Payload:  payload,
	}
	select {
	case h.Tallies <- update:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing tally update for thread %s. Hub might be busy or blocked.", threadID)
	}
}
