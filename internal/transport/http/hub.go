package http

import (
	"sync"

	"party-trivia-service/internal/app"
)

// Hub tracks connected clients and delivers orchestrator events to them.
// It implements app.Notifier; the orchestrator decides the audience, the hub
// only routes.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan app.Event
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]chan app.Event)}
}

// Send queues an event for one connection. Unknown connections are dropped
// silently; a room broadcast must not fail because one member already left.
func (h *Hub) Send(connID string, event app.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ch, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case ch <- event:
	default:
		// Drop the oldest queued event so a slow client cannot stall the room.
		select {
		case <-ch:
		default:
		}
		ch <- event
	}
}

func (h *Hub) register(connID string) chan app.Event {
	ch := make(chan app.Event, 16)
	h.mu.Lock()
	h.clients[connID] = ch
	h.mu.Unlock()
	return ch
}

func (h *Hub) unregister(connID string) {
	h.mu.Lock()
	if ch, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		close(ch)
	}
	h.mu.Unlock()
}
