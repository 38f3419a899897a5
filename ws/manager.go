package ws

import (
	"sync"

	"favr_backend/internal/feed"
	"favr_backend/internal/logger"
)

// Manager fans committed change events out to connected clients by topic.
// Delivery is strictly best-effort: the feed only tells clients what to
// re-fetch, so a dropped event costs staleness, never correctness.
type Manager struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan feed.Event
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan feed.Event, 256),
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			total := len(m.clients)
			m.mu.Unlock()
			logger.Info("feed client registered", "user_id", client.UserID, "total", total)

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				close(client.Send)
				delete(m.clients, client)
			}
			total := len(m.clients)
			m.mu.Unlock()
			logger.Info("feed client unregistered", "user_id", client.UserID, "total", total)

		case event := <-m.events:
			m.fanOut(event)
		}
	}
}

// Publish implements feed.Publisher. Never blocks the request path: when the
// event queue is full the event is dropped.
func (m *Manager) Publish(event feed.Event) {
	select {
	case m.events <- event:
	default:
		logger.Warn("feed event dropped, queue full", "topic", event.Topic, "kind", event.Kind)
	}
}

func (m *Manager) fanOut(event feed.Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.clients {
		if !client.subscribed(event.Topic) {
			continue
		}
		select {
		case client.Send <- event:
		default:
			// Slow consumer: disconnect rather than block the fan-out.
			go func(c *Client) {
				m.unregister <- c
			}(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
