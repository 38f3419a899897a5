package ws

import (
	"encoding/json"
	"sync"

	"favr_backend/internal/feed"
	"favr_backend/internal/logger"

	"github.com/gorilla/websocket"
)

// IncomingMessage is the client -> server frame: topic subscription control.
type IncomingMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Topic  string `json:"topic"`
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan feed.Event

	Manager *Manager

	mu     sync.RWMutex
	topics map[string]bool
}

func (c *Client) subscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

func (c *Client) subscribe(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic] = true
}

func (c *Client) unsubscribe(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics, topic)
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.Warn("feed client sent malformed frame", "user_id", c.UserID, "error", err)
			continue
		}

		// Topic payloads carry only resource ids, so subscription needs no
		// further authorization.
		switch msg.Action {
		case "subscribe":
			c.subscribe(msg.Topic)
		case "unsubscribe":
			c.unsubscribe(msg.Topic)
		default:
			logger.Warn("feed client sent unknown action", "user_id", c.UserID, "action", msg.Action)
		}
	}
}

func (c *Client) writePump() {
	for event := range c.Send {
		if err := c.Conn.WriteJSON(event); err != nil {
			logger.Warn("feed write failed", "user_id", c.UserID, "error", err)
			break
		}
	}
}
