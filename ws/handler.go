package ws

import (
	"net/http"

	"favr_backend/internal/feed"
	"favr_backend/internal/logger"
	"favr_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin checks are handled at the edge
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	Manager *Manager
}

func NewWebSocketHandler(manager *Manager) *WebSocketHandler {
	return &WebSocketHandler{
		Manager: manager,
	}
}

// ServeWS upgrades the connection and attaches the client to the change feed.
// Runs behind the auth middleware; every connection belongs to a known user.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan feed.Event, 64),
		Manager: h.Manager,
		topics:  map[string]bool{feed.TopicTasks: true}, // everyone follows the board
	}

	h.Manager.register <- client

	go client.readPump()
	go client.writePump()
}
