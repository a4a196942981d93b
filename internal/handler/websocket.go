package handler

import (
	"net/http"

	"github.com/cleberrangel/process-cost-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler handles WebSocket-related HTTP requests
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// HandleConnection abre uma sessão de recálculo ao vivo
// GET /api/v1/estimates/live
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	h.hub.ServeWS(c)
}

// GetConnectionStats returns WebSocket session statistics
// GET /api/v1/estimates/live/stats
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": map[string]interface{}{
			"total_connections": h.hub.GetConnectionCount(),
			"max_connections":   h.hub.MaxConnections(),
			"sessions":          h.hub.GetSessions(),
		},
	})
}
