package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/cleberrangel/process-cost-api/internal/metrics"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ServeWS faz o upgrade e abre uma sessão de recálculo.
// Com o hub cheio responde 503 sem upgrade; o limite exato é aplicado no registro.
func (h *Hub) ServeWS(c *gin.Context) {
	if h.full() {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Success: false,
			Error:   "limite de conexões atingido",
			Details: "tente novamente em instantes",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("client_ip", c.ClientIP()).
			Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		conn:        conn,
		Send:        make(chan []byte, 256),
		SessionID:   uuid.New().String(),
		ClientIP:    c.ClientIP(),
		Hub:         h,
		ConnectedAt: time.Now(),
		lastPing:    time.Now(),
	}

	ctx := logger.WithTraceID(context.Background(), logger.GetTraceID(c.Request.Context()))
	logger.AuditWebSocket(ctx, logger.AuditActionWSConnect, client.SessionID, client.ClientIP, nil)

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(ctx)
}

// readPump pumps messages from the websocket connection to the hub
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump(ctx context.Context) {
	received := 0
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.conn.Close()
		logger.AuditWebSocket(ctx, logger.AuditActionWSDisconnect, c.SessionID, c.ClientIP, map[string]interface{}{
			"messages": received,
			"duration": time.Since(c.ConnectedAt).String(),
		})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error().
					Err(err).
					Str("session_id", c.SessionID).
					Msg("WebSocket connection closed unexpectedly")
			}
			break
		}

		received++
		metrics.Get().IncrementWSMessageIn()
		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// uma mensagem por frame: o cliente faz JSON.parse de cada uma
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// handleMessage recalcula a cada edição de campo recebida
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Debug().
			Err(err).
			Str("session_id", c.SessionID).
			Msg("Failed to unmarshal client message")
		c.SendMessage(TypeError, model.ErrorResponse{Error: "mensagem inválida"})
		return
	}

	switch msg.Type {
	case TypePing:
		c.SendMessage(TypePong, nil)

	case TypeEstimate:
		var req model.EstimateRequest
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				metrics.Get().IncrementEstimateRejected()
				c.SendMessage(TypeError, model.ErrorResponse{Error: "campos inválidos", Details: err.Error()})
				return
			}
		}

		resp, err := c.Hub.estimate(req)
		if err != nil {
			metrics.Get().IncrementEstimateRejected()
			c.SendMessage(TypeError, model.ErrorResponse{Error: "campos inválidos", Details: err.Error()})
			return
		}
		metrics.Get().IncrementEstimate(true)
		c.SendMessage(TypeEstimate, resp)

	default:
		c.Hub.logger.Debug().
			Str("session_id", c.SessionID).
			Str("message_type", msg.Type).
			Msg("Unknown message type received from client")
		c.SendMessage(TypeError, model.ErrorResponse{Error: "tipo de mensagem desconhecido", Details: msg.Type})
	}
}

// SendMessage enfileira uma mensagem para esta sessão.
// Retorna false se a fila estiver cheia ou a sessão já foi fechada;
// a mensagem é descartada.
func (c *Client) SendMessage(msgType string, data interface{}) bool {
	payload, err := json.Marshal(outbound{Type: msgType, Data: data, Timestamp: time.Now()})
	if err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("session_id", c.SessionID).
			Msg("Failed to marshal message for client")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- payload:
		metrics.Get().IncrementWSMessageOut()
		return true
	default:
		c.Hub.logger.Warn().
			Str("session_id", c.SessionID).
			Msg("Client send channel is full, dropping message")
		return false
	}
}

// close fecha Send uma única vez. Depois disso SendMessage só descarta.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastPing = time.Now()
	c.mu.Unlock()
}

// GetConnectionInfo returns information about this session
func (c *Client) GetConnectionInfo() SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SessionInfo{
		SessionID:   c.SessionID,
		ConnectedAt: c.ConnectedAt,
		LastPing:    c.lastPing,
	}
}
