package websocket

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/cleberrangel/process-cost-api/internal/metrics"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// EstimateFunc recalcula o custo a partir dos campos do formulário
type EstimateFunc func(req model.EstimateRequest) (model.EstimateResponse, error)

// Hub mantém as sessões de recálculo ao vivo abertas
type Hub struct {
	// Sessões registradas por ID
	sessions map[string]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mutex sync.RWMutex

	estimate       EstimateFunc
	maxConnections int

	logger *zerolog.Logger
}

// Client é o intermediário entre a conexão websocket e o hub
type Client struct {
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	SessionID string
	ClientIP  string

	Hub *Hub

	ConnectedAt time.Time

	// mu protege lastPing e closed. Send só é fechado via close().
	mu       sync.Mutex
	lastPing time.Time
	closed   bool
}

// SessionInfo descreve uma sessão aberta
type SessionInfo struct {
	SessionID   string    `json:"session_id"`
	ConnectedAt time.Time `json:"connected_at"`
	LastPing    time.Time `json:"last_ping"`
}

// Message é o envelope de todas as mensagens trocadas
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// outbound é o envelope de saída, com payload arbitrário
type outbound struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Tipos de mensagem
const (
	TypeConnection = "connection"
	TypeEstimate   = "estimate"
	TypeError      = "error"
	TypePing       = "ping"
	TypePong       = "pong"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// DefaultMaxConnections limita as sessões simultâneas
	DefaultMaxConnections = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// a calculadora pode ser embutida em outro domínio
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub cria um hub que recalcula com estimate
func NewHub(estimate EstimateFunc, maxConnections int) *Hub {
	if maxConnections <= 0 {
		maxConnections = DefaultMaxConnections
	}
	return &Hub{
		sessions:       make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		estimate:       estimate,
		maxConnections: maxConnections,
		logger:         logger.Global(),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop encerra o loop e fecha todas as sessões
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// registerClient registra a sessão. Acima do limite a sessão recebe
// um erro e é fechada; o pré-check em ServeWS não é atômico.
func (h *Hub) registerClient(client *Client) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(h.sessions) >= h.maxConnections {
		h.logger.Warn().
			Str("session_id", client.SessionID).
			Int("max_connections", h.maxConnections).
			Msg("WebSocket session rejected: limit reached")
		client.SendMessage(TypeError, model.ErrorResponse{
			Error:   "limite de conexões atingido",
			Details: "tente novamente em instantes",
		})
		client.close()
		return false
	}

	h.sessions[client.SessionID] = client

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("session_id", client.SessionID).
		Int("sessions", len(h.sessions)).
		Msg("WebSocket session registered")

	client.SendMessage(TypeConnection, map[string]string{
		"status":     "connected",
		"session_id": client.SessionID,
	})
	return true
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	current, ok := h.sessions[client.SessionID]
	if !ok || current != client {
		return
	}
	delete(h.sessions, client.SessionID)
	client.close()

	metrics.Get().DecrementWSConnection()

	h.logger.Info().
		Str("session_id", client.SessionID).
		Int("remaining_sessions", len(h.sessions)).
		Msg("WebSocket session unregistered")
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, client := range h.sessions {
		client.close()
		delete(h.sessions, id)
		metrics.Get().DecrementWSConnection()
	}
}

// GetConnectionCount returns the total number of active sessions
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.sessions)
}

// GetSessions returns the open sessions, oldest first
func (h *Hub) GetSessions() []SessionInfo {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sessions := make([]SessionInfo, 0, len(h.sessions))
	for _, client := range h.sessions {
		sessions = append(sessions, client.GetConnectionInfo())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ConnectedAt.Before(sessions[j].ConnectedAt)
	})
	return sessions
}

// MaxConnections returns the session limit
func (h *Hub) MaxConnections() int {
	return h.maxConnections
}

func (h *Hub) full() bool {
	return h.GetConnectionCount() >= h.maxConnections
}
