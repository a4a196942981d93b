package handler

import (
	"net/http"

	"github.com/cleberrangel/process-cost-api/internal/config"
	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/cleberrangel/process-cost-api/internal/metrics"
	"github.com/cleberrangel/process-cost-api/internal/middleware"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/cleberrangel/process-cost-api/internal/service"
	"github.com/cleberrangel/process-cost-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// RouterConfig reúne as dependências das rotas
type RouterConfig struct {
	Calculator  *service.Calculator
	Relay       *service.LeadRelay
	Hub         *websocket.Hub
	LeadLimiter *middleware.ClientRateLimiter
	Mode        config.PresentationMode
	LeadSource  string
	Version     string

	// TrustedProxies define de quem o X-Forwarded-For é aceito.
	// nil faz c.ClientIP() usar sempre o endereço da conexão.
	TrustedProxies []string
}

// NewRouter monta o engine com middlewares e rotas
func NewRouter(cfg RouterConfig) *gin.Engine {
	calculatorHandler := NewCalculatorHandler(cfg.Mode, cfg.Calculator.Basis(), cfg.LeadSource)
	estimateHandler := NewEstimateHandler(cfg.Calculator)
	leadHandler := NewLeadHandler(cfg.Relay)
	healthHandler := NewHealthHandler(cfg.Relay.Configured(), cfg.Hub, cfg.LeadLimiter, cfg.Version)
	wsHandler := NewWebSocketHandler(cfg.Hub)

	r := gin.New()
	// o limite por cliente depende de ClientIP, que não pode vir de header forjado
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Global().Error().
			Err(err).
			Strs("trusted_proxies", cfg.TrustedProxies).
			Msg("Lista de proxies inválida, X-Forwarded-For será ignorado")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, model.ErrorResponse{
			Success: false,
			Error:   "Method Not Allowed",
		})
	})

	// Health check e métricas (públicos)
	r.GET("/health", healthHandler.DetailedHealthCheck)
	r.GET("/health/live", healthHandler.LivenessCheck)
	r.GET("/health/ready", healthHandler.ReadinessCheck)
	r.GET("/metrics", healthHandler.GetMetrics)
	r.GET("/metrics/summary", healthHandler.GetMetricsSummary)
	r.GET("/metrics/endpoints", healthHandler.GetEndpointMetrics)
	r.GET("/metrics/prometheus", gin.WrapH(metrics.Handler()))

	leadChain := []gin.HandlerFunc{leadHandler.Submit}
	if cfg.LeadLimiter != nil {
		leadChain = append([]gin.HandlerFunc{cfg.LeadLimiter.Middleware()}, leadChain...)
	}

	// Caminho legado do formulário de contato
	r.POST("/api/send-lead", leadChain...)

	api := r.Group("/api/v1")
	{
		api.POST("/leads", leadChain...)

		api.GET("/calculator", calculatorHandler.Settings)

		api.POST("/estimates", estimateHandler.Estimate)
		api.GET("/estimates/table", estimateHandler.Table)
		api.GET("/estimates/export", estimateHandler.Export)

		api.GET("/estimates/live", wsHandler.HandleConnection)
		api.GET("/estimates/live/stats", wsHandler.GetConnectionStats)
	}

	return r
}
