package middleware

import (
	"strings"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderRequestID é o header HTTP para request ID
	HeaderRequestID = "X-Request-ID"
	// HeaderTraceID é o header HTTP para trace ID (distributed tracing)
	HeaderTraceID = "X-Trace-ID"
)

// RequestID adiciona request_id, trace_id e o IP de origem ao contexto
// e registra início e fim de cada requisição.
//
// A linha de log usa a rota registrada: a query string carrega os campos
// da calculadora (valor da hora, tempos) e não vai para o log. O referrer
// também não é registrado, o modo de apresentação vem da configuração.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Usa ID do header se existir, senão gera novo (8 chars)
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}

		// Trace ID para rastreamento distribuído
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		// Adiciona ao contexto e header de resposta
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithTraceID(ctx, traceID)
		ctx = logger.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		route := routeOf(c)
		log := logger.Get(ctx)

		// Health checks e scrape de métricas só em debug
		startEvent := log.Info()
		if isMonitoring(route) {
			startEvent = log.Debug()
		}
		startEvent.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int64("content_length", c.Request.ContentLength).
			Msg("Request started")

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		completed := levelFor(log, route, statusCode)
		if len(c.Errors) > 0 {
			completed.Str("errors", c.Errors.String())
		}
		completed.
			Str("route", route).
			Int("status", statusCode).
			Int("size", c.Writer.Size()).
			Dur("latency", duration).
			Float64("latency_ms", float64(duration.Microseconds())/1000).
			Msg("Request completed")
	}
}

// routeOf retorna o template da rota ("/api/v1/estimates"), nunca a URL crua
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func isMonitoring(route string) bool {
	return strings.HasPrefix(route, "/health") || strings.HasPrefix(route, "/metrics")
}

func levelFor(log *zerolog.Logger, route string, status int) *zerolog.Event {
	switch {
	case status >= 500:
		return log.Error()
	case status >= 400:
		return log.Warn()
	case isMonitoring(route):
		return log.Debug()
	}
	return log.Info()
}
