package middleware

import (
	"net/http"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/cache"
	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientRateLimiter limita requisições por IP de origem.
// Os limiters ficam no cache e expiram após um período sem uso.
type ClientRateLimiter struct {
	store  *cache.Cache
	prefix string
	limit  rate.Limit
	burst  int
}

// NewClientRateLimiter cria um limiter de perMinute requisições por cliente
func NewClientRateLimiter(store *cache.Cache, prefix string, perMinute int) *ClientRateLimiter {
	if perMinute <= 0 {
		return &ClientRateLimiter{store: store, prefix: prefix, limit: rate.Inf}
	}
	return &ClientRateLimiter{
		store:  store,
		prefix: prefix,
		limit:  rate.Every(time.Minute / time.Duration(perMinute)),
		burst:  perMinute,
	}
}

// Allow consome um token do cliente
func (l *ClientRateLimiter) Allow(clientIP string) bool {
	limiter := l.store.GetOrCreate(l.prefix+clientIP, func() interface{} {
		return rate.NewLimiter(l.limit, l.burst)
	}).(*rate.Limiter)
	return limiter.Allow()
}

// Stats retorna o uso do cache de limiters (clientes rastreados, hits, misses)
func (l *ClientRateLimiter) Stats() cache.Stats {
	return l.store.Stats()
}

// Middleware rejeita com 429 quando o cliente excede o limite
func (l *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		logger.FromGin(c).Warn().
			Str("client_ip", c.ClientIP()).
			Str("path", c.FullPath()).
			Msg("Rate limit por cliente excedido")

		c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
			Success: false,
			Error:   "rate limit excedido",
			Details: "aguarde alguns segundos e tente novamente",
		})
	}
}
