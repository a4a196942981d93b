package handler

import (
	"net/http"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/metrics"
	"github.com/cleberrangel/process-cost-api/internal/middleware"
	"github.com/cleberrangel/process-cost-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const maxHeapMB = 512

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	leadConfigured bool
	wsHub          *websocket.Hub
	leadLimiter    *middleware.ClientRateLimiter
	version        string
	startTime      time.Time
}

// NewHealthHandler creates a new health handler. leadLimiter may be nil.
func NewHealthHandler(leadConfigured bool, wsHub *websocket.Hub, leadLimiter *middleware.ClientRateLimiter, version string) *HealthHandler {
	return &HealthHandler{
		leadConfigured: leadConfigured,
		wsHub:          wsHub,
		leadLimiter:    leadLimiter,
		version:        version,
		startTime:      time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck returns readiness status including the lead destination.
// A missing destination degrades but never fails readiness: the
// calculator still works.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"lead_relay": metrics.CheckLeadRelayHealth(h.leadConfigured),
		"memory":     metrics.CheckMemoryHealth(maxHeapMB),
	}
	h.respond(c, components)
}

// DetailedHealthCheck returns comprehensive health information
// @Summary Detailed health check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"lead_relay": metrics.CheckLeadRelayHealth(h.leadConfigured),
		"memory":     metrics.CheckMemoryHealth(maxHeapMB),
		"websocket":  h.checkWebSocketHealth(),
		"leads":      h.checkLeadDeliveryHealth(),
	}
	h.respond(c, components)
}

func (h *HealthHandler) respond(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// checkWebSocketHealth checks WebSocket hub health
func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	if h.wsHub == nil {
		return metrics.HealthStatus{
			Status:  "unhealthy",
			Message: "WebSocket hub not initialized",
		}
	}

	if h.wsHub.GetConnectionCount()*10 >= h.wsHub.MaxConnections()*9 {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "WebSocket sessions near limit",
		}
	}

	return metrics.HealthStatus{
		Status: "healthy",
	}
}

// checkLeadDeliveryHealth degrades when most deliveries are failing
func (h *HealthHandler) checkLeadDeliveryHealth() metrics.HealthStatus {
	snapshot := metrics.Get().Snapshot()

	finished := snapshot.Leads.Delivered + snapshot.Leads.Failed
	if finished > 0 {
		failureRate := float64(snapshot.Leads.Failed) / float64(finished) * 100
		if failureRate > 50 {
			return metrics.HealthStatus{
				Status:  "degraded",
				Message: "High lead delivery failure rate",
			}
		}
	}

	return metrics.HealthStatus{
		Status: "healthy",
	}
}

// GetMetrics returns application metrics
// @Summary Get application metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}

// GetMetricsSummary returns a summary of key metrics
// @Summary Get metrics summary
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/summary [get]
func (h *HealthHandler) GetMetricsSummary(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	requestSuccessRate := float64(0)
	if snapshot.Requests.Total > 0 {
		requestSuccessRate = float64(snapshot.Requests.Successful) / float64(snapshot.Requests.Total) * 100
	}

	leadSuccessRate := float64(0)
	if finished := snapshot.Leads.Delivered + snapshot.Leads.Failed; finished > 0 {
		leadSuccessRate = float64(snapshot.Leads.Delivered) / float64(finished) * 100
	}

	summary := gin.H{
		"uptime_seconds": snapshot.UptimeSeconds,
		"version":        h.version,
		"requests": gin.H{
			"total":        snapshot.Requests.Total,
			"success_rate": requestSuccessRate,
			"avg_latency":  snapshot.Requests.AvgLatencyMs,
		},
		"estimates": gin.H{
			"computed": snapshot.Estimates.Computed,
			"live":     snapshot.Estimates.Live,
			"exports":  snapshot.Estimates.Exports,
			"rejected": snapshot.Estimates.Rejected,
		},
		"leads": gin.H{
			"submitted":     snapshot.Leads.Submitted,
			"delivered":     snapshot.Leads.Delivered,
			"failed":        snapshot.Leads.Failed,
			"rejected":      snapshot.Leads.Rejected,
			"misconfigured": snapshot.Leads.Misconfigured,
			"success_rate":  leadSuccessRate,
		},
		"websocket": gin.H{
			"connections": snapshot.WebSocket.Connections,
		},
		"system": gin.H{
			"goroutines":  snapshot.System.Goroutines,
			"heap_mb":     snapshot.System.HeapAllocMB,
			"heap_use_mb": snapshot.System.HeapInUseMB,
		},
	}

	if h.leadLimiter != nil {
		stats := h.leadLimiter.Stats()
		summary["lead_rate_limit"] = gin.H{
			"tracked_clients": stats.ItemCount,
			"hits":            stats.HitCount,
			"misses":          stats.MissCount,
		}
	}

	c.JSON(http.StatusOK, summary)
}

// GetEndpointMetrics returns metrics for specific endpoints
// @Summary Get endpoint metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/endpoints [get]
func (h *HealthHandler) GetEndpointMetrics(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"endpoints": snapshot.Endpoints,
	})
}
