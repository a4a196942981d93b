package metrics

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64

	// Request latency (in milliseconds)
	TotalLatency int64
	RequestCount int64

	// Estimate metrics
	EstimatesComputed int64
	EstimatesLive     int64
	EstimateExports   int64
	EstimateRejected  int64

	// Lead metrics
	LeadsSubmitted     int64
	LeadsDelivered     int64
	LeadsFailed        int64
	LeadsRejected      int64
	LeadsMisconfigured int64 // válidos, sem destino configurado
	LeadAttempts       int64
	LeadLatency        int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesIn  int64
	WSMessagesOut int64

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

// global metrics instance
var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = New()
	})
}

// New creates an isolated metrics instance (tests)
func New() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		EndpointMetrics: make(map[string]*EndpointMetrics),
	}
}

// Get returns the global metrics instance
func Get() *Metrics {
	Init()
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementEstimate counts a computed estimate; live marks websocket recalculations
func (m *Metrics) IncrementEstimate(live bool) {
	atomic.AddInt64(&m.EstimatesComputed, 1)
	channel := "rest"
	if live {
		atomic.AddInt64(&m.EstimatesLive, 1)
		channel = "live"
	}
	estimatesTotal.WithLabelValues(channel).Inc()
}

// IncrementEstimateRejected counts estimate requests with invalid enumerations
func (m *Metrics) IncrementEstimateRejected() {
	atomic.AddInt64(&m.EstimateRejected, 1)
	estimatesTotal.WithLabelValues("rejected").Inc()
}

// IncrementEstimateExport counts spreadsheet exports
func (m *Metrics) IncrementEstimateExport() {
	atomic.AddInt64(&m.EstimateExports, 1)
	estimatesTotal.WithLabelValues("export").Inc()
}

// IncrementLeadSubmitted counts a lead that passed validation
func (m *Metrics) IncrementLeadSubmitted() {
	atomic.AddInt64(&m.LeadsSubmitted, 1)
}

// IncrementLeadRejected counts a lead rejected before any network call
func (m *Metrics) IncrementLeadRejected() {
	atomic.AddInt64(&m.LeadsRejected, 1)
	leadsTotal.WithLabelValues("rejected").Inc()
}

// IncrementLeadMisconfigured counts a valid lead dropped for lack of destination
func (m *Metrics) IncrementLeadMisconfigured() {
	atomic.AddInt64(&m.LeadsMisconfigured, 1)
	leadsTotal.WithLabelValues("misconfigured").Inc()
}

// RecordLeadOutcome records the terminal state of a submission
func (m *Metrics) RecordLeadOutcome(delivered bool, attempts int, latencyMs int64) {
	atomic.AddInt64(&m.LeadAttempts, int64(attempts))
	atomic.AddInt64(&m.LeadLatency, latencyMs)

	outcome := "failed"
	if delivered {
		atomic.AddInt64(&m.LeadsDelivered, 1)
		outcome = "delivered"
	} else {
		atomic.AddInt64(&m.LeadsFailed, 1)
	}
	leadsTotal.WithLabelValues(outcome).Inc()
	leadDuration.WithLabelValues(outcome).Observe(float64(latencyMs))
}

// IncrementWSConnection increments WebSocket connection counter
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
	wsConnections.Inc()
}

// DecrementWSConnection decrements WebSocket connection counter
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
	wsConnections.Dec()
}

// IncrementWSMessageIn increments WebSocket incoming message counter
func (m *Metrics) IncrementWSMessageIn() {
	atomic.AddInt64(&m.WSMessagesIn, 1)
}

// IncrementWSMessageOut increments WebSocket outgoing message counter
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndpointMetrics == nil {
		m.EndpointMetrics = make(map[string]*EndpointMetrics)
	}

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetEndpointMetrics returns a copy of endpoint metrics
func (m *Metrics) GetEndpointMetrics() map[string]EndpointMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]EndpointMetrics)
	for k, v := range m.EndpointMetrics {
		result[k] = EndpointMetrics{
			Requests:     atomic.LoadInt64(&v.Requests),
			Errors:       atomic.LoadInt64(&v.Errors),
			TotalLatency: atomic.LoadInt64(&v.TotalLatency),
		}
	}
	return result
}

// GetAverageLatency returns average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.TotalLatency)
	return float64(total) / float64(count)
}

// GetUptime returns the application uptime
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	Estimates struct {
		Computed int64 `json:"computed"`
		Live     int64 `json:"live"`
		Exports  int64 `json:"exports"`
		Rejected int64 `json:"rejected"`
	} `json:"estimates"`

	Leads struct {
		Submitted     int64   `json:"submitted"`
		Delivered     int64   `json:"delivered"`
		Failed        int64   `json:"failed"`
		Rejected      int64   `json:"rejected"`
		Misconfigured int64   `json:"misconfigured"`
		Attempts      int64   `json:"attempts"`
		AvgLatencyMs  float64 `json:"avg_latency_ms"`
	} `json:"leads"`

	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesIn  int64 `json:"messages_in"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	System struct {
		Goroutines   int    `json:"goroutines"`
		HeapAllocMB  uint64 `json:"heap_alloc_mb"`
		HeapInUseMB  uint64 `json:"heap_inuse_mb"`
		StackInUseMB uint64 `json:"stack_inuse_mb"`
		NumGC        uint32 `json:"num_gc"`
	} `json:"system"`

	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := MetricsSnapshot{}

	snapshot.UptimeSeconds = m.GetUptime().Seconds()
	snapshot.StartTime = m.StartTime.Format(time.RFC3339)

	snapshot.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	snapshot.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	snapshot.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	snapshot.Requests.AvgLatencyMs = m.GetAverageLatency()

	snapshot.Estimates.Computed = atomic.LoadInt64(&m.EstimatesComputed)
	snapshot.Estimates.Live = atomic.LoadInt64(&m.EstimatesLive)
	snapshot.Estimates.Exports = atomic.LoadInt64(&m.EstimateExports)
	snapshot.Estimates.Rejected = atomic.LoadInt64(&m.EstimateRejected)

	delivered := atomic.LoadInt64(&m.LeadsDelivered)
	failed := atomic.LoadInt64(&m.LeadsFailed)
	snapshot.Leads.Submitted = atomic.LoadInt64(&m.LeadsSubmitted)
	snapshot.Leads.Delivered = delivered
	snapshot.Leads.Failed = failed
	snapshot.Leads.Rejected = atomic.LoadInt64(&m.LeadsRejected)
	snapshot.Leads.Misconfigured = atomic.LoadInt64(&m.LeadsMisconfigured)
	snapshot.Leads.Attempts = atomic.LoadInt64(&m.LeadAttempts)
	if finished := delivered + failed; finished > 0 {
		snapshot.Leads.AvgLatencyMs = float64(atomic.LoadInt64(&m.LeadLatency)) / float64(finished)
	}

	snapshot.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	snapshot.WebSocket.MessagesIn = atomic.LoadInt64(&m.WSMessagesIn)
	snapshot.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	snapshot.System.Goroutines = runtime.NumGoroutine()
	snapshot.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	snapshot.System.HeapInUseMB = memStats.HeapInuse / 1024 / 1024
	snapshot.System.StackInUseMB = memStats.StackInuse / 1024 / 1024
	snapshot.System.NumGC = memStats.NumGC

	endpointMetrics := m.GetEndpointMetrics()
	if len(endpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot)
		for k, v := range endpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: v.Requests,
				Errors:   v.Errors,
			}
			if v.Requests > 0 {
				em.ErrorRate = float64(v.Errors) / float64(v.Requests) * 100
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"` // "healthy", "degraded", "unhealthy"
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckLeadRelayHealth reports whether leads have somewhere to go.
// The calculator keeps working without it, so a missing destination degrades.
func CheckLeadRelayHealth(configured bool) HealthStatus {
	if !configured {
		return HealthStatus{
			Status:  "degraded",
			Message: "lead webhook destination not configured",
		}
	}
	return HealthStatus{
		Status: "healthy",
	}
}

// CheckMemoryHealth checks memory usage
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "heap memory exceeds limit",
		}
	}

	// Warn if using more than 80% of limit
	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  "degraded",
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{
		Status: "healthy",
	}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
