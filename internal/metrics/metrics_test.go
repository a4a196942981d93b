package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLeadOutcomeCounters(t *testing.T) {
	m := New()

	m.IncrementLeadSubmitted()
	m.IncrementLeadSubmitted()
	m.RecordLeadOutcome(true, 1, 100)
	m.RecordLeadOutcome(false, 3, 300)
	m.IncrementLeadRejected()

	s := m.Snapshot()
	assert.EqualValues(t, 2, s.Leads.Submitted)
	assert.EqualValues(t, 1, s.Leads.Delivered)
	assert.EqualValues(t, 1, s.Leads.Failed)
	assert.EqualValues(t, 1, s.Leads.Rejected)
	assert.EqualValues(t, 4, s.Leads.Attempts)
	assert.Equal(t, 200.0, s.Leads.AvgLatencyMs)
}

func TestMisconfiguredLeadsAreCounted(t *testing.T) {
	m := New()
	before := testutil.ToFloat64(leadsTotal.WithLabelValues("misconfigured"))

	m.IncrementLeadMisconfigured()
	m.IncrementLeadMisconfigured()

	assert.EqualValues(t, 2, m.Snapshot().Leads.Misconfigured)
	assert.Equal(t, before+2, testutil.ToFloat64(leadsTotal.WithLabelValues("misconfigured")))
}

func TestEstimateCounters(t *testing.T) {
	m := New()
	before := testutil.ToFloat64(estimatesTotal.WithLabelValues("live"))

	m.IncrementEstimate(false)
	m.IncrementEstimate(true)
	m.IncrementEstimateExport()
	m.IncrementEstimateRejected()

	s := m.Snapshot()
	assert.EqualValues(t, 2, s.Estimates.Computed)
	assert.EqualValues(t, 1, s.Estimates.Live)
	assert.EqualValues(t, 1, s.Estimates.Exports)
	assert.EqualValues(t, 1, s.Estimates.Rejected)
	assert.Equal(t, before+1, testutil.ToFloat64(estimatesTotal.WithLabelValues("live")))
}

func TestEndpointTracking(t *testing.T) {
	m := New()

	m.IncrementRequests(true, 10)
	m.IncrementRequests(false, 30)
	m.TrackEndpoint("/api/v1/estimates", "POST", 200, 10)
	m.TrackEndpoint("/api/v1/estimates", "POST", 400, 30)

	s := m.Snapshot()
	assert.EqualValues(t, 2, s.Requests.Total)
	assert.Equal(t, 20.0, s.Requests.AvgLatencyMs)

	ep := s.Endpoints["POST /api/v1/estimates"]
	assert.EqualValues(t, 2, ep.Requests)
	assert.EqualValues(t, 1, ep.Errors)
	assert.Equal(t, 50.0, ep.ErrorRate)
}

func TestHealthHelpers(t *testing.T) {
	assert.Equal(t, "degraded", CheckLeadRelayHealth(false).Status)
	assert.Equal(t, "healthy", CheckLeadRelayHealth(true).Status)

	assert.Equal(t, "healthy", DetermineOverallStatus(map[string]HealthStatus{"a": {Status: "healthy"}}))
	assert.Equal(t, "degraded", DetermineOverallStatus(map[string]HealthStatus{
		"a": {Status: "healthy"}, "b": {Status: "degraded"},
	}))
	assert.Equal(t, "unhealthy", DetermineOverallStatus(map[string]HealthStatus{
		"a": {Status: "unhealthy"}, "b": {Status: "degraded"},
	}))
}
