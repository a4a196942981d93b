package config

import (
	"testing"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/estimate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEAD_WEBHOOK_URL", "")
	t.Setenv("ZAPIER_WEBHOOK_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ModeStandalone, cfg.PresentationMode)
	assert.Equal(t, estimate.DayCount, cfg.EstimateBasis)
	assert.Equal(t, 10*time.Second, cfg.Lead.Timeout)
	assert.Zero(t, cfg.Lead.MaxRetries)
	assert.False(t, cfg.Lead.Configured(), "missing destination is not a load error")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PRESENTATION_MODE", "Embedded")
	t.Setenv("ESTIMATE_BASIS", "annual")
	t.Setenv("LEAD_WEBHOOK_URL", " https://hooks.example.com/lead ")
	t.Setenv("LEAD_MAX_RETRIES", "2")
	t.Setenv("LEAD_TIMEOUT", "3s")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,172.16.0.0/12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ModeEmbedded, cfg.PresentationMode)
	assert.Equal(t, estimate.Annual, cfg.EstimateBasis)
	assert.Equal(t, "https://hooks.example.com/lead", cfg.Lead.Destination())
	assert.EqualValues(t, 2, cfg.Lead.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.Lead.Timeout)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)
}

func TestLegacyWebhookVariable(t *testing.T) {
	t.Setenv("LEAD_WEBHOOK_URL", "")
	t.Setenv("ZAPIER_WEBHOOK_URL", "https://hooks.zapier.com/x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.zapier.com/x", cfg.Lead.Destination())

	t.Setenv("LEAD_WEBHOOK_URL", "https://primary.example.com")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "https://primary.example.com", cfg.Lead.Destination())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PRESENTATION_MODE":      "iframe",
		"ESTIMATE_BASIS":         "lunar",
		"LEAD_RATE_PER_MINUTE":   "0",
		"CLIENT_RATE_PER_MINUTE": "-1",
		"LEAD_TIMEOUT":           "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParsePresentationMode(t *testing.T) {
	mode, err := ParsePresentationMode(" STANDALONE ")
	require.NoError(t, err)
	assert.Equal(t, ModeStandalone, mode)

	_, err = ParsePresentationMode("")
	assert.Error(t, err)
}
