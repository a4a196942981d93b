package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/estimate"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// PresentationMode define como o front-end exibe a calculadora.
// É resolvido uma vez na inicialização, nunca inferido do referrer.
type PresentationMode string

const (
	ModeStandalone PresentationMode = "standalone"
	ModeEmbedded   PresentationMode = "embedded"
)

// ParsePresentationMode valida o modo de apresentação
func ParsePresentationMode(s string) (PresentationMode, error) {
	switch PresentationMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStandalone:
		return ModeStandalone, nil
	case ModeEmbedded:
		return ModeEmbedded, nil
	}
	return "", fmt.Errorf("modo de apresentação inválido: %q", s)
}

// Config armazena as configurações da aplicação
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	// Proxies cujo X-Forwarded-For é aceito. Vazio: o IP do cliente é o da conexão.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`

	PresentationModeRaw string `envconfig:"PRESENTATION_MODE" default:"standalone"`
	EstimateBasisRaw    string `envconfig:"ESTIMATE_BASIS" default:"day-count"`

	Lead LeadConfig `ignored:"true"`

	// Resolvidos em Load
	PresentationMode PresentationMode `ignored:"true"`
	EstimateBasis    estimate.Basis   `ignored:"true"`
}

// LeadConfig agrupa as configurações do relay de leads
type LeadConfig struct {
	WebhookURL       string        `envconfig:"LEAD_WEBHOOK_URL"`
	LegacyWebhookURL string        `envconfig:"ZAPIER_WEBHOOK_URL"`
	Source           string        `envconfig:"LEAD_SOURCE"`
	Timeout          time.Duration `envconfig:"LEAD_TIMEOUT" default:"10s"`
	MaxRetries       uint64        `envconfig:"LEAD_MAX_RETRIES" default:"0"`
	RetryInitial     time.Duration `envconfig:"LEAD_RETRY_INITIAL_INTERVAL" default:"500ms"`
	RetryMax         time.Duration `envconfig:"LEAD_RETRY_MAX_INTERVAL" default:"5s"`
	RatePerMinute    int           `envconfig:"LEAD_RATE_PER_MINUTE" default:"120"`
	ClientPerMinute  int           `envconfig:"CLIENT_RATE_PER_MINUTE" default:"10"`
}

// Destination retorna a URL do webhook, aceitando a variável legada
func (l LeadConfig) Destination() string {
	if url := strings.TrimSpace(l.WebhookURL); url != "" {
		return url
	}
	return strings.TrimSpace(l.LegacyWebhookURL)
}

// Configured indica se há destino para os leads
func (l LeadConfig) Configured() bool {
	return l.Destination() != ""
}

// Load carrega as configurações do ambiente.
// A ausência do webhook não é erro aqui: o relay reporta ConfigurationError
// na submissão e o readiness fica degradado.
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()          // ./.env
	_ = godotenv.Load("../.env") // diretório pai

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processar variáveis de ambiente: %w", err)
	}
	if err := envconfig.Process("", &cfg.Lead); err != nil {
		return nil, fmt.Errorf("processar variáveis do relay de leads: %w", err)
	}

	mode, err := ParsePresentationMode(cfg.PresentationModeRaw)
	if err != nil {
		return nil, fmt.Errorf("PRESENTATION_MODE: %w", err)
	}
	cfg.PresentationMode = mode

	basis, err := estimate.ParseBasis(cfg.EstimateBasisRaw)
	if err != nil {
		return nil, fmt.Errorf("ESTIMATE_BASIS: %w", err)
	}
	cfg.EstimateBasis = basis

	if cfg.Lead.RatePerMinute <= 0 {
		return nil, fmt.Errorf("LEAD_RATE_PER_MINUTE deve ser positivo")
	}
	if cfg.Lead.ClientPerMinute <= 0 {
		return nil, fmt.Errorf("CLIENT_RATE_PER_MINUTE deve ser positivo")
	}

	return cfg, nil
}
