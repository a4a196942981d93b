package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/cleberrangel/process-cost-api/internal/metrics"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultLeadTimeout limita cada tentativa de entrega
	DefaultLeadTimeout = 10 * time.Second

	// AckSubmitted é o sinal devolvido ao chamador após entrega
	AckSubmitted = "submitted"

	destinationKey = "LEAD_WEBHOOK_URL"
)

// SubmissionState é o estado de uma submissão: idle → sending → {sent | failed}
type SubmissionState string

const (
	StateIdle    SubmissionState = "idle"
	StateSending SubmissionState = "sending"
	StateSent    SubmissionState = "sent"
	StateFailed  SubmissionState = "failed"
)

var transitions = map[SubmissionState][]SubmissionState{
	StateIdle:    {StateSending},
	StateSending: {StateSent, StateFailed},
}

// Submission acompanha uma única tentativa de entrega de lead.
// Estados terminais não voltam; reenviar cria uma nova Submission.
type Submission struct {
	mu sync.Mutex

	ID         string
	Lead       model.LeadSubmission
	state      SubmissionState
	Attempts   int
	StatusCode int
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewSubmission cria uma submissão no estado idle
func NewSubmission(lead model.LeadSubmission) *Submission {
	return &Submission{
		ID:    uuid.New().String(),
		Lead:  lead,
		state: StateIdle,
	}
}

// State retorna o estado atual
func (s *Submission) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ack retorna "submitted" quando o lead foi entregue, "" caso contrário
func (s *Submission) Ack() string {
	if s.State() == StateSent {
		return AckSubmitted
	}
	return ""
}

// advance aplica a transição, rejeitando saltos inválidos
func (s *Submission) advance(next SubmissionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range transitions[s.state] {
		if allowed == next {
			s.state = next
			switch next {
			case StateSending:
				s.StartedAt = time.Now()
			case StateSent, StateFailed:
				s.FinishedAt = time.Now()
			}
			return nil
		}
	}
	return fmt.Errorf("transição inválida: %s → %s", s.state, next)
}

// RetryPolicy controla reenvios automáticos. MaxRetries = 0 mantém
// no máximo uma tentativa por submissão.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// LeadRelayConfig reúne as dependências do relay
type LeadRelayConfig struct {
	WebhookURL    string
	DefaultSource string
	Timeout       time.Duration
	RatePerMinute int
	Retry         RetryPolicy
	HTTPClient    *http.Client
}

// LeadRelay encaminha leads para o webhook de automação
type LeadRelay struct {
	webhookURL    string
	defaultSource string
	httpClient    *http.Client
	limiter       *rate.Limiter
	retry         RetryPolicy
}

// NewLeadRelay cria um novo relay de leads
func NewLeadRelay(cfg LeadRelayConfig) *LeadRelay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLeadTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}

	return &LeadRelay{
		webhookURL:    strings.TrimSpace(cfg.WebhookURL),
		defaultSource: cfg.DefaultSource,
		httpClient:    httpClient,
		limiter:       limiter,
		retry:         cfg.Retry,
	}
}

// Configured indica se há destino configurado
func (r *LeadRelay) Configured() bool {
	return r.webhookURL != ""
}

// Validate verifica a presença de name e email. Nenhuma outra validação é feita.
func Validate(lead model.LeadSubmission) error {
	if strings.TrimSpace(lead.Name) == "" {
		return &model.ValidationError{Field: "name"}
	}
	if strings.TrimSpace(lead.Email) == "" {
		return &model.ValidationError{Field: "email"}
	}
	return nil
}

// Submit valida e entrega o lead. Em erro de validação ou configuração
// nenhuma requisição é feita e a submissão retornada é nil.
func (r *LeadRelay) Submit(ctx context.Context, lead model.LeadSubmission) (*Submission, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.TrimSpace(lead.Email)
	lead.Source = strings.TrimSpace(lead.Source)
	if lead.Source == "" {
		lead.Source = r.defaultSource
	}

	if err := Validate(lead); err != nil {
		metrics.Get().IncrementLeadRejected()
		logger.AuditLead(ctx, logger.AuditActionLeadRejected, lead.Email, lead.Source, 0, 0, err)
		return nil, err
	}

	if !r.Configured() {
		err := &model.ConfigurationError{Key: destinationKey}
		metrics.Get().IncrementLeadMisconfigured()
		logger.Get(ctx).Error().Err(err).Msg("Lead recebido sem destino configurado")
		logger.AuditLead(ctx, logger.AuditActionLeadMisconfigured, lead.Email, lead.Source, 0, 0, err)
		return nil, err
	}

	sub := NewSubmission(lead)
	ctx = logger.WithSubmissionID(ctx, sub.ID)
	metrics.Get().IncrementLeadSubmitted()

	if err := sub.advance(StateSending); err != nil {
		return nil, err
	}
	logger.AuditLead(ctx, logger.AuditActionLeadSubmit, lead.Email, lead.Source, 0, 0, nil)

	deliverErr := r.deliver(ctx, sub)

	next := StateSent
	action := logger.AuditActionLeadDelivered
	if deliverErr != nil {
		next = StateFailed
		action = logger.AuditActionLeadFailed
	}
	if err := sub.advance(next); err != nil {
		return sub, err
	}

	elapsed := sub.FinishedAt.Sub(sub.StartedAt).Milliseconds()
	metrics.Get().RecordLeadOutcome(deliverErr == nil, sub.Attempts, elapsed)
	logger.AuditLead(ctx, action, lead.Email, lead.Source, sub.Attempts, elapsed, deliverErr)

	if deliverErr != nil {
		return sub, deliverErr
	}
	return sub, nil
}

// deliver faz o POST, com reenvio apenas se a política permitir.
// Respostas 4xx nunca são reenviadas.
func (r *LeadRelay) deliver(ctx context.Context, sub *Submission) error {
	body, err := json.Marshal(sub.Lead)
	if err != nil {
		return &model.TransportError{Err: fmt.Errorf("marshal payload: %w", err)}
	}

	operation := func() error {
		sub.Attempts++
		status, err := r.post(ctx, body)
		sub.StatusCode = status
		if err == nil {
			return nil
		}

		if status >= 400 && status < 500 {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Get(ctx).Warn().
			Err(err).
			Int("attempt", sub.Attempts).
			Uint64("max_retries", r.retry.MaxRetries).
			Dur("backoff", wait).
			Msg("Entrega do lead falhou, aguardando retry")
	}

	err = backoff.RetryNotify(operation, r.backoffFor(ctx), notify)
	if err == nil {
		return nil
	}
	// cancelamento do contexto chega aqui sem tipo
	var transportErr *model.TransportError
	if !errors.As(err, &transportErr) {
		err = &model.TransportError{Err: err}
	}
	return err
}

func (r *LeadRelay) backoffFor(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if r.retry.InitialInterval > 0 {
		exp.InitialInterval = r.retry.InitialInterval
	}
	if r.retry.MaxInterval > 0 {
		exp.MaxInterval = r.retry.MaxInterval
	}
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, r.retry.MaxRetries), ctx)
}

// post envia uma tentativa e retorna o status HTTP (0 se não houve resposta)
func (r *LeadRelay) post(ctx context.Context, body []byte) (int, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, &model.TransportError{Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, &model.TransportError{Err: fmt.Errorf("criar request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, &model.TransportError{Err: err}
	}
	defer resp.Body.Close()
	// descarta o corpo para reaproveitar a conexão
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &model.TransportError{StatusCode: resp.StatusCode}
	}

	logger.Get(ctx).Info().
		Int("status", resp.StatusCode).
		Msg("Lead entregue ao webhook")
	return resp.StatusCode, nil
}
