package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/cache"
	"github.com/cleberrangel/process-cost-api/internal/config"
	"github.com/cleberrangel/process-cost-api/internal/handler"
	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/cleberrangel/process-cost-api/internal/metrics"
	"github.com/cleberrangel/process-cost-api/internal/middleware"
	"github.com/cleberrangel/process-cost-api/internal/service"
	"github.com/cleberrangel/process-cost-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "2.0.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	metrics.Init()
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Str("presentation_mode", string(cfg.PresentationMode)).
		Str("estimate_basis", string(cfg.EstimateBasis)).
		Msg("Process Cost API iniciando")

	if !cfg.Lead.Configured() {
		log.Warn().Msg("LEAD_WEBHOOK_URL não configurada: leads serão rejeitados com erro de configuração")
	}

	// Inicializa dependências
	calculator, err := service.NewCalculator(cfg.EstimateBasis)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao inicializar calculadora")
	}

	relay := service.NewLeadRelay(service.LeadRelayConfig{
		WebhookURL:    cfg.Lead.Destination(),
		DefaultSource: cfg.Lead.Source,
		Timeout:       cfg.Lead.Timeout,
		RatePerMinute: cfg.Lead.RatePerMinute,
		Retry: service.RetryPolicy{
			MaxRetries:      cfg.Lead.MaxRetries,
			InitialInterval: cfg.Lead.RetryInitial,
			MaxInterval:     cfg.Lead.RetryMax,
		},
	})

	// limiters por cliente expiram após 10 minutos sem uso
	limiterCache := cache.NewCache(10 * time.Minute)
	defer limiterCache.Stop()
	leadLimiter := middleware.NewClientRateLimiter(limiterCache, "lead:", cfg.Lead.ClientPerMinute)

	hub := websocket.NewHub(calculator.Compute, websocket.DefaultMaxConnections)
	go hub.Run()
	defer hub.Stop()

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(handler.RouterConfig{
		Calculator:  calculator,
		Relay:       relay,
		Hub:         hub,
		LeadLimiter: leadLimiter,
		Mode:        cfg.PresentationMode,
		LeadSource:  cfg.Lead.Source,
		Version:     Version,

		TrustedProxies: cfg.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Encerrando servidor")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Erro ao encerrar servidor")
	}
}
