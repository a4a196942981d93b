package logger

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
)

type ctxKey string

const (
	RequestIDKey    ctxKey = "request_id"
	LoggerKey       ctxKey = "logger"
	TraceIDKey      ctxKey = "trace_id"
	SubmissionIDKey ctxKey = "submission_id"
	ClientIPKey     ctxKey = "client_ip"
)

var globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init inicializa o logger global
func Init(level string, jsonFormat bool) {
	InitWithWriter(level, jsonFormat, os.Stdout)
}

// InitWithWriter permite redirecionar a saída (usado em testes)
func InitWithWriter(level string, jsonFormat bool, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	output := out
	if !jsonFormat {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	globalLogger = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "process-cost-api").
		Logger()

	InitAudit()
}

// Global retorna o logger global
func Global() *zerolog.Logger {
	return &globalLogger
}

// Get retorna logger do contexto ou global
func Get(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &globalLogger
	}
	if l, ok := ctx.Value(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	return &globalLogger
}

// FromGin extrai o logger do contexto Gin
func FromGin(c *gin.Context) *zerolog.Logger {
	return Get(c.Request.Context())
}

// WithRequestID adiciona request_id ao logger e contexto
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := globalLogger.With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithTraceID adiciona um trace ID para rastreamento distribuído
func WithTraceID(ctx context.Context, traceID string) context.Context {
	l := Get(ctx).With().Str("trace_id", traceID).Logger()
	ctx = context.WithValue(ctx, TraceIDKey, traceID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithSubmissionID vincula os logs seguintes a uma submissão de lead
func WithSubmissionID(ctx context.Context, submissionID string) context.Context {
	l := Get(ctx).With().Str("submission_id", submissionID).Logger()
	ctx = context.WithValue(ctx, SubmissionIDKey, submissionID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithClientIP guarda o IP de origem para os eventos de auditoria.
// Não entra no logger: a linha de request já registra client_ip.
func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, ClientIPKey, clientIP)
}

// GetClientIP extrai client_ip do contexto
func GetClientIP(ctx context.Context) string {
	return stringValue(ctx, ClientIPKey)
}

// GetRequestID extrai request_id do contexto
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// GetTraceID extrai trace_id do contexto
func GetTraceID(ctx context.Context) string {
	return stringValue(ctx, TraceIDKey)
}

// GetSubmissionID extrai submission_id do contexto
func GetSubmissionID(ctx context.Context) string {
	return stringValue(ctx, SubmissionIDKey)
}

// TraceContext retorna todas as informações de rastreamento do contexto
func TraceContext(ctx context.Context) map[string]string {
	return map[string]string{
		"request_id":    GetRequestID(ctx),
		"trace_id":      GetTraceID(ctx),
		"submission_id": GetSubmissionID(ctx),
	}
}

// HashPII gera um identificador estável para dados pessoais (email) sem
// expor o valor em log. Retorna "" para entrada vazia.
func HashPII(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
