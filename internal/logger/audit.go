package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	// Lead operations
	AuditActionLeadSubmit        AuditAction = "LEAD_SUBMIT"
	AuditActionLeadDelivered     AuditAction = "LEAD_DELIVERED"
	AuditActionLeadFailed        AuditAction = "LEAD_FAILED"
	AuditActionLeadRejected      AuditAction = "LEAD_REJECTED"
	AuditActionLeadMisconfigured AuditAction = "LEAD_MISCONFIGURED" // lead válido sem destino

	// Estimate operations
	AuditActionEstimateExport AuditAction = "ESTIMATE_EXPORT"

	// WebSocket operations
	AuditActionWSConnect    AuditAction = "WS_CONNECT"
	AuditActionWSDisconnect AuditAction = "WS_DISCONNECT"
)

// AuditEvent represents an audit log entry
type AuditEvent struct {
	Action       AuditAction
	Resource     string
	ResourceID   string
	Details      map[string]interface{}
	ClientIP     string
	RequestID    string
	SubmissionID string
	Success      bool
	Error        string
	Duration     int64 // Duration in milliseconds
}

// auditLogger is a specialized logger for audit events
var auditLogger = globalLogger.With().Str("log_type", "audit").Logger()

// InitAudit initializes the audit logger
func InitAudit() {
	auditLogger = globalLogger.With().Str("log_type", "audit").Logger()
}

// Audit logs an audit event
func Audit(ctx context.Context, event AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.SubmissionID == "" {
		event.SubmissionID = GetSubmissionID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = GetClientIP(ctx)
	}

	var logEvent *zerolog.Event
	if event.Success {
		logEvent = auditLogger.Info()
	} else {
		logEvent = auditLogger.Warn()
	}

	logEvent.
		Str("action", string(event.Action)).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Str("client_ip", event.ClientIP).
		Str("request_id", event.RequestID).
		Bool("success", event.Success).
		Time("timestamp", time.Now().UTC())

	if event.SubmissionID != "" {
		logEvent.Str("submission_id", event.SubmissionID)
	}

	if event.Error != "" {
		logEvent.Str("error", event.Error)
	}

	if event.Duration > 0 {
		logEvent.Int64("duration_ms", event.Duration)
	}

	if len(event.Details) > 0 {
		logEvent.Interface("details", event.Details)
	}

	logEvent.Msg("Audit event")
}

// AuditLead logs the outcome of a lead submission. The email is hashed.
func AuditLead(ctx context.Context, action AuditAction, email, source string, attempts int, duration int64, err error) {
	event := AuditEvent{
		Action:     action,
		Resource:   "lead",
		ResourceID: HashPII(email),
		Success:    err == nil,
		Duration:   duration,
		Details: map[string]interface{}{
			"source":   source,
			"attempts": attempts,
		},
	}
	if err != nil {
		event.Error = err.Error()
	}
	Audit(ctx, event)
}

// AuditWebSocket logs WebSocket connection events
func AuditWebSocket(ctx context.Context, action AuditAction, sessionID, clientIP string, details map[string]interface{}) {
	Audit(ctx, AuditEvent{
		Action:     action,
		Resource:   "websocket",
		ResourceID: sessionID,
		ClientIP:   clientIP,
		Success:    true,
		Details:    details,
	})
}
