package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/cleberrangel/process-cost-api/internal/middleware"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/cleberrangel/process-cost-api/internal/service"
	"github.com/gin-gonic/gin"
)

// LeadSubmitter entrega um lead ao destino configurado
type LeadSubmitter interface {
	Submit(ctx context.Context, lead model.LeadSubmission) (*service.Submission, error)
}

// LeadHandler expõe o relay de leads
type LeadHandler struct {
	relay    LeadSubmitter
	sanitize middleware.SanitizeConfig
}

// NewLeadHandler cria um novo handler de leads
func NewLeadHandler(relay LeadSubmitter) *LeadHandler {
	return &LeadHandler{
		relay:    relay,
		sanitize: middleware.DefaultSanitizeConfig(),
	}
}

// Submit recebe {name, email, source?} e encaminha ao webhook
// POST /api/send-lead
func (h *LeadHandler) Submit(c *gin.Context) {
	var req model.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	lead := model.LeadSubmission{
		Name:   middleware.SanitizeString(req.Name, h.sanitize),
		Email:  middleware.SanitizeEmail(req.Email),
		Source: middleware.SanitizeString(req.Source, h.sanitize),
	}

	sub, err := h.relay.Submit(c.Request.Context(), lead)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"status":        sub.Ack(),
		"submission_id": sub.ID,
	})
}

// handleError traduz os erros do relay. Detalhes internos ficam só no log.
func (h *LeadHandler) handleError(c *gin.Context, err error) {
	log := logger.FromGin(c)

	switch {
	case errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "Missing name or email",
		})
	case errors.Is(err, model.ErrConfiguration):
		log.Error().Err(err).Msg("Relay de leads sem configuração")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "Failed to send lead",
		})
	default:
		log.Error().Err(err).Msg("Falha ao entregar lead")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "Failed to send lead",
		})
	}
}
