package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/process-cost-api/internal/logger"
	"github.com/cleberrangel/process-cost-api/internal/metrics"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/cleberrangel/process-cost-api/internal/service"
	"github.com/gin-gonic/gin"
)

// EstimateHandler expõe o cálculo de custo
type EstimateHandler struct {
	calculator *service.Calculator
	exporter   *service.TableExporter
}

// NewEstimateHandler cria um novo handler de estimativas
func NewEstimateHandler(calculator *service.Calculator) *EstimateHandler {
	return &EstimateHandler{
		calculator: calculator,
		exporter:   service.NewTableExporter(calculator.Estimator()),
	}
}

// Estimate calcula o custo para os campos do formulário
// POST /api/v1/estimates
func (h *EstimateHandler) Estimate(c *gin.Context) {
	var req model.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, "requisição inválida", err)
		return
	}

	resp, err := h.calculator.Compute(req)
	if err != nil {
		h.reject(c, "campos inválidos", err)
		return
	}

	metrics.Get().IncrementEstimate(false)
	c.JSON(http.StatusOK, model.Response{Success: true, Data: resp})
}

// Table calcula o custo para todos os períodos
// GET /api/v1/estimates/table
func (h *EstimateHandler) Table(c *gin.Context) {
	var req model.EstimateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.reject(c, "parâmetros inválidos", err)
		return
	}

	rows, err := h.calculator.Table(req)
	if err != nil {
		h.reject(c, "campos inválidos", err)
		return
	}

	metrics.Get().IncrementEstimate(false)
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: gin.H{
			"basis": h.calculator.Basis(),
			"rows":  rows,
		},
	})
}

// Export gera a tabela por período em .xlsx
// GET /api/v1/estimates/export
func (h *EstimateHandler) Export(c *gin.Context) {
	start := time.Now()

	var req model.EstimateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.reject(c, "parâmetros inválidos", err)
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.reject(c, "campos inválidos", err)
		return
	}

	buf, err := h.exporter.Export(in)
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Erro ao gerar planilha")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erro ao gerar planilha",
		})
		return
	}

	metrics.Get().IncrementEstimateExport()
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:   logger.AuditActionEstimateExport,
		Resource: "estimate",
		ClientIP: c.ClientIP(),
		Details: map[string]interface{}{
			"basis":     h.calculator.Basis(),
			"time_unit": in.TimeUnit,
			"size":      buf.Len(),
		},
		Success:  true,
		Duration: time.Since(start).Milliseconds(),
	})

	filename := fmt.Sprintf("custo_processo_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, service.ExportContentType, buf.Bytes())
}

func (h *EstimateHandler) reject(c *gin.Context, msg string, err error) {
	metrics.Get().IncrementEstimateRejected()
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Success: false,
		Error:   msg,
		Details: err.Error(),
	})
}
