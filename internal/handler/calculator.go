package handler

import (
	"net/http"

	"github.com/cleberrangel/process-cost-api/internal/config"
	"github.com/cleberrangel/process-cost-api/internal/estimate"
	"github.com/cleberrangel/process-cost-api/internal/model"
	"github.com/gin-gonic/gin"
)

// Origem do lead por modo de apresentação
const (
	SourceStandalone = "calculator"
	SourceEmbedded   = "calculator-embed"
)

// RecalculateOnChange indica ao front-end que cada edição dispara um recálculo
const RecalculateOnChange = "on_change"

// CalculatorDefaults são os valores iniciais do formulário
type CalculatorDefaults struct {
	TimeUnit     estimate.TimeUnit `json:"time_unit"`
	Period       estimate.Period   `json:"period"`
	ProcessTime  float64           `json:"process_time"`
	ProcessCount float64           `json:"process_count"`
	HourlyWage   float64           `json:"hourly_wage"`
}

// CalculatorSettings descreve como o front-end deve montar a calculadora
type CalculatorSettings struct {
	Mode        config.PresentationMode `json:"mode"`
	ShowHeader  bool                    `json:"show_header"`
	LeadSource  string                  `json:"lead_source"`
	Recalculate string                  `json:"recalculate"`
	Basis       estimate.Basis          `json:"basis"`
	Defaults    CalculatorDefaults      `json:"defaults"`
	TimeUnits   []estimate.TimeUnit     `json:"time_units"`
	Periods     []estimate.Period       `json:"periods"`
}

// CalculatorHandler serve as configurações da calculadora
type CalculatorHandler struct {
	mode   config.PresentationMode
	basis  estimate.Basis
	source string
}

// NewCalculatorHandler cria o handler. source, se vazio, é derivado do modo.
func NewCalculatorHandler(mode config.PresentationMode, basis estimate.Basis, source string) *CalculatorHandler {
	return &CalculatorHandler{mode: mode, basis: basis, source: source}
}

// Settings retorna as configurações para o modo configurado.
// O parâmetro ?mode= sobrescreve explicitamente o modo.
// GET /api/v1/calculator
func (h *CalculatorHandler) Settings(c *gin.Context) {
	mode := h.mode
	if raw := c.Query("mode"); raw != "" {
		parsed, err := config.ParsePresentationMode(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Success: false,
				Error:   "modo inválido",
				Details: err.Error(),
			})
			return
		}
		mode = parsed
	}

	c.JSON(http.StatusOK, model.Response{Success: true, Data: h.settingsFor(mode)})
}

func (h *CalculatorHandler) settingsFor(mode config.PresentationMode) CalculatorSettings {
	// embutida, o host já exibe o próprio cabeçalho
	settings := CalculatorSettings{
		Mode:        mode,
		ShowHeader:  mode == config.ModeStandalone,
		Recalculate: RecalculateOnChange,
		Basis:       h.basis,
		Defaults: CalculatorDefaults{
			TimeUnit:     model.DefaultTimeUnit,
			Period:       model.DefaultPeriod,
			ProcessTime:  30,
			ProcessCount: 10,
			HourlyWage:   20,
		},
		TimeUnits: estimate.TimeUnits(),
		Periods:   estimate.Periods(),
	}

	switch {
	case h.source != "":
		settings.LeadSource = h.source
	case mode == config.ModeEmbedded:
		settings.LeadSource = SourceEmbedded
	default:
		settings.LeadSource = SourceStandalone
	}
	return settings
}
