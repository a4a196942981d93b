package model

import (
	"fmt"

	"github.com/cleberrangel/process-cost-api/internal/estimate"
)

const (
	// DefaultTimeUnit e DefaultPeriod são usados quando o cliente não envia o campo
	DefaultTimeUnit = estimate.Second
	DefaultPeriod   = estimate.Day
)

// EstimateRequest representa os campos do formulário da calculadora.
// Campos numéricos ausentes valem 0.
type EstimateRequest struct {
	ProcessTime  float64 `json:"process_time" form:"process_time"`
	ProcessCount float64 `json:"process_count" form:"process_count"`
	TimeUnit     string  `json:"time_unit" form:"time_unit"`
	Period       string  `json:"period" form:"period"`
	HourlyWage   float64 `json:"hourly_wage" form:"hourly_wage"`
}

// ToInput converte a requisição em um snapshot imutável para o estimador
func (r EstimateRequest) ToInput() (estimate.Input, error) {
	unit := DefaultTimeUnit
	if r.TimeUnit != "" {
		u, err := estimate.ParseTimeUnit(r.TimeUnit)
		if err != nil {
			return estimate.Input{}, err
		}
		unit = u
	}

	period := DefaultPeriod
	if r.Period != "" {
		p, err := estimate.ParsePeriod(r.Period)
		if err != nil {
			return estimate.Input{}, err
		}
		period = p
	}

	return estimate.Input{
		ProcessTime:  r.ProcessTime,
		ProcessCount: r.ProcessCount,
		TimeUnit:     unit,
		Period:       period,
		HourlyWage:   r.HourlyWage,
	}.Normalized(), nil
}

// EstimateResponse é o resultado exibido pela calculadora
type EstimateResponse struct {
	Cost        float64           `json:"cost"`
	CostDisplay string            `json:"cost_display"`
	Hours       float64           `json:"hours"`
	Basis       estimate.Basis    `json:"basis"`
	TimeUnit    estimate.TimeUnit `json:"time_unit"`
	Period      estimate.Period   `json:"period"`
}

// NewEstimateResponse monta a resposta a partir do resultado
func NewEstimateResponse(res estimate.Result) EstimateResponse {
	return EstimateResponse{
		Cost:        res.Cost,
		CostDisplay: res.Display(),
		Hours:       res.Hours,
		Basis:       res.Basis,
		TimeUnit:    res.Input.TimeUnit,
		Period:      res.Input.Period,
	}
}

// EstimateTableRow é uma linha da tabela por período
type EstimateTableRow struct {
	Period      estimate.Period `json:"period"`
	Factor      float64         `json:"factor"`
	Hours       float64         `json:"hours"`
	Cost        float64         `json:"cost"`
	CostDisplay string          `json:"cost_display"`
}

// NewEstimateTable converte as linhas do estimador
func NewEstimateTable(rows []estimate.Row) []EstimateTableRow {
	out := make([]EstimateTableRow, len(rows))
	for i, r := range rows {
		out[i] = EstimateTableRow{
			Period:      r.Period,
			Factor:      r.Factor,
			Hours:       r.Hours,
			Cost:        r.Cost,
			CostDisplay: fmt.Sprintf("%.2f", r.Cost),
		}
	}
	return out
}

// LeadRequest é o payload recebido do formulário de contato.
// A presença de name/email é verificada pelo LeadRelay, não pelo binding.
type LeadRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

// LeadSubmission é o que é encaminhado ao webhook de automação
type LeadSubmission struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
