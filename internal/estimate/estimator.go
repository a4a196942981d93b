// Package estimate converte o tempo gasto em um processo manual repetitivo
// em um custo monetário estimado.
//
// O cálculo canônico usa a base DayCount: o fator do período é o número de
// dias de uma ocorrência (semana = 7). A base Annual (ocorrências por ano,
// dia útil = 260) só é usada quando configurada explicitamente, e um
// Estimator nunca mistura as duas.
package estimate

import (
	"fmt"
	"math"
)

// Input é um snapshot imutável dos campos do formulário
type Input struct {
	ProcessTime  float64  `json:"process_time"`
	ProcessCount float64  `json:"process_count"`
	TimeUnit     TimeUnit `json:"time_unit"`
	Period       Period   `json:"period"`
	HourlyWage   float64  `json:"hourly_wage"`
}

// Result é o custo derivado de um Input. Nunca é arredondado internamente.
type Result struct {
	Cost  float64 `json:"cost"`
	Hours float64 `json:"hours"`
	Basis Basis   `json:"basis"`
	Input Input   `json:"input"`
}

// Display formata o custo com 2 casas decimais
func (r Result) Display() string {
	return fmt.Sprintf("%.2f", r.Cost)
}

// Row é uma linha da tabela de custos por período
type Row struct {
	Period Period  `json:"period"`
	Factor float64 `json:"factor"`
	Hours  float64 `json:"hours"`
	Cost   float64 `json:"cost"`
}

// Estimator calcula custos usando uma única base de conversão
type Estimator struct {
	basis Basis
}

var canonical = &Estimator{basis: DayCount}

// New cria um Estimator para a base informada
func New(basis Basis) (*Estimator, error) {
	if !basis.Valid() {
		return nil, fmt.Errorf("base de cálculo inválida: %q", basis)
	}
	return &Estimator{basis: basis}, nil
}

// Estimate calcula com a base canônica (DayCount)
func Estimate(in Input) Result {
	return canonical.Estimate(in)
}

// Basis retorna a base usada pelo estimador
func (e *Estimator) Basis() Basis {
	return e.basis
}

// Estimate calcula o custo do processo no período do Input.
// Valores negativos ou não finitos são tratados como 0.
func (e *Estimator) Estimate(in Input) Result {
	in = in.Normalized()
	perOccurrence := hoursPerOccurrence(in)
	factor := e.basis.Factor(in.Period)
	return Result{
		// o fator do período entra por último: semana = 7 × dia, exatamente
		Cost:  clampFinite(perOccurrence * in.HourlyWage * factor),
		Hours: clampFinite(perOccurrence * factor),
		Basis: e.basis,
		Input: in,
	}
}

// Table calcula o mesmo Input para cada período, em ordem crescente
func (e *Estimator) Table(in Input) []Row {
	rows := make([]Row, 0, len(periodOrder))
	for _, p := range periodOrder {
		snapshot := in
		snapshot.Period = p
		res := e.Estimate(snapshot)
		rows = append(rows, Row{
			Period: p,
			Factor: e.basis.Factor(p),
			Hours:  res.Hours,
			Cost:   res.Cost,
		})
	}
	return rows
}

func hoursPerOccurrence(in Input) float64 {
	return in.ProcessTime * in.ProcessCount * in.TimeUnit.Seconds() / secondsPerHour
}

// Normalized retorna uma cópia com os campos numéricos no domínio não negativo
func (in Input) Normalized() Input {
	in.ProcessTime = Normalize(in.ProcessTime)
	in.ProcessCount = Normalize(in.ProcessCount)
	in.HourlyWage = Normalize(in.HourlyWage)
	return in
}

// Normalize converte negativos, NaN e infinitos em 0.
// -0 também vira 0 para o display nunca mostrar "-0.00".
func Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func clampFinite(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return v
}
