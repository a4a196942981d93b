package service

import (
	"github.com/cleberrangel/process-cost-api/internal/estimate"
	"github.com/cleberrangel/process-cost-api/internal/model"
)

// Calculator adapta o estimador aos formatos da API.
// É usado tanto pelo endpoint REST quanto pelas sessões ao vivo.
type Calculator struct {
	estimator *estimate.Estimator
}

// NewCalculator cria uma calculadora com a base informada
func NewCalculator(basis estimate.Basis) (*Calculator, error) {
	estimator, err := estimate.New(basis)
	if err != nil {
		return nil, err
	}
	return &Calculator{estimator: estimator}, nil
}

// Basis retorna a base de cálculo em uso
func (c *Calculator) Basis() estimate.Basis {
	return c.estimator.Basis()
}

// Estimator expõe o estimador (exportação)
func (c *Calculator) Estimator() *estimate.Estimator {
	return c.estimator
}

// Compute calcula o custo de uma requisição.
// Só retorna erro quando a unidade ou o período não são reconhecidos.
func (c *Calculator) Compute(req model.EstimateRequest) (model.EstimateResponse, error) {
	in, err := req.ToInput()
	if err != nil {
		return model.EstimateResponse{}, err
	}
	return model.NewEstimateResponse(c.estimator.Estimate(in)), nil
}

// Table calcula a requisição para todos os períodos
func (c *Calculator) Table(req model.EstimateRequest) ([]model.EstimateTableRow, error) {
	in, err := req.ToInput()
	if err != nil {
		return nil, err
	}
	return model.NewEstimateTable(c.estimator.Table(in)), nil
}
