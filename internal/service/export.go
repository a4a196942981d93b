package service

import (
	"bytes"
	"fmt"

	"github.com/cleberrangel/process-cost-api/internal/estimate"
	"github.com/xuri/excelize/v2"
)

const (
	costSheet  = "Custos"
	inputSheet = "Parâmetros"
)

var costHeaders = []string{"Período", "Fator", "Horas", "Custo"}

// ExportContentType é o MIME type do arquivo gerado
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TableExporter gera a planilha de custos por período
type TableExporter struct {
	estimator *estimate.Estimator
}

// NewTableExporter cria um novo exportador
func NewTableExporter(estimator *estimate.Estimator) *TableExporter {
	return &TableExporter{estimator: estimator}
}

// Export calcula a tabela para o Input e escreve o .xlsx em um buffer
func (e *TableExporter) Export(in estimate.Input) (*bytes.Buffer, error) {
	in = in.Normalized()
	rows := e.estimator.Table(in)

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, costSheet); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}

	if err := writeHeaders(f, costSheet, costHeaders); err != nil {
		return nil, fmt.Errorf("escrever headers: %w", err)
	}

	if err := writeRows(f, rows); err != nil {
		return nil, fmt.Errorf("escrever dados: %w", err)
	}

	if err := e.writeInput(f, in); err != nil {
		return nil, fmt.Errorf("escrever parâmetros: %w", err)
	}

	if err := setColumnWidths(f, costSheet, len(costHeaders)); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: cellBorder("000000"),
	})
	if err != nil {
		return err
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	return nil
}

// writeRows escreve uma linha por período, com estilo alternado
func writeRows(f *excelize.File, rows []estimate.Row) error {
	// 2 casas decimais, formato embutido do Excel
	numFmt := 4
	styleOdd, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"F2F2F2"},
			Pattern: 1,
		},
		Border: cellBorder("D9D9D9"),
		NumFmt: numFmt,
	})
	if err != nil {
		return err
	}

	styleEven, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"FFFFFF"},
			Pattern: 1,
		},
		Border: cellBorder("D9D9D9"),
		NumFmt: numFmt,
	})
	if err != nil {
		return err
	}

	for i, row := range rows {
		excelRow := i + 2 // Linha 1 é header

		style := styleEven
		if i%2 == 1 {
			style = styleOdd
		}

		values := []interface{}{string(row.Period), row.Factor, row.Hours, row.Cost}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, excelRow)
			if err := f.SetCellValue(costSheet, cell, value); err != nil {
				return err
			}
			if err := f.SetCellStyle(costSheet, cell, cell, style); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeInput registra em outra sheet os parâmetros usados no cálculo
func (e *TableExporter) writeInput(f *excelize.File, in estimate.Input) error {
	if _, err := f.NewSheet(inputSheet); err != nil {
		return err
	}
	if err := writeHeaders(f, inputSheet, []string{"Parâmetro", "Valor"}); err != nil {
		return err
	}

	params := [][]interface{}{
		{"Tempo por ocorrência", in.ProcessTime},
		{"Unidade de tempo", string(in.TimeUnit)},
		{"Ocorrências por período", in.ProcessCount},
		{"Valor da hora", in.HourlyWage},
		{"Base de cálculo", string(e.estimator.Basis())},
	}
	for i, param := range params {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(inputSheet, cell, &param); err != nil {
			return err
		}
	}

	return setColumnWidths(f, inputSheet, 2)
}

func setColumnWidths(f *excelize.File, sheet string, numCols int) error {
	for col := 1; col <= numCols; col++ {
		colName, _ := excelize.ColumnNumberToName(col)
		if err := f.SetColWidth(sheet, colName, colName, 20); err != nil {
			return err
		}
	}
	return nil
}

func cellBorder(color string) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: color, Style: 1},
		{Type: "top", Color: color, Style: 1},
		{Type: "bottom", Color: color, Style: 1},
		{Type: "right", Color: color, Style: 1},
	}
}
