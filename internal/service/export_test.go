package service

import (
	"strconv"
	"testing"

	"github.com/cleberrangel/process-cost-api/internal/estimate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportWritesOneRowPerPeriod(t *testing.T) {
	estimator, err := estimate.New(estimate.DayCount)
	require.NoError(t, err)

	in := estimate.Input{
		ProcessTime:  30,
		ProcessCount: 10,
		TimeUnit:     estimate.Second,
		Period:       estimate.Day,
		HourlyWage:   20,
	}

	buf, err := NewTableExporter(estimator).Export(in)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(costSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(estimate.Periods())+1)
	assert.Equal(t, costHeaders, rows[0])

	for i, p := range estimate.Periods() {
		assert.Equal(t, string(p), rows[i+1][0])
	}

	// linha "day": 30s × 10 = 1/12 h × 20 = 1.67
	cost, err := f.GetCellValue(costSheet, "D3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	value, err := strconv.ParseFloat(cost, 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.6667, value, 0.001)
}

func TestExportRecordsInputSheet(t *testing.T) {
	estimator, err := estimate.New(estimate.Annual)
	require.NoError(t, err)

	buf, err := NewTableExporter(estimator).Export(estimate.Input{
		ProcessTime:  -5,
		ProcessCount: 2,
		TimeUnit:     estimate.Minute,
		Period:       estimate.Week,
		HourlyWage:   50,
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(inputSheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Tempo por ocorrência", "0"}, rows[1])
	assert.Equal(t, []string{"Unidade de tempo", "minute"}, rows[2])
	assert.Equal(t, []string{"Base de cálculo", "annual"}, rows[5])
}
