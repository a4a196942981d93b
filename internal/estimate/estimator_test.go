package estimate

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genTimeUnit() gopter.Gen {
	return gen.OneConstOf(Second, Minute, Hour)
}

func genPeriod() gopter.Gen {
	return gen.OneConstOf(WorkDay, Day, WorkWeek, Week, Month, Quarter, Year)
}

func genBasis() gopter.Gen {
	return gen.OneConstOf(DayCount, Annual)
}

func genAmount() gopter.Gen {
	return gen.Float64Range(0, 1e6)
}

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

// **Feature: process-cost-calculator, Property 1: Non-negative finite result**
// Para quaisquer entradas não negativas e qualquer par unidade/período,
// o custo é não negativo e finito.
func TestEstimateNonNegativeFinite(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("cost is non-negative and finite", prop.ForAll(
		func(processTime, processCount, wage float64, unit TimeUnit, period Period, basis Basis) bool {
			e, err := New(basis)
			if err != nil {
				return false
			}
			res := e.Estimate(Input{
				ProcessTime:  processTime,
				ProcessCount: processCount,
				TimeUnit:     unit,
				Period:       period,
				HourlyWage:   wage,
			})
			return res.Cost >= 0 && !math.IsInf(res.Cost, 0) && !math.IsNaN(res.Cost)
		},
		genAmount(), genAmount(), genAmount(), genTimeUnit(), genPeriod(), genBasis(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// **Feature: process-cost-calculator, Property 2: Zero propagation**
// Se tempo, quantidade ou salário for 0, o custo é exatamente 0.
func TestEstimateZeroPropagation(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("any zero factor yields exactly zero", prop.ForAll(
		func(a, b float64, which int, unit TimeUnit, period Period) bool {
			in := Input{TimeUnit: unit, Period: period}
			switch which {
			case 0:
				in.ProcessTime, in.ProcessCount, in.HourlyWage = 0, a, b
			case 1:
				in.ProcessTime, in.ProcessCount, in.HourlyWage = a, 0, b
			default:
				in.ProcessTime, in.ProcessCount, in.HourlyWage = a, b, 0
			}
			return Estimate(in).Cost == 0
		},
		genAmount(), genAmount(), gen.IntRange(0, 2), genTimeUnit(), genPeriod(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// **Feature: process-cost-calculator, Property 3: Unit consistency**
// T minutos equivalem a 60·T segundos, mantidas as demais entradas.
func TestEstimateUnitConsistency(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("minutes equal sixty times seconds", prop.ForAll(
		func(processTime, processCount, wage float64, period Period) bool {
			inMinutes := Estimate(Input{
				ProcessTime:  processTime,
				ProcessCount: processCount,
				TimeUnit:     Minute,
				Period:       period,
				HourlyWage:   wage,
			})
			inSeconds := Estimate(Input{
				ProcessTime:  processTime * 60,
				ProcessCount: processCount,
				TimeUnit:     Second,
				Period:       period,
				HourlyWage:   wage,
			})
			return almostEqual(inMinutes.Cost, inSeconds.Cost)
		},
		genAmount(), genAmount(), genAmount(), genPeriod(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// **Feature: process-cost-calculator, Property 4: Period monotonicity**
// Na base DayCount, semana é exatamente 7× o dia.
func TestEstimateWeekIsSevenDays(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("week is exactly seven times day", prop.ForAll(
		func(processTime, processCount, wage float64, unit TimeUnit) bool {
			in := Input{
				ProcessTime:  processTime,
				ProcessCount: processCount,
				TimeUnit:     unit,
				HourlyWage:   wage,
			}
			in.Period = Day
			day := Estimate(in)
			in.Period = Week
			week := Estimate(in)
			return week.Cost == 7*day.Cost
		},
		genAmount(), genAmount(), genAmount(), genTimeUnit(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// **Feature: process-cost-calculator, Property 5: Idempotence**
func TestEstimateIdempotent(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("same input yields same output", prop.ForAll(
		func(processTime, processCount, wage float64, unit TimeUnit, period Period, basis Basis) bool {
			e, _ := New(basis)
			in := Input{
				ProcessTime:  processTime,
				ProcessCount: processCount,
				TimeUnit:     unit,
				Period:       period,
				HourlyWage:   wage,
			}
			first := e.Estimate(in)
			second := e.Estimate(in)
			return first == second
		},
		genAmount(), genAmount(), genAmount(), genTimeUnit(), genPeriod(), genBasis(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestEstimateScenarios(t *testing.T) {
	tests := []struct {
		name    string
		basis   Basis
		input   Input
		cost    float64
		display string
	}{
		{
			name:  "30s x10 per day at $20",
			basis: DayCount,
			input: Input{
				ProcessTime:  30,
				ProcessCount: 10,
				TimeUnit:     Second,
				Period:       Day,
				HourlyWage:   20,
			},
			cost:    300.0 / 3600.0 * 20,
			display: "1.67",
		},
		{
			name:  "10min x5 per work day at $25 annualised",
			basis: Annual,
			input: Input{
				ProcessTime:  10,
				ProcessCount: 5,
				TimeUnit:     Minute,
				Period:       WorkDay,
				HourlyWage:   25,
			},
			cost:    10.0 / 60.0 * 1300 * 25,
			display: "5416.67",
		},
		{
			name:  "1h x1 per work week at $50",
			basis: DayCount,
			input: Input{
				ProcessTime:  1,
				ProcessCount: 1,
				TimeUnit:     Hour,
				Period:       WorkWeek,
				HourlyWage:   50,
			},
			cost:    250,
			display: "250.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.basis)
			require.NoError(t, err)

			res := e.Estimate(tt.input)
			assert.InDelta(t, tt.cost, res.Cost, 1e-9)
			assert.Equal(t, tt.display, res.Display())
			assert.Equal(t, tt.basis, res.Basis)
		})
	}
}

func TestEstimateNormalizesOutOfDomainInput(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"negative time", Input{ProcessTime: -5, ProcessCount: 10, TimeUnit: Second, Period: Day, HourlyWage: 20}},
		{"negative count", Input{ProcessTime: 5, ProcessCount: -10, TimeUnit: Second, Period: Day, HourlyWage: 20}},
		{"negative wage", Input{ProcessTime: 5, ProcessCount: 10, TimeUnit: Second, Period: Day, HourlyWage: -20}},
		{"negative zero time", Input{ProcessTime: math.Copysign(0, -1), ProcessCount: 10, TimeUnit: Second, Period: Day, HourlyWage: 20}},
		{"negative zero wage", Input{ProcessTime: 5, ProcessCount: 10, TimeUnit: Second, Period: Day, HourlyWage: math.Copysign(0, -1)}},
		{"NaN time", Input{ProcessTime: math.NaN(), ProcessCount: 10, TimeUnit: Second, Period: Day, HourlyWage: 20}},
		{"infinite wage", Input{ProcessTime: 5, ProcessCount: 10, TimeUnit: Second, Period: Day, HourlyWage: math.Inf(1)}},
		{"unknown unit", Input{ProcessTime: 5, ProcessCount: 10, TimeUnit: "fortnight", Period: Day, HourlyWage: 20}},
		{"unknown period", Input{ProcessTime: 5, ProcessCount: 10, TimeUnit: Second, Period: "decade", HourlyWage: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Estimate(tt.input)
			assert.Equal(t, 0.0, res.Cost)
			assert.False(t, math.Signbit(res.Cost), "cost must not be -0")
			assert.False(t, math.Signbit(res.Hours), "hours must not be -0")
			assert.Equal(t, "0.00", res.Display())
		})
	}
}

func TestEstimateClampsOverflow(t *testing.T) {
	res := Estimate(Input{
		ProcessTime:  math.MaxFloat64,
		ProcessCount: math.MaxFloat64,
		TimeUnit:     Hour,
		Period:       Year,
		HourlyWage:   1,
	})
	assert.Equal(t, math.MaxFloat64, res.Cost)
}

func TestTableCoversEveryPeriod(t *testing.T) {
	e, err := New(DayCount)
	require.NoError(t, err)

	in := Input{ProcessTime: 30, ProcessCount: 10, TimeUnit: Second, Period: Week, HourlyWage: 20}
	rows := e.Table(in)

	require.Len(t, rows, len(Periods()))
	for i, p := range Periods() {
		assert.Equal(t, p, rows[i].Period)
		assert.Equal(t, p.Days(), rows[i].Factor)

		snapshot := in
		snapshot.Period = p
		assert.Equal(t, Estimate(snapshot).Cost, rows[i].Cost)
	}
	assert.Equal(t, Week, in.Period, "input snapshot must not be mutated")
}

func TestNewRejectsUnknownBasis(t *testing.T) {
	_, err := New("lunar")
	assert.Error(t, err)
}

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= scale*1e-12
}
