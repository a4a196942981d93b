package estimate

import (
	"fmt"
	"strings"
)

// TimeUnit é a unidade em que uma execução do processo é medida
type TimeUnit string

const (
	Second TimeUnit = "second"
	Minute TimeUnit = "minute"
	Hour   TimeUnit = "hour"
)

// Period é o intervalo de recorrência do processo
type Period string

const (
	WorkDay  Period = "work day"
	Day      Period = "day"
	WorkWeek Period = "work week"
	Week     Period = "week"
	Month    Period = "month"
	Quarter  Period = "quarter"
	Year     Period = "year"
)

// Basis define como um Period é convertido em fator multiplicador
type Basis string

const (
	// DayCount multiplica pelo número de dias de uma ocorrência do período
	DayCount Basis = "day-count"
	// Annual multiplica pelo número de ocorrências do período em um ano
	Annual Basis = "annual"
)

const secondsPerHour = 3600

var secondsPerUnit = map[TimeUnit]float64{
	Second: 1,
	Minute: 60,
	Hour:   3600,
}

var daysPerPeriod = map[Period]float64{
	WorkDay:  1,
	Day:      1,
	WorkWeek: 5,
	Week:     7,
	Month:    30,
	Quarter:  90,
	Year:     365,
}

var occurrencesPerYear = map[Period]float64{
	WorkDay:  260,
	Day:      365,
	WorkWeek: 52,
	Week:     52,
	Month:    12,
	Quarter:  4,
	Year:     1,
}

// ordem de exibição
var (
	timeUnitOrder = []TimeUnit{Second, Minute, Hour}
	periodOrder   = []Period{WorkDay, Day, WorkWeek, Week, Month, Quarter, Year}
)

var timeUnitAliases = map[string]TimeUnit{
	"s":       Second,
	"sec":     Second,
	"secs":    Second,
	"second":  Second,
	"seconds": Second,
	"m":       Minute,
	"min":     Minute,
	"mins":    Minute,
	"minute":  Minute,
	"minutes": Minute,
	"h":       Hour,
	"hr":      Hour,
	"hrs":     Hour,
	"hour":    Hour,
	"hours":   Hour,
}

// TimeUnits retorna as unidades suportadas em ordem de exibição
func TimeUnits() []TimeUnit {
	out := make([]TimeUnit, len(timeUnitOrder))
	copy(out, timeUnitOrder)
	return out
}

// Periods retorna os períodos suportados em ordem crescente de duração
func Periods() []Period {
	out := make([]Period, len(periodOrder))
	copy(out, periodOrder)
	return out
}

// Seconds retorna a duração da unidade em segundos (0 se desconhecida)
func (u TimeUnit) Seconds() float64 {
	return secondsPerUnit[u]
}

// Valid indica se a unidade pertence ao domínio
func (u TimeUnit) Valid() bool {
	_, ok := secondsPerUnit[u]
	return ok
}

// Days retorna quantos dias uma ocorrência do período representa
func (p Period) Days() float64 {
	return daysPerPeriod[p]
}

// PerYear retorna quantas ocorrências do período cabem em um ano
func (p Period) PerYear() float64 {
	return occurrencesPerYear[p]
}

// Valid indica se o período pertence ao domínio
func (p Period) Valid() bool {
	_, ok := daysPerPeriod[p]
	return ok
}

// Factor retorna o multiplicador do período segundo a base
func (b Basis) Factor(p Period) float64 {
	switch b {
	case Annual:
		return p.PerYear()
	case DayCount:
		return p.Days()
	default:
		return 0
	}
}

// Valid indica se a base é conhecida
func (b Basis) Valid() bool {
	return b == DayCount || b == Annual
}

// ParseTimeUnit converte texto livre ("Minutes", "hr", "s") em TimeUnit
func ParseTimeUnit(s string) (TimeUnit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if u, ok := timeUnitAliases[key]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unidade de tempo inválida: %q", s)
}

// ParsePeriod converte texto livre ("Work Day", "work_day", "workday") em Period
func ParsePeriod(s string) (Period, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")

	switch key {
	case "workday":
		return WorkDay, nil
	case "workweek":
		return WorkWeek, nil
	}

	p := Period(key)
	if p.Valid() {
		return p, nil
	}
	// aceita plural simples ("weeks", "months")
	if p = Period(strings.TrimSuffix(key, "s")); p.Valid() {
		return p, nil
	}
	return "", fmt.Errorf("período inválido: %q", s)
}

// ParseBasis converte texto em Basis
func ParseBasis(s string) (Basis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day-count", "daycount", "day_count", "days":
		return DayCount, nil
	case "annual", "yearly":
		return Annual, nil
	}
	return "", fmt.Errorf("base de cálculo inválida: %q", s)
}
