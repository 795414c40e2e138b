package manager

import (
	"fmt"
	"strings"
)

// ForecastDays is the number of daily entries kept in a view.
const ForecastDays = 5

const msToMph = 2.236936

type UnitSystem int

const (
	Metric UnitSystem = iota
	Imperial
)

func (u UnitSystem) String() string {
	if u == Imperial {
		return "imperial"
	}
	return "metric"
}

// ParseUnitSystem accepts "metric" or "imperial", case-insensitively.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric", "":
		return Metric, nil
	case "imperial":
		return Imperial, nil
	}
	return Metric, fmt.Errorf("%w: unknown unit system %q", ErrValidation, s)
}

// Shape zips the parallel daily arrays by index and keeps the first
// ForecastDays entries. Upstream order is preserved as is.
func Shape(raw RawDaily) []DailyForecastEntry {
	n := len(raw.Time)
	if n > ForecastDays {
		n = ForecastDays
	}

	entries := make([]DailyForecastEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, DailyForecastEntry{
			Date:          raw.Time[i],
			WeatherCode:   at(raw.WeatherCode, i),
			TempMaxC:      at(raw.TempMax, i),
			TempMinC:      at(raw.TempMin, i),
			PrecipProbPct: at(raw.PrecipProbMax, i),
			WindMaxMs:     at(raw.WindSpeedMax, i),
		})
	}
	return entries
}

func at[T any](series []*T, i int) *T {
	if i >= len(series) || series[i] == nil {
		return nil
	}
	v := *series[i]
	return &v
}

func ConvertTemperature(celsius float64, unit UnitSystem) float64 {
	if unit == Imperial {
		return celsius*9/5 + 32
	}
	return celsius
}

func ConvertSpeed(metersPerSecond float64, unit UnitSystem) float64 {
	if unit == Imperial {
		return metersPerSecond * msToMph
	}
	return metersPerSecond
}

// ConvertKnown applies conv to v, keeping unknown values unknown.
func ConvertKnown(v *float64, unit UnitSystem, conv func(float64, UnitSystem) float64) *float64 {
	if v == nil {
		return nil
	}
	out := conv(*v, unit)
	return &out
}

func TemperatureSymbol(unit UnitSystem) string {
	if unit == Imperial {
		return "°F"
	}
	return "°C"
}

func SpeedSymbol(unit UnitSystem) string {
	if unit == Imperial {
		return "mph"
	}
	return "m/s"
}
