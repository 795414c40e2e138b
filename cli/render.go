package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"skyview/manager"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// Report is a WeatherView converted to a unit system for display.
// Unknown forecast values stay nil and are omitted.
type Report struct {
	Location  string        `json:"location" yaml:"location"`
	Latitude  float64       `json:"latitude" yaml:"latitude"`
	Longitude float64       `json:"longitude" yaml:"longitude"`
	Timezone  string        `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Units     string        `json:"units" yaml:"units"`
	Current   ReportCurrent `json:"current" yaml:"current"`
	Forecast  []ReportDay   `json:"forecast" yaml:"forecast"`
}

type ReportCurrent struct {
	Conditions      string  `json:"conditions" yaml:"conditions"`
	WeatherCode     int     `json:"weather_code" yaml:"weather_code"`
	Temperature     float64 `json:"temperature" yaml:"temperature"`
	FeelsLike       float64 `json:"feels_like" yaml:"feels_like"`
	PrecipitationMm float64 `json:"precipitation_mm" yaml:"precipitation_mm"`
	WindSpeed       float64 `json:"wind_speed" yaml:"wind_speed"`
	HumidityPct     float64 `json:"humidity_pct" yaml:"humidity_pct"`
}

type ReportDay struct {
	Date          string   `json:"date" yaml:"date"`
	Conditions    string   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	WeatherCode   *int     `json:"weather_code,omitempty" yaml:"weather_code,omitempty"`
	TempMax       *float64 `json:"temp_max,omitempty" yaml:"temp_max,omitempty"`
	TempMin       *float64 `json:"temp_min,omitempty" yaml:"temp_min,omitempty"`
	PrecipProbPct *float64 `json:"precip_prob_pct,omitempty" yaml:"precip_prob_pct,omitempty"`
	WindMax       *float64 `json:"wind_max,omitempty" yaml:"wind_max,omitempty"`
}

func NewReport(view *manager.WeatherView, unit manager.UnitSystem) Report {
	r := Report{
		Location:  view.Place.Label(),
		Latitude:  view.Latitude,
		Longitude: view.Longitude,
		Timezone:  view.Timezone,
		Units:     unit.String(),
		Current: ReportCurrent{
			Conditions:      describeWeather(view.Current.WeatherCode),
			WeatherCode:     view.Current.WeatherCode,
			Temperature:     manager.ConvertTemperature(view.Current.TemperatureC, unit),
			FeelsLike:       manager.ConvertTemperature(view.Current.ApparentTemperatureC, unit),
			PrecipitationMm: view.Current.PrecipitationMm,
			WindSpeed:       manager.ConvertSpeed(view.Current.WindSpeedMs, unit),
			HumidityPct:     view.Current.RelativeHumidityPct,
		},
		Forecast: make([]ReportDay, 0, len(view.Forecast)),
	}

	for _, day := range view.Forecast {
		d := ReportDay{
			Date:          day.Date,
			WeatherCode:   day.WeatherCode,
			TempMax:       manager.ConvertKnown(day.TempMaxC, unit, manager.ConvertTemperature),
			TempMin:       manager.ConvertKnown(day.TempMinC, unit, manager.ConvertTemperature),
			PrecipProbPct: day.PrecipProbPct,
			WindMax:       manager.ConvertKnown(day.WindMaxMs, unit, manager.ConvertSpeed),
		}
		if day.WeatherCode != nil {
			d.Conditions = describeWeather(*day.WeatherCode)
		}
		r.Forecast = append(r.Forecast, d)
	}

	return r
}

func render(w io.Writer, view *manager.WeatherView, unit manager.UnitSystem, format string) error {
	report := NewReport(view, unit)

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case formatText, "":
		renderText(w, report, unit)
		return nil
	}

	return fmt.Errorf("unknown output format %q", format)
}

func renderText(w io.Writer, r Report, unit manager.UnitSystem) {
	temp := manager.TemperatureSymbol(unit)
	speed := manager.SpeedSymbol(unit)

	fmt.Fprintf(w, "LOCATION\t %s\n", r.Location)
	fmt.Fprintf(w, "COORDS\t\t %.3f, %.3f", r.Latitude, r.Longitude)
	if r.Timezone != "" {
		fmt.Fprintf(w, " (%s)", r.Timezone)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "NOW\t\t %.0f%s, feels like %.0f%s, %s\n",
		r.Current.Temperature, temp, r.Current.FeelsLike, temp, r.Current.Conditions)
	fmt.Fprintf(w, "\t\t wind %.1f %s, humidity %.0f%%, precipitation %.1f mm\n",
		r.Current.WindSpeed, speed, r.Current.HumidityPct, r.Current.PrecipitationMm)

	if len(r.Forecast) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%-10s  %-22s  %6s  %6s  %5s  %9s\n", "DATE", "CONDITIONS", "HIGH", "LOW", "RAIN", "WIND")
	for _, d := range r.Forecast {
		fmt.Fprintf(w, "%-10s  %-22s  %6s  %6s  %5s  %9s\n",
			d.Date,
			d.Conditions,
			known(d.TempMax, "%.0f"+temp),
			known(d.TempMin, "%.0f"+temp),
			known(d.PrecipProbPct, "%.0f%%"),
			known(d.WindMax, "%.1f "+speed),
		)
	}
}

func renderSuggestions(w io.Writer, places []manager.Place) {
	for i, p := range places {
		fmt.Fprintf(w, "%d. %s (%.3f, %.3f)\n", i+1, p.Label(), p.Latitude, p.Longitude)
	}
}

// known formats v, or returns "" when v is unknown.
func known(v *float64, format string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf(format, *v))
}
