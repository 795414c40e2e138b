package manager

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Geocoding resolves free text into places.
type Geocoding interface {
	// Suggest is best effort: failures yield an empty slice, never an error.
	Suggest(ctx context.Context, text string, limit int) []Place
	Resolve(ctx context.Context, text string) (Place, error)
}

// Weather fetches current conditions and the raw daily series for a point.
type Weather interface {
	Fetch(ctx context.Context, lat, lon float64) (RawWeather, error)
}

// Locator supplies the device position.
type Locator interface {
	CurrentPosition(ctx context.Context, opts LocateOptions) (lat, lon float64, err error)
}

type LocateOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

// Place is a resolved location. ID is zero for synthetic places.
type Place struct {
	ID        int64   `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Country   string  `json:"country,omitempty" yaml:"country,omitempty"`
	Admin1    string  `json:"admin1,omitempty" yaml:"admin1,omitempty"`
	Admin2    string  `json:"admin2,omitempty" yaml:"admin2,omitempty"`
	Admin3    string  `json:"admin3,omitempty" yaml:"admin3,omitempty"`
	Admin4    string  `json:"admin4,omitempty" yaml:"admin4,omitempty"`
}

// Label joins the non-empty name, admin1 and country with ", ".
func (p Place) Label() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Name, p.Admin1, p.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// SyntheticPlace builds an unidentified place labelled "(lat, lon)".
func SyntheticPlace(lat, lon float64) Place {
	return Place{
		Name:      fmt.Sprintf("(%.3f, %.3f)", lat, lon),
		Latitude:  lat,
		Longitude: lon,
	}
}

type CurrentConditions struct {
	TemperatureC         float64 `json:"temperature_c" yaml:"temperature_c"`
	ApparentTemperatureC float64 `json:"apparent_temperature_c" yaml:"apparent_temperature_c"`
	PrecipitationMm      float64 `json:"precipitation_mm" yaml:"precipitation_mm"`
	WeatherCode          int     `json:"weather_code" yaml:"weather_code"`
	WindSpeedMs          float64 `json:"wind_speed_ms" yaml:"wind_speed_ms"`
	RelativeHumidityPct  float64 `json:"relative_humidity_pct" yaml:"relative_humidity_pct"`
}

// DailyForecastEntry holds one day. Nil fields are unknown.
type DailyForecastEntry struct {
	Date          string   `json:"date" yaml:"date"`
	WeatherCode   *int     `json:"weather_code,omitempty" yaml:"weather_code,omitempty"`
	TempMaxC      *float64 `json:"temp_max_c,omitempty" yaml:"temp_max_c,omitempty"`
	TempMinC      *float64 `json:"temp_min_c,omitempty" yaml:"temp_min_c,omitempty"`
	PrecipProbPct *float64 `json:"precip_prob_pct,omitempty" yaml:"precip_prob_pct,omitempty"`
	WindMaxMs     *float64 `json:"wind_max_ms,omitempty" yaml:"wind_max_ms,omitempty"`
}

// RawDaily mirrors the service's parallel arrays. A nil slice means the
// series was absent, a nil element means the value was null.
type RawDaily struct {
	Time          []string
	WeatherCode   []*int
	TempMax       []*float64
	TempMin       []*float64
	PrecipProbMax []*float64
	WindSpeedMax  []*float64
}

type RawWeather struct {
	Latitude  float64
	Longitude float64
	Timezone  string
	Current   CurrentConditions
	Daily     RawDaily
}

// WeatherView is the unit handed to the presentation layer. It is replaced
// wholesale and never mutated after publication.
type WeatherView struct {
	Place     Place                `json:"place" yaml:"place"`
	Latitude  float64              `json:"latitude" yaml:"latitude"`
	Longitude float64              `json:"longitude" yaml:"longitude"`
	Timezone  string               `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Current   CurrentConditions    `json:"current" yaml:"current"`
	Forecast  []DailyForecastEntry `json:"forecast" yaml:"forecast"`
}
