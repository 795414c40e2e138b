package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"skyview/apis"
	"skyview/config"
	"skyview/manager"
)

const defaultDays = 7

var (
	currentFields = []string{
		"temperature_2m",
		"apparent_temperature",
		"precipitation",
		"weather_code",
		"wind_speed_10m",
		"relative_humidity_2m",
	}
	dailyFields = []string{
		"weather_code",
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_probability_max",
		"wind_speed_10m_max",
	}
)

func New(cfg config.Forecast, logger *zap.SugaredLogger) *openMeteo {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	days := cfg.Days
	if days <= 0 {
		days = defaultDays
	}

	return &openMeteo{
		client: resty.New().SetHeader("Accept", "application/json"),
		url:    cfg.URL,
		days:   days,
		logger: logger,
	}
}

type openMeteo struct {
	client *resty.Client
	url    string
	days   int
	logger *zap.SugaredLogger
}

// Fetch returns current conditions and the raw daily series at lat, lon.
func (o openMeteo) Fetch(ctx context.Context, lat, lon float64) (manager.RawWeather, error) {
	params := map[string]string{
		"latitude":        strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude":       strconv.FormatFloat(lon, 'f', -1, 64),
		"timezone":        "auto",
		"current":         strings.Join(currentFields, ","),
		"daily":           strings.Join(dailyFields, ","),
		"forecast_days":   strconv.Itoa(o.days),
		"wind_speed_unit": "ms",
	}

	o.logger.Debugw("forecast request", "url", o.url, "latitude", lat, "longitude", lon)

	return o.processRequest(ctx, params)
}

func (o openMeteo) processRequest(ctx context.Context, params map[string]string) (manager.RawWeather, error) {
	response, err := o.client.R().SetContext(ctx).SetQueryParams(params).Get(o.url)
	if err != nil {
		return manager.RawWeather{}, apis.TransportError(err)
	}

	if response.StatusCode() != http.StatusOK {
		return manager.RawWeather{}, apis.StatusError(response)
	}

	var info info
	if err = info.unmarshal(response.Body()); err != nil {
		return manager.RawWeather{}, fmt.Errorf("%w: malformed forecast response: %s", manager.ErrNetwork, err)
	}

	return info.RawWeather, nil
}

type info struct {
	manager.RawWeather
}

func (i *info) unmarshal(data []byte) error {
	type result struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
		Current   struct {
			Temperature2m       float64 `json:"temperature_2m"`
			ApparentTemperature float64 `json:"apparent_temperature"`
			Precipitation       float64 `json:"precipitation"`
			WeatherCode         int     `json:"weather_code"`
			WindSpeed10m        float64 `json:"wind_speed_10m"`
			RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
		} `json:"current"`
		// wind_speed_10m_max is not served for every model; a missing
		// series decodes to nil.
		Daily struct {
			Time                        []string   `json:"time"`
			WeatherCode                 []*int     `json:"weather_code"`
			Temperature2mMax            []*float64 `json:"temperature_2m_max"`
			Temperature2mMin            []*float64 `json:"temperature_2m_min"`
			PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
			WindSpeed10mMax             []*float64 `json:"wind_speed_10m_max"`
		} `json:"daily"`
	}

	var r result

	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	i.Latitude = r.Latitude
	i.Longitude = r.Longitude
	i.Timezone = r.Timezone
	i.Current = manager.CurrentConditions{
		TemperatureC:         r.Current.Temperature2m,
		ApparentTemperatureC: r.Current.ApparentTemperature,
		PrecipitationMm:      r.Current.Precipitation,
		WeatherCode:          r.Current.WeatherCode,
		WindSpeedMs:          r.Current.WindSpeed10m,
		RelativeHumidityPct:  r.Current.RelativeHumidity2m,
	}
	i.Daily = manager.RawDaily{
		Time:          r.Daily.Time,
		WeatherCode:   r.Daily.WeatherCode,
		TempMax:       r.Daily.Temperature2mMax,
		TempMin:       r.Daily.Temperature2mMin,
		PrecipProbMax: r.Daily.PrecipitationProbabilityMax,
		WindSpeedMax:  r.Daily.WindSpeed10mMax,
	}

	return nil
}
