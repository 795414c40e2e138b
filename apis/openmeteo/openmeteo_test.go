package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyview/config"
	"skyview/manager"
)

const forecastResponse = `{
  "latitude": 27.947, "longitude": -82.459, "timezone": "America/New_York",
  "current": {"time": "2024-06-01T14:00", "temperature_2m": 31.2, "apparent_temperature": 35.1,
    "precipitation": 0.1, "weather_code": 2, "wind_speed_10m": 4.3, "relative_humidity_2m": 62},
  "daily": {
    "time": ["2024-06-01","2024-06-02","2024-06-03","2024-06-04","2024-06-05","2024-06-06","2024-06-07"],
    "weather_code": [2, 3, 61, 95, 1, 0, null],
    "temperature_2m_max": [32.1, 31.8, 29.5, 30.0, 33.2, 33.9, 34.0],
    "temperature_2m_min": [24.0, 23.9, 23.1, 22.8, 24.4, 25.0, 25.1],
    "precipitation_probability_max": [10, 20, 80, 90, null, 5, 0],
    "wind_speed_10m_max": [5.1, 6.2, 8.0, 9.4, 4.4, 3.9, 4.0]
  }
}`

func serve(t *testing.T, status int, body string, query *url.Values) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if query != nil {
			*query = r.URL.Query()
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestFetch(t *testing.T) {
	var query url.Values
	srv := serve(t, http.StatusOK, forecastResponse, &query)
	o := New(config.Forecast{URL: srv.URL, Days: 7}, nil)

	raw, err := o.Fetch(context.Background(), 27.95, -82.46)

	require.NoError(t, err)
	assert.Equal(t, "27.95", query.Get("latitude"))
	assert.Equal(t, "-82.46", query.Get("longitude"))
	assert.Equal(t, "auto", query.Get("timezone"))
	assert.Equal(t, "7", query.Get("forecast_days"))
	assert.Equal(t, "ms", query.Get("wind_speed_unit"))
	assert.Equal(t, "temperature_2m,apparent_temperature,precipitation,weather_code,wind_speed_10m,relative_humidity_2m", query.Get("current"))
	assert.Equal(t, "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max,wind_speed_10m_max", query.Get("daily"))

	assert.Equal(t, "America/New_York", raw.Timezone)
	assert.Equal(t, 27.947, raw.Latitude)
	assert.Equal(t, manager.CurrentConditions{
		TemperatureC:         31.2,
		ApparentTemperatureC: 35.1,
		PrecipitationMm:      0.1,
		WeatherCode:          2,
		WindSpeedMs:          4.3,
		RelativeHumidityPct:  62,
	}, raw.Current)

	require.Len(t, raw.Daily.Time, 7)
	require.Len(t, raw.Daily.WeatherCode, 7)
	assert.Nil(t, raw.Daily.WeatherCode[6])
	assert.Nil(t, raw.Daily.PrecipProbMax[4])
	assert.Equal(t, 9.4, *raw.Daily.WindSpeedMax[3])
}

func TestFetchWithoutWindSeries(t *testing.T) {
	body := `{"latitude": 1, "longitude": 2,
	  "current": {"temperature_2m": 20},
	  "daily": {"time": ["2024-06-01","2024-06-02"], "temperature_2m_max": [21, 22]}}`
	srv := serve(t, http.StatusOK, body, nil)
	o := New(config.Forecast{URL: srv.URL}, nil)

	raw, err := o.Fetch(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Nil(t, raw.Daily.WindSpeedMax)
	assert.Empty(t, raw.Timezone)

	entries := manager.Shape(raw.Daily)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Nil(t, e.WindMaxMs)
	}
}

func TestFetchDefaultsDays(t *testing.T) {
	var query url.Values
	srv := serve(t, http.StatusOK, forecastResponse, &query)

	_, err := New(config.Forecast{URL: srv.URL}, nil).Fetch(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Equal(t, "7", query.Get("forecast_days"))
}

func TestFetchErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := serve(t, http.StatusBadRequest, `{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`, nil)

		_, err := New(config.Forecast{URL: srv.URL}, nil).Fetch(context.Background(), 100, 0)

		require.ErrorIs(t, err, manager.ErrNetwork)
		assert.Contains(t, err.Error(), "Latitude must be in range")
	})

	t.Run("malformed", func(t *testing.T) {
		srv := serve(t, http.StatusOK, `{"daily": {"time": 3}}`, nil)

		_, err := New(config.Forecast{URL: srv.URL}, nil).Fetch(context.Background(), 0, 0)

		require.ErrorIs(t, err, manager.ErrNetwork)
	})

	t.Run("transport", func(t *testing.T) {
		srv := serve(t, http.StatusOK, forecastResponse, nil)
		addr := srv.URL
		srv.Close()

		_, err := New(config.Forecast{URL: addr}, nil).Fetch(context.Background(), 0, 0)

		require.ErrorIs(t, err, manager.ErrNetwork)
	})
}
