package geolocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyview/config"
	"skyview/manager"
)

func serve(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func TestCurrentPosition(t *testing.T) {
	srv, hits := serve(t, respond(`{"status":"success","lat":51.5072,"lon":-0.1276}`))
	l := New(config.Geolocation{URL: srv.URL, Enabled: true}, nil)

	lat, lon, err := l.CurrentPosition(context.Background(), manager.DefaultLocateOptions)

	require.NoError(t, err)
	assert.Equal(t, 51.5072, lat)
	assert.Equal(t, -0.1276, lon)
	assert.Equal(t, int64(1), hits.Load())
}

func TestCurrentPositionUsesRecentFix(t *testing.T) {
	srv, hits := serve(t, respond(`{"status":"success","lat":1,"lon":2}`))
	l := New(config.Geolocation{URL: srv.URL, Enabled: true}, nil)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, _, err := l.CurrentPosition(context.Background(), manager.DefaultLocateOptions)
	require.NoError(t, err)

	now = now.Add(4 * time.Minute)
	lat, lon, err := l.CurrentPosition(context.Background(), manager.DefaultLocateOptions)
	require.NoError(t, err)
	assert.Equal(t, 1.0, lat)
	assert.Equal(t, 2.0, lon)
	assert.Equal(t, int64(1), hits.Load())

	now = now.Add(2 * time.Minute)
	_, _, err = l.CurrentPosition(context.Background(), manager.DefaultLocateOptions)
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load())
}

func TestCurrentPositionDisabled(t *testing.T) {
	srv, hits := serve(t, respond(`{"status":"success","lat":1,"lon":2}`))
	l := New(config.Geolocation{URL: srv.URL, Enabled: false}, nil)

	_, _, err := l.CurrentPosition(context.Background(), manager.DefaultLocateOptions)

	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, err, manager.ErrGeolocation)
	assert.Zero(t, hits.Load())
}

func TestCurrentPositionTimeout(t *testing.T) {
	srv, _ := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	l := New(config.Geolocation{URL: srv.URL, Enabled: true}, nil)

	_, _, err := l.CurrentPosition(context.Background(), manager.LocateOptions{Timeout: 20 * time.Millisecond})

	require.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, manager.ErrGeolocation)
}

func TestCurrentPositionUnavailable(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"lookup failed": respond(`{"status":"fail","message":"reserved range"}`),
		"bad status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"malformed": respond(`not json`),
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv, _ := serve(t, handler)
			l := New(config.Geolocation{URL: srv.URL, Enabled: true}, nil)

			_, _, err := l.CurrentPosition(context.Background(), manager.DefaultLocateOptions)

			require.ErrorIs(t, err, ErrUnavailable)
			assert.ErrorIs(t, err, manager.ErrGeolocation)
		})
	}
}
