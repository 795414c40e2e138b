package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"skyview/config"
	"skyview/manager"
)

var (
	ErrPermissionDenied = fmt.Errorf("%w: permission denied", manager.ErrGeolocation)
	ErrTimeout          = fmt.Errorf("%w: timed out acquiring position", manager.ErrGeolocation)
	ErrUnavailable      = fmt.Errorf("%w: position unavailable", manager.ErrGeolocation)
)

// New returns a locator that estimates the device position from its public
// IP address. A disabled locator always reports permission denied.
func New(cfg config.Geolocation, logger *zap.SugaredLogger) *ipLocator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &ipLocator{
		client:  resty.New().SetHeader("Accept", "application/json"),
		url:     cfg.URL,
		enabled: cfg.Enabled,
		logger:  logger,
		now:     time.Now,
	}
}

type fix struct {
	lat, lon float64
	at       time.Time
}

type ipLocator struct {
	client  *resty.Client
	url     string
	enabled bool
	logger  *zap.SugaredLogger
	now     func() time.Time

	mu   sync.Mutex
	last *fix
}

// CurrentPosition returns a cached fix younger than opts.MaxAge, otherwise a
// fresh one bounded by opts.Timeout.
func (l *ipLocator) CurrentPosition(ctx context.Context, opts manager.LocateOptions) (float64, float64, error) {
	if !l.enabled {
		return 0, 0, ErrPermissionDenied
	}

	l.mu.Lock()
	last := l.last
	l.mu.Unlock()

	if last != nil && opts.MaxAge > 0 && l.now().Sub(last.at) <= opts.MaxAge {
		l.logger.Debugw("using cached position", "age", l.now().Sub(last.at))
		return last.lat, last.lon, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	lat, lon, err := l.lookup(ctx)
	if err != nil {
		return 0, 0, err
	}

	l.mu.Lock()
	l.last = &fix{lat: lat, lon: lon, at: l.now()}
	l.mu.Unlock()

	return lat, lon, nil
}

func (l *ipLocator) lookup(ctx context.Context) (float64, float64, error) {
	type responseStruct struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}

	response, err := l.client.R().
		SetContext(ctx).
		SetQueryParam("fields", "status,message,lat,lon").
		Get(l.url)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, 0, ErrTimeout
		}
		return 0, 0, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	if response.StatusCode() != http.StatusOK {
		return 0, 0, fmt.Errorf("%w: status code: %d", ErrUnavailable, response.StatusCode())
	}

	var r responseStruct
	if err = json.Unmarshal(response.Body(), &r); err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	if r.Status != "success" {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnavailable, r.Message)
	}

	return r.Lat, r.Lon, nil
}
