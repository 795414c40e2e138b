package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrSuperseded is returned to the caller of an attempt whose outcome was
// dropped because a newer attempt started after it.
var ErrSuperseded = errors.New("superseded by a newer request")

// ErrNoGeocoder is returned when free text is submitted to a pipeline built
// without a geocoding client.
var ErrNoGeocoder = errors.New("geocoding is not configured")

const (
	defaultSuggestLimit    = 5
	defaultSuggestDebounce = 300 * time.Millisecond
)

// DefaultLocateOptions bounds a device location request to 10s and accepts
// a fix up to 5 minutes old.
var DefaultLocateOptions = LocateOptions{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaxAge:       5 * time.Minute,
}

type Status int

const (
	Idle Status = iota
	Resolving
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "idle"
}

// State is what the presentation layer renders. View is either nil or
// fully populated.
type State struct {
	Status      Status
	View        *WeatherView
	Err         error
	Loading     bool
	Suggestions []Place
	Units       UnitSystem
	Query       string
}

type Option func(*Pipeline)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithLocateOptions(opts LocateOptions) Option {
	return func(p *Pipeline) { p.locate = opts }
}

func WithSuggestDebounce(delay time.Duration) Option {
	return func(p *Pipeline) { p.debouncer = NewDebouncer(delay) }
}

func WithSuggestLimit(limit int) Option {
	return func(p *Pipeline) {
		if limit > 0 {
			p.suggestLimit = limit
		}
	}
}

func WithUnits(unit UnitSystem) Option {
	return func(p *Pipeline) { p.state.Units = unit }
}

// Pipeline resolves user input to a WeatherView. Only the most recently
// started attempt may commit its outcome.
type Pipeline struct {
	weather   Weather
	geocoding Geocoding
	locator   Locator

	logger       *zap.SugaredLogger
	locate       LocateOptions
	suggestLimit int
	debouncer    *Debouncer

	mu         sync.Mutex
	requestSeq uint64
	suggestSeq uint64
	version    uint64
	state      State

	notifyMu  sync.Mutex
	delivered uint64
	listeners []func(State)
}

func New(weather Weather, opts ...Option) *Pipeline {
	p := &Pipeline{
		weather:      weather,
		logger:       zap.NewNop().Sugar(),
		locate:       DefaultLocateOptions,
		suggestLimit: defaultSuggestLimit,
		debouncer:    NewDebouncer(defaultSuggestDebounce),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) SetGeocoding(geocoding Geocoding) {
	p.geocoding = geocoding
}

func (p *Pipeline) SetLocator(locator Locator) {
	p.locator = locator
}

// Subscribe registers fn to receive a snapshot after every change.
// fn must not call back into the pipeline's intents synchronously.
func (p *Pipeline) Subscribe(fn func(State)) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Pipeline) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Submit classifies text and resolves it to a view. Empty input is ignored.
func (p *Pipeline) Submit(ctx context.Context, text string) (*WeatherView, error) {
	in := Classify(text)
	if in.Text == "" {
		return nil, nil
	}

	p.debouncer.Cancel()
	token := p.begin(func(s *State) {
		s.Query = in.Text
		s.Suggestions = nil
		p.suggestSeq++
	})

	if in.Coordinate {
		return p.fetch(ctx, token, SyntheticPlace(in.Lat, in.Lon))
	}

	if p.geocoding == nil {
		return nil, p.fail(token, ErrNoGeocoder)
	}

	place, err := p.geocoding.Resolve(ctx, in.Text)
	if err != nil {
		return nil, p.fail(token, err)
	}

	return p.fetch(ctx, token, place)
}

// PickSuggestion fetches weather for an already resolved place.
func (p *Pipeline) PickSuggestion(ctx context.Context, place Place) (*WeatherView, error) {
	p.debouncer.Cancel()
	token := p.begin(func(s *State) {
		s.Query = place.Label()
		s.Suggestions = nil
		p.suggestSeq++
	})
	return p.fetch(ctx, token, place)
}

// UseMyLocation asks the locator for the device position and fetches
// weather there. A locator failure makes no network call to either service.
func (p *Pipeline) UseMyLocation(ctx context.Context) (*WeatherView, error) {
	token := p.begin(nil)

	if p.locator == nil {
		return nil, p.fail(token, fmt.Errorf("%w: location capability unavailable", ErrGeolocation))
	}

	lctx := ctx
	if p.locate.Timeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, p.locate.Timeout)
		defer cancel()
	}

	lat, lon, err := p.locator.CurrentPosition(lctx, p.locate)
	if err != nil {
		switch {
		case errors.Is(err, ErrGeolocation):
		case errors.Is(lctx.Err(), context.DeadlineExceeded):
			err = fmt.Errorf("%w: timed out after %s", ErrGeolocation, p.locate.Timeout)
		default:
			err = fmt.Errorf("%w: %s", ErrGeolocation, err)
		}
		return nil, p.fail(token, err)
	}

	return p.fetch(ctx, token, SyntheticPlace(lat, lon))
}

func (p *Pipeline) SetUnit(unit UnitSystem) {
	p.update(func(s *State) { s.Units = unit })
}

// EditQuery records the query text and schedules a debounced suggestion
// lookup. Empty and coordinate input clear the suggestions instead.
func (p *Pipeline) EditQuery(ctx context.Context, text string) {
	in := Classify(text)

	if in.Text == "" || in.Coordinate || p.geocoding == nil {
		p.debouncer.Cancel()
		p.update(func(s *State) {
			s.Query = text
			s.Suggestions = nil
			p.suggestSeq++
		})
		return
	}

	p.update(func(s *State) { s.Query = text })
	p.debouncer.Schedule(func() { p.refreshSuggestions(ctx, in.Text) })
}

// Suggestions looks up candidates for text right away, applying the same
// input rules as EditQuery.
func (p *Pipeline) Suggestions(ctx context.Context, text string) []Place {
	in := Classify(text)
	if in.Text == "" || in.Coordinate || p.geocoding == nil {
		return nil
	}
	return p.geocoding.Suggest(ctx, in.Text, p.suggestLimit)
}

// Close drops any pending suggestion lookup.
func (p *Pipeline) Close() {
	p.debouncer.Cancel()
}

func (p *Pipeline) refreshSuggestions(ctx context.Context, text string) {
	p.mu.Lock()
	p.suggestSeq++
	token := p.suggestSeq
	p.mu.Unlock()

	places := p.geocoding.Suggest(ctx, text, p.suggestLimit)

	p.mu.Lock()
	if token != p.suggestSeq {
		p.mu.Unlock()
		p.logger.Debugw("dropping stale suggestions", "query", text)
		return
	}
	p.state.Suggestions = places
	p.publishLocked()
}

func (p *Pipeline) fetch(ctx context.Context, token uint64, place Place) (*WeatherView, error) {
	raw, err := p.weather.Fetch(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return nil, p.fail(token, err)
	}

	view := &WeatherView{
		Place:     place,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Timezone:  raw.Timezone,
		Current:   raw.Current,
		Forecast:  Shape(raw.Daily),
	}

	if !p.commit(token, func(s *State) {
		s.Status = Success
		s.View = view
		s.Err = nil
	}) {
		return nil, ErrSuperseded
	}

	return view, nil
}

// fail commits err as the outcome of token. The previous view is kept.
func (p *Pipeline) fail(token uint64, err error) error {
	if !p.commit(token, func(s *State) {
		s.Status = Failed
		s.Err = err
	}) {
		return ErrSuperseded
	}
	return err
}

func (p *Pipeline) begin(fn func(*State)) uint64 {
	p.mu.Lock()
	p.requestSeq++
	token := p.requestSeq
	p.state.Status = Resolving
	p.state.Loading = true
	p.state.Err = nil
	if fn != nil {
		fn(&p.state)
	}
	p.publishLocked()
	return token
}

func (p *Pipeline) commit(token uint64, fn func(*State)) bool {
	p.mu.Lock()
	if token != p.requestSeq {
		p.mu.Unlock()
		p.logger.Debugw("discarding stale result", "token", token)
		return false
	}
	fn(&p.state)
	p.state.Loading = false
	p.publishLocked()
	return true
}

func (p *Pipeline) update(fn func(*State)) {
	p.mu.Lock()
	fn(&p.state)
	p.publishLocked()
}

// publishLocked releases p.mu and delivers the snapshot taken under it.
// Snapshots older than one already delivered are skipped.
func (p *Pipeline) publishLocked() {
	p.version++
	version := p.version
	snapshot := p.state
	p.mu.Unlock()

	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	if version < p.delivered {
		return
	}
	p.delivered = version

	for _, fn := range p.listeners {
		fn(snapshot)
	}
}
