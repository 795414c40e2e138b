package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"skyview/apis"
	"skyview/config"
	"skyview/manager"
)

func New(cfg config.Geocoding, logger *zap.SugaredLogger) *geocoding {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	language := cfg.Language
	if language == "" {
		language = "en"
	}

	return &geocoding{
		client:   resty.New().SetHeader("Accept", "application/json"),
		url:      cfg.URL,
		language: language,
		logger:   logger,
	}
}

type geocoding struct {
	client   *resty.Client
	url      string
	language string
	logger   *zap.SugaredLogger
}

// Suggest returns up to limit candidates. Any failure yields nil.
func (g geocoding) Suggest(ctx context.Context, text string, limit int) []manager.Place {
	places, err := g.search(ctx, text, limit)
	if err != nil {
		g.logger.Debugw("suggest failed", "query", text, "error", err)
		return nil
	}

	if len(places) > limit {
		places = places[:limit]
	}
	return places
}

// Resolve returns the best match for text.
func (g geocoding) Resolve(ctx context.Context, text string) (manager.Place, error) {
	places, err := g.search(ctx, text, 1)
	if err != nil {
		return manager.Place{}, err
	}

	if len(places) == 0 {
		return manager.Place{}, fmt.Errorf("%w: no results for %q", manager.ErrNotFound, text)
	}

	return places[0], nil
}

func (g geocoding) search(ctx context.Context, name string, count int) ([]manager.Place, error) {
	type responseStruct struct {
		Results []struct {
			ID        int64   `json:"id"`
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
			Admin2    string  `json:"admin2"`
			Admin3    string  `json:"admin3"`
			Admin4    string  `json:"admin4"`
		} `json:"results"`
	}

	params := map[string]string{
		"name":     name,
		"count":    strconv.Itoa(count),
		"language": g.language,
		"format":   "json",
	}

	g.logger.Debugw("geocoding search", "url", g.url, "name", name, "count", count)

	response, err := g.client.R().SetContext(ctx).SetQueryParams(params).Get(g.url)
	if err != nil {
		return nil, apis.TransportError(err)
	}

	if response.StatusCode() != http.StatusOK {
		return nil, apis.StatusError(response)
	}

	var r responseStruct
	if err = json.Unmarshal(response.Body(), &r); err != nil {
		return nil, fmt.Errorf("%w: malformed geocoding response: %s", manager.ErrNetwork, err)
	}

	places := make([]manager.Place, 0, len(r.Results))
	for _, res := range r.Results {
		places = append(places, manager.Place{
			ID:        res.ID,
			Name:      res.Name,
			Latitude:  res.Latitude,
			Longitude: res.Longitude,
			Country:   res.Country,
			Admin1:    res.Admin1,
			Admin2:    res.Admin2,
			Admin3:    res.Admin3,
			Admin4:    res.Admin4,
		})
	}

	return places, nil
}
