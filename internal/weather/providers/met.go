package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nunatech/sila/internal/weather"
	"github.com/nunatech/sila/internal/weather/normalize"
)

const defaultMetBaseURL = "https://api.met.no/weatherapi/locationforecast/2.0/compact"

// MetGateway fetches forecasts from the primary provider. The endpoint
// requires no API key but insists on an identifying User-Agent, coordinates
// rounded to 4 decimals, and conditional-request caching.
type MetGateway struct {
	baseURL   string
	userAgent string
	client    *http.Client
	circuit   *gobreaker.CircuitBreaker
	logger    *zap.Logger

	mu           sync.Mutex
	lastModified map[string]string // location key -> Last-Modified marker
}

// NewMetGateway creates the primary gateway. userAgent identifies this
// application to the provider and must not be empty in production.
func NewMetGateway(client *http.Client, baseURL, userAgent string, logger *zap.Logger) *MetGateway {
	if baseURL == "" {
		baseURL = defaultMetBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetGateway{
		baseURL:      baseURL,
		userAgent:    userAgent,
		client:       client,
		circuit:      newBreaker(normalize.MetSourceName),
		logger:       logger,
		lastModified: make(map[string]string),
	}
}

// Name implements weather.Gateway.
func (g *MetGateway) Name() string { return normalize.MetSourceName }

// Fetch issues one forecast request for the location. On a 304 the gateway
// returns weather.ErrNotModified so the caller can keep serving its cached
// snapshot.
func (g *MetGateway) Fetch(ctx context.Context, loc weather.Location) (weather.RawSource, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%.4f", weather.Round4(loc.Latitude)))
	values.Set("lon", fmt.Sprintf("%.4f", weather.Round4(loc.Longitude)))

	req, err := http.NewRequest(http.MethodGet, g.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	g.mu.Lock()
	if marker := g.lastModified[loc.Key()]; marker != "" {
		req.Header.Set("If-Modified-Since", marker)
	}
	g.mu.Unlock()

	resp, err := doRequest(ctx, g.client, g.circuit, g.Name(), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if marker := resp.Header.Get("Last-Modified"); marker != "" {
		g.mu.Lock()
		g.lastModified[loc.Key()] = marker
		g.mu.Unlock()
	}

	var payload normalize.MetResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", g.Name(), err)
	}

	g.logger.Debug("fetched forecast",
		zap.String("provider", g.Name()),
		zap.String("location", loc.Key()),
		zap.Int("steps", len(payload.Properties.Timeseries)))

	return &payload, nil
}
