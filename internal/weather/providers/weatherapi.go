package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nunatech/sila/internal/weather"
	"github.com/nunatech/sila/internal/weather/normalize"
)

const defaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1/forecast.json"

const forecastDays = 7

// WeatherAPIGateway fetches forecasts from the fallback provider. It is
// queried by a free-text "City, Region" string and requires a provisioned
// API key; a missing key is a configuration error, never a reason to fall
// further back at runtime.
type WeatherAPIGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewWeatherAPIGateway creates the fallback gateway.
func NewWeatherAPIGateway(client *http.Client, baseURL, apiKey string, logger *zap.Logger) *WeatherAPIGateway {
	if baseURL == "" {
		baseURL = defaultWeatherAPIBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherAPIGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		circuit: newBreaker(normalize.WeatherAPISourceName),
		logger:  logger,
	}
}

// Name implements weather.Gateway.
func (g *WeatherAPIGateway) Name() string { return normalize.WeatherAPISourceName }

// Fetch issues one forecast request for the location.
func (g *WeatherAPIGateway) Fetch(ctx context.Context, loc weather.Location) (weather.RawSource, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", g.Name(), weather.ErrMissingAPIKey)
	}

	q := loc.Name
	if loc.Region != "" {
		q = fmt.Sprintf("%s, %s", loc.Name, loc.Region)
	}

	values := url.Values{}
	values.Set("key", g.apiKey)
	values.Set("q", q)
	values.Set("days", fmt.Sprintf("%d", forecastDays))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	req, err := http.NewRequest(http.MethodGet, g.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(ctx, g.client, g.circuit, g.Name(), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload normalize.WeatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", g.Name(), err)
	}

	g.logger.Debug("fetched forecast",
		zap.String("provider", g.Name()),
		zap.String("location", loc.Key()),
		zap.Int("days", len(payload.Forecast.ForecastDay)))

	return &payload, nil
}
