package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunatech/sila/internal/weather"
	"github.com/nunatech/sila/internal/weather/normalize"
)

var metTestLoc = weather.Location{
	ID: "nuuk", Name: "Nuuk", Region: "Sermersooq",
	Latitude: 64.17481234, Longitude: -51.73809999,
}

const metBody = `{
	"properties": {
		"meta": {"updated_at": "2024-03-20T12:00:00Z"},
		"timeseries": [
			{
				"time": "2024-03-20T12:00:00Z",
				"data": {
					"instant": {"details": {"air_temperature": -3.0, "wind_speed": 5.0}},
					"next_1_hours": {"summary": {"symbol_code": "snow"}, "details": {"precipitation_amount": 0.4}}
				}
			}
		]
	}
}`

func TestMetFetchRequestShape(t *testing.T) {
	var gotQuery map[string][]string
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(metBody))
	}))
	defer srv.Close()

	g := NewMetGateway(srv.Client(), srv.URL, "sila/1.0 test@example.com", nil)

	raw, err := g.Fetch(context.Background(), metTestLoc)
	require.NoError(t, err)

	// Coordinates are truncated to 4 decimals before leaving the process.
	assert.Equal(t, []string{"64.1748"}, gotQuery["lat"])
	assert.Equal(t, []string{"-51.7381"}, gotQuery["lon"])
	assert.Equal(t, "sila/1.0 test@example.com", gotUA)
	assert.Equal(t, "application/json", gotAccept)

	payload, ok := raw.(*normalize.MetResponse)
	require.True(t, ok)
	assert.Len(t, payload.Properties.Timeseries, 1)
}

func TestMetFetchConditionalRequests(t *testing.T) {
	const marker = "Wed, 20 Mar 2024 12:00:00 GMT"
	var conditional []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conditional = append(conditional, r.Header.Get("If-Modified-Since"))
		if r.Header.Get("If-Modified-Since") == marker {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", marker)
		w.Write([]byte(metBody))
	}))
	defer srv.Close()

	g := NewMetGateway(srv.Client(), srv.URL, "sila/1.0", nil)

	_, err := g.Fetch(context.Background(), metTestLoc)
	require.NoError(t, err)

	_, err = g.Fetch(context.Background(), metTestLoc)
	assert.ErrorIs(t, err, weather.ErrNotModified)

	require.Len(t, conditional, 2)
	assert.Empty(t, conditional[0], "first request carries no validator")
	assert.Equal(t, marker, conditional[1], "second request replays Last-Modified")
}

func TestMetFetchForbiddenIsTypedHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	g := NewMetGateway(srv.Client(), srv.URL, "sila/1.0", nil)

	_, err := g.Fetch(context.Background(), metTestLoc)
	require.Error(t, err)

	var fe *weather.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, weather.KindHTTP, fe.Kind)
	assert.Equal(t, http.StatusForbidden, fe.Status)
	assert.Equal(t, "met", fe.Provider)
}

func TestMetFetchUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	g := NewMetGateway(http.DefaultClient, srv.URL, "sila/1.0", nil)

	_, err := g.Fetch(context.Background(), metTestLoc)
	require.Error(t, err)

	var fe *weather.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, weather.KindNetwork, fe.Kind)
}
