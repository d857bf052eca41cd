// Package providers implements the gateways to the two weather endpoints.
// Each gateway issues exactly one request per call and surfaces typed
// failures; the orchestrating service owns retry. A circuit breaker per
// provider fails fast while an endpoint is known-bad.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nunatech/sila/internal/weather"
)

var errUnexpectedStatus = errors.New("unexpected status code")

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes the request through the circuit breaker and classifies
// the outcome. 304 surfaces as ErrNotModified for callers doing conditional
// requests; any other non-2xx status becomes a typed HTTP failure. An open
// circuit reads as a network failure: the endpoint is effectively down.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, name string, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, weather.Classify(name, execErr)
		}

		// Only transport failures and server errors trip the breaker; client
		// errors and 304 are the endpoint working as designed.
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &weather.FetchError{
				Kind:     weather.KindHTTP,
				Status:   resp.StatusCode,
				Provider: name,
				Err:      fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode),
			}
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.FetchError{Kind: weather.KindNetwork, Provider: name, Err: err}
		}
		return nil, err
	}

	resp := result.(*http.Response)
	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil, weather.ErrNotModified
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &weather.FetchError{
			Kind:     weather.KindHTTP,
			Status:   resp.StatusCode,
			Provider: name,
			Err:      fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode),
		}
	}
	return resp, nil
}
