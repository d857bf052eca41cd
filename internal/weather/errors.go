package weather

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
)

var (
	// ErrNoTimeSeries means a provider response carried no time-indexed
	// observations. Fatal to normalization of that response.
	ErrNoTimeSeries = errors.New("no time series data in response")

	// ErrUnknownLocation is a caller error: the location id is not in the
	// configured set.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrMissingAPIKey means a provider requiring a credential was invoked
	// without one. This is a configuration error, not a fallback trigger.
	ErrMissingAPIKey = errors.New("provider api key is not configured")

	// ErrNotModified signals a conditional request answered "unchanged";
	// the last cached snapshot is still current.
	ErrNotModified = errors.New("provider reports data not modified")
)

// FailureKind classifies a fetch failure for retry decisions and for the
// user-visible message.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	KindNetwork
	KindTimeout
	KindHTTP
	KindCancelled
)

func (k FailureKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FetchError is the typed failure surfaced by gateways and the service.
type FetchError struct {
	Kind     FailureKind
	Status   int // HTTP status, when Kind == KindHTTP
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s failure (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Message returns the human-readable classification shown to users.
func (e *FetchError) Message() string {
	switch e.Kind {
	case KindNetwork:
		return "Could not reach the weather service. Check your connection and try again."
	case KindTimeout:
		return "The weather service took too long to respond. Try again."
	case KindCancelled:
		return "The request was cancelled."
	case KindHTTP:
		switch e.Status {
		case http.StatusUnauthorized:
			return "The weather service rejected our credentials."
		case http.StatusForbidden:
			return "The weather service refused the request. It may be rate limiting us."
		case http.StatusNotFound:
			return "No weather data is available for this location."
		case http.StatusTooManyRequests:
			return "Too many requests. Wait a moment and try again."
		default:
			return fmt.Sprintf("The weather service returned an error (%d).", e.Status)
		}
	default:
		return "Something went wrong fetching the weather."
	}
}

// HTTPStatus extracts the status code from a FetchError chain, or 0.
func HTTPStatus(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Kind == KindHTTP {
		return fe.Status
	}
	return 0
}

// Classify wraps an arbitrary transport error into a FetchError. Context
// cancellation is kept distinct so callers can propagate it untouched.
func Classify(provider string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	kind := KindUnknown
	switch {
	case errors.Is(err, context.Canceled):
		kind = KindCancelled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		kind = KindTimeout
	default:
		var netErr net.Error
		if errors.As(err, &netErr) {
			if netErr.Timeout() {
				kind = KindTimeout
			} else {
				kind = KindNetwork
			}
		} else {
			var opErr *net.OpError
			if errors.As(err, &opErr) {
				kind = KindNetwork
			}
		}
	}

	return &FetchError{Kind: kind, Provider: provider, Err: err}
}
