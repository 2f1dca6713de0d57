package cricketdata

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEndpointUnavailable marks a 403/404 from the provider: the endpoint is
// treated as unavailable for this cycle and no fallback is substituted.
var ErrEndpointUnavailable = errors.New("provider endpoint unavailable")

// ErrNotFound means the provider has no match for the requested id.
var ErrNotFound = errors.New("match not found")

// ProviderError carries the HTTP status of a failed provider call so callers
// can distinguish transient failures from availability failures.
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s returned %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Endpoint, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTransient reports whether the failure should be retried with backoff:
// timeouts, connection errors, 5xx responses, and malformed bodies. 403/404
// are availability failures and are not retried within a cycle.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEndpointUnavailable) || errors.Is(err, ErrNotFound) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.StatusCode == 0:
			return true // network error or malformed body
		case pe.StatusCode >= http.StatusInternalServerError:
			return true
		case pe.StatusCode == http.StatusTooManyRequests:
			return true
		}
		return false
	}
	return true
}
