package polymarket

import (
	"fmt"
	"net/http"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// APIError is returned for any non-2xx data API response.
type APIError struct {
	Status   int
	Body     string
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned %d for %s: %s", e.Status, e.Endpoint, e.Body)
}

// Unwrap maps well-known statuses to domain errors so callers can use
// errors.Is without inspecting the status code.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// statusError returns nil for 2xx statuses and an *APIError otherwise.
func statusError(endpoint string, statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	return &APIError{Status: statusCode, Body: string(body), Endpoint: endpoint}
}
