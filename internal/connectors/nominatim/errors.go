package nominatim

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-200 Nominatim response.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nominatim: API error %d (URL: %s)", e.StatusCode, e.URL)
}

// isRetryable reports whether the error is worth another attempt:
// transport failures and server-side trouble are, client errors are
// not.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
