package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	prerrors "github.com/ryo246912/gh-pr-report/internal/errors"
)

// APIError is a non-2xx response from the REST API.
type APIError struct {
	StatusCode  int
	Message     string
	URL         string
	RateLimited bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, e.URL)
	}
	return fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.URL)
}

// Unwrap maps the status code to one of the shared sentinel errors so callers
// can use errors.Is without inspecting codes.
func (e *APIError) Unwrap() error {
	switch {
	case e.RateLimited:
		return prerrors.ErrRateLimit
	case e.StatusCode == http.StatusUnauthorized:
		return prerrors.ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return prerrors.ErrNotFound
	default:
		return nil
	}
}

// newAPIError builds an APIError from resp. The body is read but not closed.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL.String(),
		RateLimited: resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
