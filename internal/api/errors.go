// Package api provides error types for Rescale API responses.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/rescale/rescale-browse/internal/http"
)

var (
	// ErrUnauthorized indicates the API key was rejected (401/403).
	ErrUnauthorized = errors.New("unauthorized: check the API key")

	// ErrNotFound indicates the folder, job or file does not exist or is not visible.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-success response from the Rescale API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s failed: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is lets callers match an APIError against ErrUnauthorized and ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return http.ClassifyStatus(e.StatusCode) == http.ErrorTypeCredential
	case ErrNotFound:
		return e.StatusCode == 404
	}
	return false
}

// IsRetryable reports whether retrying the call later could succeed.
//
// Usage:
//
//	page, err := client.ListJobsPage(ctx, opts)
//	if api.IsRetryable(err) {
//	    // keep the rows as unloaded and let the next scroll try again
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return http.ClassifyStatus(apiErr.StatusCode) == http.ErrorTypeRetryable
	}
	// Transport-level failures (timeouts, resets) are worth another attempt.
	return true
}
