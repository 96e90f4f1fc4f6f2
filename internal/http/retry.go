package http

import (
	"context"
	"math/rand"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrorType represents different classes of failures for retry strategy
type ErrorType int

const (
	// ErrorTypeSuccess indicates the request succeeded
	ErrorTypeSuccess ErrorType = iota
	// ErrorTypeCredential indicates authentication/authorization failure (401, 403)
	ErrorTypeCredential
	// ErrorTypeRetryable indicates throttling or server errors that can be retried
	ErrorTypeRetryable
	// ErrorTypeFatal indicates client errors that should not be retried (400, 404)
	ErrorTypeFatal
)

// ClassifyStatus maps an HTTP status code to a retry class.
func ClassifyStatus(code int) ErrorType {
	switch {
	case code < 400:
		return ErrorTypeSuccess
	case code == nethttp.StatusUnauthorized || code == nethttp.StatusForbidden:
		return ErrorTypeCredential
	case code == nethttp.StatusTooManyRequests || code == nethttp.StatusRequestTimeout || code >= 500:
		return ErrorTypeRetryable
	default:
		return ErrorTypeFatal
	}
}

// ErrorTypeName returns a human-readable name for an ErrorType
func ErrorTypeName(errType ErrorType) string {
	switch errType {
	case ErrorTypeSuccess:
		return "success"
	case ErrorTypeCredential:
		return "credential"
	case ErrorTypeRetryable:
		return "retryable"
	case ErrorTypeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// CheckRetry is a retryablehttp.CheckRetry that never retries credential or client
// errors and otherwise defers to the library's default policy.
func CheckRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil && resp != nil {
		switch ClassifyStatus(resp.StatusCode) {
		case ErrorTypeCredential, ErrorTypeFatal:
			return false, nil
		}
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// Backoff is a retryablehttp.Backoff with full jitter. A Retry-After header on a
// throttled response wins over the computed delay.
func Backoff(minWait, maxWait time.Duration, attempt int, resp *nethttp.Response) time.Duration {
	if resp != nil && (resp.StatusCode == nethttp.StatusTooManyRequests || resp.StatusCode == nethttp.StatusServiceUnavailable) {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return max(minWait, CalculateBackoff(attempt, minWait, maxWait))
}

// CalculateBackoff returns exponential backoff duration with full jitter
//
// Formula: random(0, min(maxDelay, initialDelay * 2^attempt))
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt <= 0 || initialDelay <= 0 {
		return 0
	}

	base := maxDelay
	if attempt < 32 {
		if d := time.Duration(1<<uint(attempt)) * initialDelay; d > 0 && d < maxDelay {
			base = d
		}
	}

	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base)))
}
