package fetch

import (
	"net/http"
	"strconv"
	"time"
)

const (
	// Total attempts per call, including the first.
	maxAttempts = 3

	baseBackoff = 2 * time.Second
)

// RetryWait returns the pause before retrying a failed attempt. A
// server-provided Retry-After hint wins; otherwise the wait grows linearly
// with the attempt number that just failed (1-based).
func RetryWait(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	if attempt < 1 {
		attempt = 1
	}
	return baseBackoff * time.Duration(attempt)
}

// retryAfterHint extracts a Retry-After header in integer-seconds form.
// Zero means no usable hint.
func retryAfterHint(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// shouldRetry implements the retry taxonomy: transient network errors,
// 429 and 5xx are retried within the attempt budget; any other 4xx fails
// immediately.
func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode >= 500
}
