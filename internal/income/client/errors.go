package client

import (
	"fmt"
	"time"
)

// UpstreamError reports a non-2xx response from the income source with the
// upstream status preserved.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("income source returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("income source returned status %d", e.StatusCode)
}

// TimeoutError reports a deadline exceeded against the income source,
// carrying the elapsed time. Distinct from UpstreamError so callers never
// confuse slowness with rejection.
type TimeoutError struct {
	Elapsed time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("income source timed out after %s", e.Elapsed)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
