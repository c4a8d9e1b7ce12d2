package hibp

import "errors"

// Upstream failures callers need to tell apart. Handlers map these to
// distinct HTTP statuses and user-actionable messages instead of one
// generic failure.
var (
	ErrRateLimited = errors.New("hibp: rate limited, retry later")
	ErrUnavailable = errors.New("hibp: service unavailable")
	ErrTimeout     = errors.New("hibp: request timed out")
	ErrUpstream    = errors.New("hibp: upstream returned an unexpected response")
)
