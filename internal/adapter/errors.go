package adapter

import "errors"

var (
	// ErrUnavailable means no HTTP response was obtained: DNS failure,
	// connection refused, timeout. The request may be retried later.
	ErrUnavailable = errors.New("server unavailable")
	// ErrRejected means the server answered with a 4xx status. Retrying the
	// same request will not help.
	ErrRejected = errors.New("request rejected by server")
	// ErrServerError means the server answered with a 5xx status. The request
	// may succeed on a later attempt.
	ErrServerError = errors.New("server error")
)
