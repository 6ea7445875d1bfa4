package service

import "errors"

var (
	// ErrNoDataAvailable means the network read failed and nothing is cached
	// for the requested key. Callers substitute a safe default (empty
	// collection, nil) instead of surfacing it to the user.
	ErrNoDataAvailable = errors.New("no data available")

	// ErrEnqueueFailed means the mutation could not be durably queued. The
	// write's durability guarantee cannot be met, so it propagates.
	ErrEnqueueFailed = errors.New("failed to enqueue mutation")
)
