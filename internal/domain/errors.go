package domain

import "errors"

// Sentinel errors shared by the store, services and HTTP layer.
var (
	// ErrNotFound is returned when a reservation or table id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCapacityExceeded is returned when an assignment would overflow a table.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrConsistencyFault signals that a seating invariant (e.g. non-negative occupancy)
	// was about to be violated. It is never tolerated silently.
	ErrConsistencyFault = errors.New("internal consistency fault")
	// ErrUpstreamUnavailable is returned when the store cannot be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrInvalidInput is returned when the request is invalid (e.g. cross-date assignment).
	ErrInvalidInput = errors.New("invalid input")
)
