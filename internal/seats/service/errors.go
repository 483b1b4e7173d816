package service

import "errors"

var (
	// ErrSeatUnavailable is returned when a status transition loses its
	// precondition race or targets a seat that does not exist. Callers
	// cannot, and by contract need not, distinguish the two cases.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrNoInventory is returned by Purchase when the event has no
	// AVAILABLE seat left.
	ErrNoInventory = errors.New("no available tickets")

	// ErrValidation flags malformed input; nothing was written.
	ErrValidation = errors.New("invalid request")
)
