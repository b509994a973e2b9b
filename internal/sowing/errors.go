package sowing

import "errors"

var (
	// ErrInvalidEvent is returned when a report fails required-field checks.
	ErrInvalidEvent = errors.New("sowing: invalid event")

	// ErrEventExists is returned when an event id is already in the ledger.
	ErrEventExists = errors.New("sowing: event already recorded")
)
