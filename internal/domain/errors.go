package domain

import "errors"

var (
	// ErrUnknownInstrument is returned when an order references a symbol
	// the venue was not configured with. Caller's fault, surfaced
	// synchronously at admission.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrSignalAlreadySet reports a second terminal transition on the
	// same order. It must never occur in correct operation; callers treat
	// it as a logic error to report, not to mask.
	ErrSignalAlreadySet = errors.New("completion signal already set")

	// ErrInvalidVolume is returned when the requested volume is not a
	// positive integer.
	ErrInvalidVolume = errors.New("order volume must be positive")

	// ErrInvalidSide is returned when the order side is neither BUY nor SELL.
	ErrInvalidSide = errors.New("invalid order side")
)
