package domain

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("not authorized")
	ErrTabClosed  = errors.New("tab is closed")

	// ErrSettlementChanged is returned when a transfer referenced by the caller
	// is no longer part of the recomputed settlement.
	ErrSettlementChanged = errors.New("settlement no longer applies, refresh and retry")
	ErrInvalidTransition = errors.New("invalid acknowledgement transition")
)
