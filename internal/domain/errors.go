package domain

import "errors"

// Error taxonomy shared across the reservation core. Services wrap these with
// context; handlers map them to HTTP statuses.
var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrAlreadyTerminal      = errors.New("reservation is in a terminal status")
	ErrCancellationBlocked  = errors.New("cancellation blocked: less than 3 hours before slot start")
	ErrCapacityExceeded     = errors.New("slot capacity exceeded")
	ErrDisputeWindowExpired = errors.New("dispute response window expired")
	ErrInvalidConfig        = errors.New("invalid capacity config")
	ErrPoolNotBookable      = errors.New("pool not open to this booking")
)
