package domain

import "fmt"

// allowedTransitions is the fixed allowed-set per source status. Terminal
// statuses are absent: for them only the self-transition is legal.
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	StatusRequested: {
		StatusPendingProValidation,
		StatusConfirmed,
		StatusRefused,
		StatusExpired,
		StatusCancelledUser,
		StatusCancelledPro,
	},
	StatusPendingProValidation: {
		StatusConfirmed,
		StatusDepositPending,
		StatusRefused,
		StatusExpired,
		StatusCancelledUser,
		StatusCancelledPro,
	},
	StatusConfirmed: {
		StatusDepositPending,
		StatusDepositPaid,
		StatusCheckedIn,
		StatusConsumed,
		StatusConsumedDefault,
		StatusNoShowDeclared,
		StatusCancelledUser,
		StatusCancelledPro,
	},
	StatusDepositPending: {
		StatusDepositPaid,
		StatusExpired,
		StatusCancelledUser,
		StatusCancelledPro,
	},
	StatusDepositPaid: {
		StatusCheckedIn,
		StatusConsumed,
		StatusConsumedDefault,
		StatusNoShowDeclared,
		StatusCancelledUser,
		StatusCancelledPro,
	},
	StatusCheckedIn: {
		StatusConsumed,
	},
	StatusNoShowDeclared: {
		StatusNoShowConfirmed,
		StatusConsumed,
		StatusConsumedDefault,
	},
	StatusQuoteRequested: {
		StatusQuoteAcknowledged,
		StatusQuoteExpired,
		StatusCancelledUser,
	},
	StatusQuoteAcknowledged: {
		StatusQuoteSent,
		StatusQuoteExpired,
		StatusCancelledUser,
	},
	StatusQuoteSent: {
		StatusQuoteAccepted,
		StatusQuoteRefused,
		StatusQuoteExpired,
		StatusCancelledUser,
	},
	StatusQuoteAccepted: {
		StatusConfirmed,
		StatusDepositPending,
		StatusCancelledUser,
		StatusCancelledPro,
	},
}

// CanTransition reports whether from -> to is a legal transition.
// A self-transition is always legal (no-op success), including on terminal statuses.
func CanTransition(from, to ReservationStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns the taxonomy error explaining why from -> to is
// illegal, or nil when it is allowed
func ValidateTransition(from, to ReservationStatus) error {
	if from == to {
		return nil
	}
	if IsTerminalStatus(from) {
		return fmt.Errorf("%w: %s", ErrAlreadyTerminal, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// AllowedTargets returns a copy of the allowed-set for a status.
// Empty for terminal statuses.
func AllowedTargets(from ReservationStatus) []ReservationStatus {
	targets := allowedTransitions[from]
	out := make([]ReservationStatus, len(targets))
	copy(out, targets)
	return out
}
