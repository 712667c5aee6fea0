package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allStatuses() []ReservationStatus {
	return []ReservationStatus{
		StatusRequested, StatusPendingProValidation, StatusConfirmed,
		StatusDepositPending, StatusDepositPaid, StatusCheckedIn,
		StatusConsumed, StatusConsumedDefault,
		StatusNoShowDeclared, StatusNoShowConfirmed,
		StatusCancelledUser, StatusCancelledPro, StatusRefused, StatusExpired,
		StatusQuoteRequested, StatusQuoteAcknowledged, StatusQuoteSent,
		StatusQuoteAccepted, StatusQuoteRefused, StatusQuoteExpired,
	}
}

func TestCanTransition_SelfAlwaysLegal(t *testing.T) {
	for _, s := range allStatuses() {
		assert.True(t, CanTransition(s, s), "self transition must be legal for %s", s)
	}
}

func TestCanTransition_TerminalOnlySelf(t *testing.T) {
	for _, from := range TerminalStatuses {
		for _, to := range allStatuses() {
			if from == to {
				continue
			}
			assert.False(t, CanTransition(from, to), "%s -> %s must be illegal", from, to)
		}
	}
}

func TestCanTransition_AllowedTable(t *testing.T) {
	cases := []struct {
		from    ReservationStatus
		to      ReservationStatus
		allowed bool
	}{
		{StatusRequested, StatusPendingProValidation, true},
		{StatusRequested, StatusConfirmed, true},
		{StatusRequested, StatusRefused, true},
		{StatusRequested, StatusExpired, true},
		{StatusRequested, StatusConsumed, false},
		{StatusRequested, StatusNoShowDeclared, false},

		{StatusPendingProValidation, StatusConfirmed, true},
		{StatusPendingProValidation, StatusExpired, true},
		{StatusPendingProValidation, StatusCheckedIn, false},

		{StatusConfirmed, StatusDepositPaid, true},
		{StatusConfirmed, StatusCheckedIn, true},
		{StatusConfirmed, StatusConsumed, true},
		{StatusConfirmed, StatusConsumedDefault, true},
		{StatusConfirmed, StatusNoShowDeclared, true},
		{StatusConfirmed, StatusRequested, false},
		{StatusConfirmed, StatusExpired, false},

		{StatusDepositPaid, StatusNoShowDeclared, true},
		{StatusDepositPaid, StatusConsumed, true},
		{StatusDepositPaid, StatusRefused, false},

		{StatusCheckedIn, StatusConsumed, true},
		{StatusCheckedIn, StatusNoShowDeclared, false},

		{StatusNoShowDeclared, StatusNoShowConfirmed, true},
		{StatusNoShowDeclared, StatusConsumed, true},
		{StatusNoShowDeclared, StatusCancelledUser, false},

		{StatusQuoteRequested, StatusQuoteAcknowledged, true},
		{StatusQuoteRequested, StatusQuoteExpired, true},
		{StatusQuoteRequested, StatusQuoteSent, false},
		{StatusQuoteAcknowledged, StatusQuoteSent, true},
		{StatusQuoteSent, StatusQuoteAccepted, true},
		{StatusQuoteSent, StatusQuoteRefused, true},
		{StatusQuoteAccepted, StatusConfirmed, true},
		{StatusQuoteAccepted, StatusQuoteSent, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidateTransition_Errors(t *testing.T) {
	t.Run("terminal source yields AlreadyTerminal", func(t *testing.T) {
		err := ValidateTransition(StatusConsumed, StatusCancelledUser)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAlreadyTerminal))
	})

	t.Run("illegal pair yields InvalidTransition", func(t *testing.T) {
		err := ValidateTransition(StatusRequested, StatusConsumed)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
	})

	t.Run("self transition on terminal is a no-op success", func(t *testing.T) {
		assert.NoError(t, ValidateTransition(StatusExpired, StatusExpired))
	})

	t.Run("legal pair passes", func(t *testing.T) {
		assert.NoError(t, ValidateTransition(StatusConfirmed, StatusNoShowDeclared))
	})
}

func TestTerminalStatusesMatchTable(t *testing.T) {
	// Every status absent from the allowed-transition table must be declared terminal.
	for _, s := range allStatuses() {
		_, hasTargets := allowedTransitions[s]
		assert.Equal(t, !hasTargets, IsTerminalStatus(s), "status %s", s)
	}
}
