package domain

import "time"

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Deadline offsets driving the automatic transitions of the sweep.
const (
	// ProConfirmationSameDayDelay applies when the slot is on the day the
	// request is made.
	ProConfirmationSameDayDelay = 2 * time.Hour
	// ProConfirmationDefaultDelay applies to requests for a later day.
	ProConfirmationDefaultDelay = 12 * time.Hour

	// Venue confirmation checkpoints, all relative to slot start.
	VenueConfirmationRequestDelay = 12 * time.Hour
	VenueReminderDelay            = 18 * time.Hour
	VenueAutoValidationDelay      = 24 * time.Hour

	// DisputeResponseWindow is how long a client has to answer a no-show
	// declaration before it is confirmed automatically.
	DisputeResponseWindow = 48 * time.Hour

	// Group-quote flow deadlines.
	QuoteAcknowledgeWindow = 48 * time.Hour
	QuoteWindow            = 7 * 24 * time.Hour
)

// Cancellation lead-time bands (hours before slot start).
const (
	CancellationBlockedWithin  = 3 * time.Hour
	CancellationVeryLateWithin = 12 * time.Hour
	CancellationLateWithin     = 24 * time.Hour
)

// Business validation constants
const (
	MinTotalCapacity            = 0
	MaxPartySize                = 50
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxArbitrationNotesLength   = 1000
	PercentageSum               = 100
)

// OccupyingStatuses are the statuses that count against slot capacity.
var OccupyingStatuses = []ReservationStatus{
	StatusRequested,
	StatusPendingProValidation,
	StatusConfirmed,
	StatusDepositPaid,
}

// TerminalStatuses admit no transition except to themselves.
var TerminalStatuses = []ReservationStatus{
	StatusConsumed,
	StatusConsumedDefault,
	StatusNoShowConfirmed,
	StatusCancelledUser,
	StatusCancelledPro,
	StatusRefused,
	StatusExpired,
	StatusQuoteRefused,
	StatusQuoteExpired,
}
