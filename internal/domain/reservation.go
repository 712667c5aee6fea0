package domain

import (
	"time"

	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

// ReservationStatus represents the lifecycle status of a reservation
type ReservationStatus string

const (
	// Standard flow
	StatusRequested            ReservationStatus = "requested"
	StatusPendingProValidation ReservationStatus = "pending_pro_validation"
	StatusConfirmed            ReservationStatus = "confirmed"
	StatusDepositPending       ReservationStatus = "deposit_pending"
	StatusDepositPaid          ReservationStatus = "deposit_paid"
	StatusCheckedIn            ReservationStatus = "checked_in"
	StatusConsumed             ReservationStatus = "consumed"
	StatusConsumedDefault      ReservationStatus = "consumed_default"

	// No-show branch
	StatusNoShowDeclared  ReservationStatus = "noshow_declared"
	StatusNoShowConfirmed ReservationStatus = "no_show_confirmed"

	// Refusal / cancellation / expiry
	StatusCancelledUser ReservationStatus = "cancelled_user"
	StatusCancelledPro  ReservationStatus = "cancelled_pro"
	StatusRefused       ReservationStatus = "refused"
	StatusExpired       ReservationStatus = "expired"

	// Group-quote flow
	StatusQuoteRequested    ReservationStatus = "quote_requested"
	StatusQuoteAcknowledged ReservationStatus = "quote_acknowledged"
	StatusQuoteSent         ReservationStatus = "quote_sent"
	StatusQuoteAccepted     ReservationStatus = "quote_accepted"
	StatusQuoteRefused      ReservationStatus = "quote_refused"
	StatusQuoteExpired      ReservationStatus = "quote_expired"
)

// ReservationType distinguishes the standard flow from group quotes
type ReservationType string

const (
	TypeStandard   ReservationType = "standard"
	TypeGroupQuote ReservationType = "group_quote"
)

// PaymentType of the booking
type PaymentType string

const (
	PaymentFree PaymentType = "free"
	PaymentPaid PaymentType = "paid"
)

// StockType identifies which capacity pool the reservation consumes
type StockType string

const (
	StockPaid   StockType = "paid_stock"
	StockFree   StockType = "free_stock"
	StockBuffer StockType = "buffer"
)

// Reservation represents a booking request moving through the lifecycle.
// Mutated only through validated transitions; immutable once terminal.
type Reservation struct {
	ID              int64
	ClientID        int64
	EstablishmentID int64

	Status      ReservationStatus
	Type        ReservationType
	PaymentType PaymentType
	StockType   StockType

	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	PartySize       int

	// Deposit fields
	DepositRequired bool
	DepositAmount   *float64
	DepositPaidAt   *time.Time

	// Opaque check-in token reference; generation and rotation are external
	CheckinToken *string

	// Cancellation metadata
	CancellationClass  *CancellationClass
	CancellationReason *string
	CancelledAt        *time.Time

	// Venue-confirmation fields
	VenueConfirmationRequestedAt *time.Time
	VenueConfirmedAt             *time.Time
	VenueConfirmedBy             *int64

	// Deadlines computed at creation / status-entry time
	ProConfirmationDeadline  *time.Time
	VenueAutoValidationAt    *time.Time
	QuoteAcknowledgeDeadline *time.Time
	QuoteDeadline            *time.Time

	// Pro responsiveness inputs for the trust score
	ProRespondedAt *time.Time

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the reservation reached a terminal status
func (r *Reservation) IsTerminal() bool {
	return IsTerminalStatus(r.Status)
}

// IsOccupying returns true if the reservation currently counts against slot capacity
func (r *Reservation) IsOccupying() bool {
	return IsOccupyingStatus(r.Status)
}

// IsQuote returns true for group-quote reservations
func (r *Reservation) IsQuote() bool {
	return r.Type == TypeGroupQuote
}

// SlotStart combines Date and StartTime into the slot's starting instant
func (r *Reservation) SlotStart() (time.Time, error) {
	return r.StartTime.At(r.Date)
}

// EligibleForNoShowDeclaration returns true if a professional may open a
// no-show dispute against this reservation
func (r *Reservation) EligibleForNoShowDeclaration() bool {
	return r.Status == StatusConfirmed || r.Status == StatusDepositPaid
}

// IsTerminalStatus reports whether s is a terminal status
func IsTerminalStatus(s ReservationStatus) bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// IsOccupyingStatus reports whether s counts against slot capacity
func IsOccupyingStatus(s ReservationStatus) bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// ReservationFilter narrows reservation listings
type ReservationFilter struct {
	EstablishmentID *int64
	ClientID        *int64
	Date            *time.Time
	StartTime       *types.TimeString
	Statuses        []ReservationStatus
	OccupyingOnly   bool
}
