package domain

import "time"

// DisputeStatus tracks the no-show declaration workflow
type DisputeStatus string

const (
	DisputePendingClientResponse DisputeStatus = "pending_client_response"
	DisputePendingArbitration    DisputeStatus = "disputed_pending_arbitration"
	DisputeNoShowConfirmed       DisputeStatus = "no_show_confirmed"
	DisputeResolvedFavorClient   DisputeStatus = "resolved_favor_client"
	DisputeResolvedFavorPro      DisputeStatus = "resolved_favor_pro"
	DisputeResolvedIndeterminate DisputeStatus = "resolved_indeterminate"
)

// DisputeDeclarer is who opened the dispute
type DisputeDeclarer string

const (
	DeclaredByPro    DisputeDeclarer = "pro"
	DeclaredBySystem DisputeDeclarer = "system"
)

// ClientDisputeResponse is the client's answer within the 48h window
type ClientDisputeResponse string

const (
	ResponseConfirm ClientDisputeResponse = "confirm"
	ResponseDispute ClientDisputeResponse = "dispute"
)

// ArbitrationOutcome is the operator's ruling on a contested dispute
type ArbitrationOutcome string

const (
	OutcomeFavorClient   ArbitrationOutcome = "resolved_favor_client"
	OutcomeFavorPro      ArbitrationOutcome = "resolved_favor_pro"
	OutcomeIndeterminate ArbitrationOutcome = "resolved_indeterminate"
)

// NoShowDispute is an audit record linked 1:1 to a reservation.
// Never destroyed.
type NoShowDispute struct {
	ID              int64
	ReservationID   int64
	EstablishmentID int64
	ClientID        int64

	Status     DisputeStatus
	DeclaredBy DisputeDeclarer
	DeclaredAt time.Time

	ClientResponseDeadline time.Time
	ClientResponse         *ClientDisputeResponse
	ClientRespondedAt      *time.Time

	ArbitratedBy     *int64
	ArbitratedAt     *time.Time
	ArbitrationNotes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true once the dispute reached an outcome
func (d *NoShowDispute) IsTerminal() bool {
	switch d.Status {
	case DisputeNoShowConfirmed,
		DisputeResolvedFavorClient,
		DisputeResolvedFavorPro,
		DisputeResolvedIndeterminate:
		return true
	}
	return false
}

// ResponseWindowOpen reports whether the client may still respond at now
func (d *NoShowDispute) ResponseWindowOpen(now time.Time) bool {
	return now.Before(d.ClientResponseDeadline) || now.Equal(d.ClientResponseDeadline)
}

// DisputeStatusForOutcome maps an arbitration outcome to the dispute status
func DisputeStatusForOutcome(outcome ArbitrationOutcome) DisputeStatus {
	switch outcome {
	case OutcomeFavorClient:
		return DisputeResolvedFavorClient
	case OutcomeFavorPro:
		return DisputeResolvedFavorPro
	default:
		return DisputeResolvedIndeterminate
	}
}

// ReservationStatusForOutcome maps an arbitration outcome to the reservation's
// final status. resolved_favor_client means the client was present, so the
// reservation reverts to consumed; resolved_indeterminate gives the client the
// benefit of the doubt without moving any trust counters.
func ReservationStatusForOutcome(outcome ArbitrationOutcome) ReservationStatus {
	switch outcome {
	case OutcomeFavorPro:
		return StatusNoShowConfirmed
	default:
		return StatusConsumed
	}
}
