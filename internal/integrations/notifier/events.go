package notifier

import "time"

// Ключи маршрутизации событий
const (
	TopicReservationStatusChanged   = "reservation.status_changed"
	TopicVenueConfirmationRequested = "reservation.venue_confirmation_requested"
	TopicDisputeOpened              = "dispute.opened"
	TopicDisputeResolved            = "dispute.resolved"
	TopicSanctionImposed            = "sanction.imposed"
	TopicSanctionLifted             = "sanction.lifted"
)

// ReservationStatusChangedEvent публикуется при каждом переходе статуса брони
type ReservationStatusChangedEvent struct {
	ReservationID   int64     `json:"reservation_id"`
	ClientID        int64     `json:"client_id"`
	EstablishmentID int64     `json:"establishment_id"`
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// VenueConfirmationRequestedEvent публикуется, когда заведению пора
// подтвердить исход визита
type VenueConfirmationRequestedEvent struct {
	ReservationID    int64     `json:"reservation_id"`
	EstablishmentID  int64     `json:"establishment_id"`
	AutoValidationAt time.Time `json:"auto_validation_at"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// DisputeOpenedEvent публикуется при объявлении неявки
type DisputeOpenedEvent struct {
	DisputeID              int64     `json:"dispute_id"`
	ReservationID          int64     `json:"reservation_id"`
	ClientID               int64     `json:"client_id"`
	EstablishmentID        int64     `json:"establishment_id"`
	DeclaredBy             string    `json:"declared_by"`
	ClientResponseDeadline time.Time `json:"client_response_deadline"`
	OccurredAt             time.Time `json:"occurred_at"`
}

// DisputeResolvedEvent публикуется при любом исходе спора
type DisputeResolvedEvent struct {
	DisputeID       int64     `json:"dispute_id"`
	ReservationID   int64     `json:"reservation_id"`
	ClientID        int64     `json:"client_id"`
	EstablishmentID int64     `json:"establishment_id"`
	Outcome         string    `json:"outcome"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// SanctionImposedEvent публикуется при наложении санкции на клиента или заведение
type SanctionImposedEvent struct {
	SanctionID      int64      `json:"sanction_id"`
	ClientID        *int64     `json:"client_id,omitempty"`
	EstablishmentID *int64     `json:"establishment_id,omitempty"`
	Type            string     `json:"type"`
	Reason          string     `json:"reason"`
	EffectiveUntil  *time.Time `json:"effective_until,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

// SanctionLiftedEvent публикуется при досрочном снятии санкции или
// отстранения оператором
type SanctionLiftedEvent struct {
	SanctionID      int64     `json:"sanction_id"`
	ClientID        *int64    `json:"client_id,omitempty"`
	EstablishmentID *int64    `json:"establishment_id,omitempty"`
	Reason          string    `json:"reason"`
	OccurredAt      time.Time `json:"occurred_at"`
}
