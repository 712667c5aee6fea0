package models

import (
	"errors"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// TransitionRequest запрос на перевод брони в новый статус
type TransitionRequest struct {
	ActorID int64  `json:"actorId"`
	IsPro   bool   `json:"isPro"`
	Status  string `json:"status"`
}

// CancelRequest запрос на отмену брони
type CancelRequest struct {
	ActorID int64   `json:"actorId"`
	IsPro   bool    `json:"isPro"`
	Reason  *string `json:"reason,omitempty"`
}

// CheckInRequest запрос на чек-ин по токену
type CheckInRequest struct {
	ClientID int64  `json:"clientId"`
	Token    string `json:"token"`
}

// GetClientReservationsRequest запрос на историю броней клиента
type GetClientReservationsRequest struct {
	ClientID int64   `json:"clientId"`
	Status   *string `json:"status,omitempty"`
}

// Response модели

// ReservationResponse ответ с данными брони
type ReservationResponse struct {
	ID              int64  `json:"id"`
	ClientID        int64  `json:"clientId"`
	EstablishmentID int64  `json:"establishmentId"`
	Status          string `json:"status"`
	Type            string `json:"type"`
	PaymentType     string `json:"paymentType"`
	StockType       string `json:"stockType"`

	Date            string `json:"date"`      // "2026-03-15"
	StartTime       string `json:"startTime"` // "19:00"
	DurationMinutes int    `json:"durationMinutes"`
	PartySize       int    `json:"partySize"`

	DepositRequired bool     `json:"depositRequired"`
	DepositAmount   *float64 `json:"depositAmount,omitempty"`
	DepositPaidAt   *string  `json:"depositPaidAt,omitempty"` // ISO 8601

	CancellationClass  *string `json:"cancellationClass,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	ProConfirmationDeadline  *string `json:"proConfirmationDeadline,omitempty"`  // ISO 8601
	QuoteAcknowledgeDeadline *string `json:"quoteAcknowledgeDeadline,omitempty"` // ISO 8601
	QuoteDeadline            *string `json:"quoteDeadline,omitempty"`            // ISO 8601

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком броней
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// ToDomainStatus конвертирует строку в domain статус с валидацией
func ToDomainStatus(s string) (domain.ReservationStatus, error) {
	status := domain.ReservationStatus(s)
	switch status {
	case domain.StatusRequested,
		domain.StatusPendingProValidation,
		domain.StatusConfirmed,
		domain.StatusDepositPending,
		domain.StatusDepositPaid,
		domain.StatusCheckedIn,
		domain.StatusConsumed,
		domain.StatusConsumedDefault,
		domain.StatusNoShowDeclared,
		domain.StatusNoShowConfirmed,
		domain.StatusCancelledUser,
		domain.StatusCancelledPro,
		domain.StatusRefused,
		domain.StatusExpired,
		domain.StatusQuoteRequested,
		domain.StatusQuoteAcknowledged,
		domain.StatusQuoteSent,
		domain.StatusQuoteAccepted,
		domain.StatusQuoteRefused,
		domain.StatusQuoteExpired:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		ClientID:           r.ClientID,
		EstablishmentID:    r.EstablishmentID,
		Status:             string(r.Status),
		Type:               string(r.Type),
		PaymentType:        string(r.PaymentType),
		StockType:          string(r.StockType),
		Date:               r.Date.Format(domain.DateFormat),
		StartTime:          r.StartTime.String(),
		DurationMinutes:    r.DurationMinutes,
		PartySize:          r.PartySize,
		DepositRequired:    r.DepositRequired,
		DepositAmount:      r.DepositAmount,
		CancellationReason: r.CancellationReason,
		Notes:              r.Notes,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.CancellationClass != nil {
		class := string(*r.CancellationClass)
		resp.CancellationClass = &class
	}

	resp.DepositPaidAt = formatTime(r.DepositPaidAt)
	resp.CancelledAt = formatTime(r.CancelledAt)
	resp.ProConfirmationDeadline = formatTime(r.ProConfirmationDeadline)
	resp.QuoteAcknowledgeDeadline = formatTime(r.QuoteAcknowledgeDeadline)
	resp.QuoteDeadline = formatTime(r.QuoteDeadline)

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	result := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}
	for _, r := range reservations {
		result.Reservations = append(result.Reservations, *FromDomainReservation(r))
	}
	return result
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
