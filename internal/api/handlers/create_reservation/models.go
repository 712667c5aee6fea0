package create_reservation

import (
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	createReservation "github.com/planeat-app/PLE-ReservationService/internal/usecase/create_reservation"
	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	ClientID        int64    `json:"clientId"`
	EstablishmentID int64    `json:"establishmentId"`
	Type            string   `json:"type"`        // standard | group_quote
	PaymentType     string   `json:"paymentType"` // free | paid
	PromoEligible   bool     `json:"promoEligible"`
	Date            string   `json:"date"`      // YYYY-MM-DD
	StartTime       string   `json:"startTime"` // HH:MM
	PartySize       int      `json:"partySize"`
	DepositRequired bool     `json:"depositRequired"`
	DepositAmount   *float64 `json:"depositAmount,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
// (с парсингом даты и времени)
func (r *CreateReservationRequest) ToUseCaseRequest() (*createReservation.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createReservation.Request{
		ClientID:        r.ClientID,
		EstablishmentID: r.EstablishmentID,
		Type:            r.Type,
		PaymentType:     r.PaymentType,
		PromoEligible:   r.PromoEligible,
		Date:            date,
		StartTime:       startTime,
		PartySize:       r.PartySize,
		DepositRequired: r.DepositRequired,
		DepositAmount:   r.DepositAmount,
		Notes:           r.Notes,
	}, nil
}

// CreateReservationResponse HTTP response model
type CreateReservationResponse struct {
	ID              int64  `json:"id"`
	ClientID        int64  `json:"clientId"`
	EstablishmentID int64  `json:"establishmentId"`
	Status          string `json:"status"`
	Type            string `json:"type"`
	PaymentType     string `json:"paymentType"`
	StockType       string `json:"stockType"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	PartySize       int    `json:"partySize"`

	CheckinToken *string `json:"checkinToken,omitempty"`

	ProConfirmationDeadline  *string `json:"proConfirmationDeadline,omitempty"`  // ISO 8601
	QuoteAcknowledgeDeadline *string `json:"quoteAcknowledgeDeadline,omitempty"` // ISO 8601

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(r *createReservation.Response) *CreateReservationResponse {
	resp := &CreateReservationResponse{
		ID:              r.ID,
		ClientID:        r.ClientID,
		EstablishmentID: r.EstablishmentID,
		Status:          r.Status,
		Type:            r.Type,
		PaymentType:     r.PaymentType,
		StockType:       r.StockType,
		Date:            r.Date.Format(domain.DateFormat),
		StartTime:       r.StartTime.String(),
		DurationMinutes: r.DurationMinutes,
		PartySize:       r.PartySize,
		CheckinToken:    r.CheckinToken,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
	}

	if r.ProConfirmationDeadline != nil {
		formatted := r.ProConfirmationDeadline.Format(time.RFC3339)
		resp.ProConfirmationDeadline = &formatted
	}
	if r.QuoteAcknowledgeDeadline != nil {
		formatted := r.QuoteAcknowledgeDeadline.Format(time.RFC3339)
		resp.QuoteAcknowledgeDeadline = &formatted
	}

	return resp
}
