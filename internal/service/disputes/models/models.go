package models

import (
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
)

// Request модели

// DeclareNoShowRequest запрос заведения на объявление неявки
type DeclareNoShowRequest struct {
	EstablishmentID int64 `json:"establishmentId"`
}

// RespondRequest ответ клиента на объявленную неявку
type RespondRequest struct {
	ClientID int64  `json:"clientId"`
	Response string `json:"response"` // confirm | dispute
}

// ArbitrateRequest решение оператора по оспоренной неявке
type ArbitrateRequest struct {
	OperatorID int64   `json:"operatorId"`
	Outcome    string  `json:"outcome"` // resolved_favor_client | resolved_favor_pro | resolved_indeterminate
	Notes      *string `json:"notes,omitempty"`
}

// Response модели

// DisputeResponse ответ с данными спора
type DisputeResponse struct {
	ID              int64  `json:"id"`
	ReservationID   int64  `json:"reservationId"`
	EstablishmentID int64  `json:"establishmentId"`
	ClientID        int64  `json:"clientId"`
	Status          string `json:"status"`
	DeclaredBy      string `json:"declaredBy"`

	DeclaredAt             time.Time `json:"declaredAt"`
	ClientResponseDeadline time.Time `json:"clientResponseDeadline"`

	ClientResponse    *string    `json:"clientResponse,omitempty"`
	ClientRespondedAt *time.Time `json:"clientRespondedAt,omitempty"`

	ArbitratedBy     *int64     `json:"arbitratedBy,omitempty"`
	ArbitratedAt     *time.Time `json:"arbitratedAt,omitempty"`
	ArbitrationNotes *string    `json:"arbitrationNotes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Методы конвертации

// ToDomainResponse конвертирует строку ответа клиента в domain тип
func ToDomainResponse(s string) (domain.ClientDisputeResponse, bool) {
	switch domain.ClientDisputeResponse(s) {
	case domain.ResponseConfirm:
		return domain.ResponseConfirm, true
	case domain.ResponseDispute:
		return domain.ResponseDispute, true
	}
	return "", false
}

// ToDomainOutcome конвертирует строку исхода арбитража в domain тип
func ToDomainOutcome(s string) (domain.ArbitrationOutcome, bool) {
	switch domain.ArbitrationOutcome(s) {
	case domain.OutcomeFavorClient:
		return domain.OutcomeFavorClient, true
	case domain.OutcomeFavorPro:
		return domain.OutcomeFavorPro, true
	case domain.OutcomeIndeterminate:
		return domain.OutcomeIndeterminate, true
	}
	return "", false
}

// FromDomainDispute конвертирует domain модель в DTO
func FromDomainDispute(d *domain.NoShowDispute) *DisputeResponse {
	if d == nil {
		return nil
	}

	resp := &DisputeResponse{
		ID:                     d.ID,
		ReservationID:          d.ReservationID,
		EstablishmentID:        d.EstablishmentID,
		ClientID:               d.ClientID,
		Status:                 string(d.Status),
		DeclaredBy:             string(d.DeclaredBy),
		DeclaredAt:             d.DeclaredAt,
		ClientResponseDeadline: d.ClientResponseDeadline,
		ClientRespondedAt:      d.ClientRespondedAt,
		ArbitratedBy:           d.ArbitratedBy,
		ArbitratedAt:           d.ArbitratedAt,
		ArbitrationNotes:       d.ArbitrationNotes,
		CreatedAt:              d.CreatedAt,
	}

	if d.ClientResponse != nil {
		response := string(*d.ClientResponse)
		resp.ClientResponse = &response
	}

	return resp
}
