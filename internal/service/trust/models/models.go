package models

import (
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
)

// Response модели

// ClientScoreResponse ответ со счетом доверия клиента
type ClientScoreResponse struct {
	ClientID int64   `json:"clientId"`
	Score    int     `json:"score"`
	Stars    float64 `json:"stars"`

	Honored               int `json:"honored"`
	NoShows               int `json:"noShows"`
	LateCancellations     int `json:"lateCancellations"`
	VeryLateCancellations int `json:"veryLateCancellations"`
	TotalReservations     int `json:"totalReservations"`

	IsSuspended         bool    `json:"isSuspended"`
	SuspendedUntil      *string `json:"suspendedUntil,omitempty"` // ISO 8601
	PermanentlyExcluded bool    `json:"permanentlyExcluded"`
}

// EstablishmentTrustResponse ответ с агрегатом доверия заведения
type EstablishmentTrustResponse struct {
	EstablishmentID int64 `json:"establishmentId"`
	Score           int   `json:"score"`

	ResponseRate       float64 `json:"responseRate"`
	AvgResponseMinutes float64 `json:"avgResponseMinutes"`
	FalseNoShowCount   int     `json:"falseNoShowCount"`
	CancellationRate   float64 `json:"cancellationRate"`

	SanctionLevel    string  `json:"sanctionLevel"`
	DeactivatedUntil *string `json:"deactivatedUntil,omitempty"` // ISO 8601
}

// Методы конвертации

// FromDomainClientStats конвертирует domain модель в DTO
func FromDomainClientStats(s *domain.ClientStatsV2) *ClientScoreResponse {
	if s == nil {
		return nil
	}

	resp := &ClientScoreResponse{
		ClientID:              s.ClientID,
		Score:                 s.Score,
		Stars:                 domain.ScoreToStars(s.Score),
		Honored:               s.Honored,
		NoShows:               s.NoShows,
		LateCancellations:     s.LateCancellations,
		VeryLateCancellations: s.VeryLateCancellations,
		TotalReservations:     s.TotalReservations,
		IsSuspended:           s.IsSuspended,
		PermanentlyExcluded:   s.PermanentlyExcluded,
	}

	if s.SuspendedUntil != nil {
		until := s.SuspendedUntil.Format(time.RFC3339)
		resp.SuspendedUntil = &until
	}

	return resp
}

// FromDomainProScore конвертирует domain модель в DTO
func FromDomainProScore(p *domain.ProTrustScore) *EstablishmentTrustResponse {
	if p == nil {
		return nil
	}

	resp := &EstablishmentTrustResponse{
		EstablishmentID:    p.EstablishmentID,
		Score:              p.Score,
		ResponseRate:       p.ResponseRate,
		AvgResponseMinutes: p.AvgResponseMinutes,
		FalseNoShowCount:   p.FalseNoShowCount,
		CancellationRate:   p.CancellationRate,
		SanctionLevel:      string(p.SanctionLevel),
	}

	if p.DeactivatedUntil != nil {
		until := p.DeactivatedUntil.Format(time.RFC3339)
		resp.DeactivatedUntil = &until
	}

	return resp
}
