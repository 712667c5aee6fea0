package cancel_reservation

import (
	"github.com/planeat-app/PLE-ReservationService/internal/service/reservations/models"
)

// CancelReservationRequest HTTP request model
type CancelReservationRequest struct {
	ActorID int64   `json:"actorId"`
	IsPro   bool    `json:"isPro"`
	Reason  *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelReservationRequest) ToServiceRequest() *models.CancelRequest {
	return &models.CancelRequest{
		ActorID: r.ActorID,
		IsPro:   r.IsPro,
		Reason:  r.Reason,
	}
}
