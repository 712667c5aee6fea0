package transition_reservation

import (
	"github.com/planeat-app/PLE-ReservationService/internal/service/reservations/models"
)

// TransitionRequest HTTP request model
type TransitionRequest struct {
	ActorID int64  `json:"actorId"`
	IsPro   bool   `json:"isPro"`
	Status  string `json:"status"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *TransitionRequest) ToServiceRequest() *models.TransitionRequest {
	return &models.TransitionRequest{
		ActorID: r.ActorID,
		IsPro:   r.IsPro,
		Status:  r.Status,
	}
}
