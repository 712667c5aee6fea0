package check_in

import (
	"github.com/planeat-app/PLE-ReservationService/internal/service/reservations/models"
)

// CheckInRequest HTTP request model
type CheckInRequest struct {
	ClientID int64  `json:"clientId"`
	Token    string `json:"token"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CheckInRequest) ToServiceRequest() *models.CheckInRequest {
	return &models.CheckInRequest{
		ClientID: r.ClientID,
		Token:    r.Token,
	}
}
