package respond_dispute

import (
	"github.com/planeat-app/PLE-ReservationService/internal/service/disputes/models"
)

// RespondDisputeRequest HTTP request model
type RespondDisputeRequest struct {
	ClientID int64  `json:"clientId"`
	Response string `json:"response"` // confirm | dispute
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RespondDisputeRequest) ToServiceRequest() *models.RespondRequest {
	return &models.RespondRequest{
		ClientID: r.ClientID,
		Response: r.Response,
	}
}
