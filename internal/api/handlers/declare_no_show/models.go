package declare_no_show

import (
	"github.com/planeat-app/PLE-ReservationService/internal/service/disputes/models"
)

// DeclareNoShowRequest HTTP request model
type DeclareNoShowRequest struct {
	EstablishmentID int64 `json:"establishmentId"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *DeclareNoShowRequest) ToServiceRequest() *models.DeclareNoShowRequest {
	return &models.DeclareNoShowRequest{
		EstablishmentID: r.EstablishmentID,
	}
}
