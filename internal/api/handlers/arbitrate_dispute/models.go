package arbitrate_dispute

import (
	"github.com/planeat-app/PLE-ReservationService/internal/service/disputes/models"
)

// ArbitrateDisputeRequest HTTP request model
type ArbitrateDisputeRequest struct {
	Outcome string  `json:"outcome"` // resolved_favor_client | resolved_favor_pro | resolved_indeterminate
	Notes   *string `json:"notes,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
// ID оператора берется из контекста (middleware Operator)
func (r *ArbitrateDisputeRequest) ToServiceRequest(operatorID int64) *models.ArbitrateRequest {
	return &models.ArbitrateRequest{
		OperatorID: operatorID,
		Outcome:    r.Outcome,
		Notes:      r.Notes,
	}
}
