package respond_dispute

import (
	"context"

	"github.com/planeat-app/PLE-ReservationService/internal/service/disputes/models"
)

type DisputeService interface {
	ClientRespond(ctx context.Context, disputeID int64, req *models.RespondRequest) (*models.DisputeResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
