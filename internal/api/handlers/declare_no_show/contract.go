package declare_no_show

import (
	"context"

	"github.com/planeat-app/PLE-ReservationService/internal/service/disputes/models"
)

type DisputeService interface {
	DeclareNoShow(ctx context.Context, reservationID int64, req *models.DeclareNoShowRequest) (*models.DisputeResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
