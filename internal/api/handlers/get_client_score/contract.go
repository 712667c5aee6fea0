package get_client_score

import (
	"context"

	"github.com/planeat-app/PLE-ReservationService/internal/service/trust/models"
)

type TrustService interface {
	GetClientScore(ctx context.Context, clientID int64) (*models.ClientScoreResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
