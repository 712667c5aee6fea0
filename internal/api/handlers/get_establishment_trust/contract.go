package get_establishment_trust

import (
	"context"

	"github.com/planeat-app/PLE-ReservationService/internal/service/trust/models"
)

type TrustService interface {
	GetEstablishmentTrust(ctx context.Context, establishmentID int64) (*models.EstablishmentTrustResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
