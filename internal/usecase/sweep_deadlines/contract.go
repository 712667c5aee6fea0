package sweep_deadlines

import (
	"context"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.ReservationStatus) error
	MarkVenueConfirmationRequested(ctx context.Context, id int64, at time.Time) error
	ListPastProConfirmation(ctx context.Context, now time.Time) ([]*domain.Reservation, error)
	ListDueVenueConfirmation(ctx context.Context, now time.Time) ([]*domain.Reservation, error)
	ListPastAutoValidation(ctx context.Context, now time.Time) ([]*domain.Reservation, error)
	ListQuotesPastAcknowledge(ctx context.Context, now time.Time) ([]*domain.Reservation, error)
	ListQuotesPastDeadline(ctx context.Context, now time.Time) ([]*domain.Reservation, error)
}

// DisputeRepository интерфейс репозитория споров
type DisputeRepository interface {
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.DisputeStatus) error
	ListPastResponseDeadline(ctx context.Context, now time.Time) ([]*domain.NoShowDispute, error)
}

// TrustService интерфейс сервиса доверия
type TrustService interface {
	RecordHonored(ctx context.Context, clientID int64) error
	RecordNoShow(ctx context.Context, clientID int64) (*domain.ClientSanctionDecision, error)
	RecomputeProScore(ctx context.Context, establishmentID int64) error
}

// EventPublisher интерфейс издателя доменных событий
type EventPublisher interface {
	ReservationStatusChanged(ctx context.Context, event notifier.ReservationStatusChangedEvent)
	VenueConfirmationRequested(ctx context.Context, event notifier.VenueConfirmationRequestedEvent)
	DisputeResolved(ctx context.Context, event notifier.DisputeResolvedEvent)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
