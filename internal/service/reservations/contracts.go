package reservations

import (
	"context"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	ListByClient(ctx context.Context, clientID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.ReservationStatus) error
	Cancel(ctx context.Context, id int64, from, to domain.ReservationStatus, class domain.CancellationClass, reason *string, cancelledAt time.Time) error
	MarkProResponded(ctx context.Context, id int64, at time.Time) error
	MarkVenueConfirmed(ctx context.Context, id int64, by int64, at time.Time) error
	MarkDepositPaid(ctx context.Context, id int64, from domain.ReservationStatus, paidAt time.Time) error
	AcknowledgeQuote(ctx context.Context, id int64, ackAt, quoteDeadline time.Time) error
}

// CheckinClient интерфейс клиента сервиса верификации чек-ин токенов
type CheckinClient interface {
	ValidateWithGracefulDegradation(ctx context.Context, reservationID int64, token string) error
}

// TrustService интерфейс сервиса доверия
type TrustService interface {
	RecordHonored(ctx context.Context, clientID int64) error
	RecordCancellation(ctx context.Context, clientID int64, class domain.CancellationClass) error
	RecomputeProScore(ctx context.Context, establishmentID int64) error
}

// EventPublisher интерфейс издателя доменных событий
type EventPublisher interface {
	ReservationStatusChanged(ctx context.Context, event notifier.ReservationStatusChangedEvent)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
