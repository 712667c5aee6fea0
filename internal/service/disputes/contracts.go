package disputes

import (
	"context"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
)

// DisputeRepository интерфейс репозитория споров
type DisputeRepository interface {
	Create(ctx context.Context, d *domain.NoShowDispute) (*domain.NoShowDispute, error)
	GetByID(ctx context.Context, id int64) (*domain.NoShowDispute, error)
	GetByReservationID(ctx context.Context, reservationID int64) (*domain.NoShowDispute, error)
	RecordClientResponse(ctx context.Context, id int64, response domain.ClientDisputeResponse, respondedAt time.Time, to domain.DisputeStatus) error
	RecordArbitration(ctx context.Context, id int64, to domain.DisputeStatus, arbitratedBy int64, arbitratedAt time.Time, notes *string) error
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.DisputeStatus) error
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.ReservationStatus) error
}

// TrustService интерфейс сервиса доверия
type TrustService interface {
	RecordNoShow(ctx context.Context, clientID int64) (*domain.ClientSanctionDecision, error)
	RecordHonored(ctx context.Context, clientID int64) error
	RecordFalseNoShow(ctx context.Context, establishmentID int64, disputeID int64) error
}

// EventPublisher интерфейс издателя доменных событий
type EventPublisher interface {
	DisputeOpened(ctx context.Context, event notifier.DisputeOpenedEvent)
	DisputeResolved(ctx context.Context, event notifier.DisputeResolvedEvent)
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
