package create_reservation

import (
	"context"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	ListByFilter(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	ListByClient(ctx context.Context, clientID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error)
}

// ConfigRepository интерфейс репозитория конфигурации вместимости
type ConfigRepository interface {
	GetForDate(ctx context.Context, establishmentID int64, date time.Time) (*domain.EstablishmentCapacityConfig, error)
}

// ClientStatsReader интерфейс чтения счетчиков клиента
type ClientStatsReader interface {
	GetClientStats(ctx context.Context, clientID int64) (*domain.ClientStatsV2, error)
}

// TrustService интерфейс сервиса доверия
type TrustService interface {
	RecordFreeToPaidConversion(ctx context.Context, clientID int64) error
}

// EventPublisher интерфейс издателя доменных событий
type EventPublisher interface {
	ReservationStatusChanged(ctx context.Context, event notifier.ReservationStatusChangedEvent)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
