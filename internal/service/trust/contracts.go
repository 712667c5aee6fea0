package trust

import (
	"context"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/internal/infra/storage/reservation"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
)

// TrustRepository интерфейс репозитория счетчиков доверия и санкций
type TrustRepository interface {
	GetClientStats(ctx context.Context, clientID int64) (*domain.ClientStatsV2, error)
	UpsertClientStats(ctx context.Context, s *domain.ClientStatsV2) error
	GetProScore(ctx context.Context, establishmentID int64) (*domain.ProTrustScore, error)
	UpsertProScore(ctx context.Context, p *domain.ProTrustScore) error
	CreateEstablishmentSanction(ctx context.Context, s *domain.EstablishmentSanction) (*domain.EstablishmentSanction, error)
	GetEstablishmentSanction(ctx context.Context, id int64) (*domain.EstablishmentSanction, error)
	LiftEstablishmentSanction(ctx context.Context, id int64, liftedBy domain.SanctionActor, liftedAt time.Time, reason string) error
	CreateClientSuspension(ctx context.Context, s *domain.ClientSuspension) (*domain.ClientSuspension, error)
	GetClientSuspension(ctx context.Context, id int64) (*domain.ClientSuspension, error)
	LiftClientSuspension(ctx context.Context, id int64, liftedBy domain.SanctionActor, liftedAt time.Time, reason string) error
}

// ReservationRepository интерфейс репозитория броней (только агрегаты)
type ReservationRepository interface {
	GetProResponsivenessStats(ctx context.Context, establishmentID int64) (*reservation.ProResponsivenessStats, error)
}

// EventPublisher интерфейс издателя доменных событий
type EventPublisher interface {
	SanctionImposed(ctx context.Context, event notifier.SanctionImposedEvent)
	SanctionLifted(ctx context.Context, event notifier.SanctionLiftedEvent)
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
