package capacityconfig

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/pkg/dbmetrics"
	"github.com/planeat-app/PLE-ReservationService/pkg/psqlbuilder"
)

type DBExecutor = dbmetrics.DBExecutor

var configColumns = []string{
	"id",
	"establishment_id",
	"day_of_week",
	"specific_date",
	"open_time",
	"close_time",
	"slot_interval_minutes",
	"total_capacity",
	"occupation_duration_minutes",
	"paid_stock_percentage",
	"free_stock_percentage",
	"buffer_percentage",
	"is_closed",
	"created_at",
	"updated_at",
}

// Repository репозиторий для чтения конфигурации вместимости
// Записи ведутся админским инструментарием вне этого сервиса - здесь только чтение
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetForDate находит применимую конфигурацию на дату:
// запись с specific_date имеет приоритет над шаблоном day_of_week
func (r *Repository) GetForDate(ctx context.Context, establishmentID int64, date time.Time) (*domain.EstablishmentCapacityConfig, error) {
	// 1. Точная дата
	config, err := r.getOne(ctx, squirrel.And{
		squirrel.Eq{"establishment_id": establishmentID},
		squirrel.Eq{"specific_date": date},
	})
	if err == nil {
		return config, nil
	}
	if err != ErrConfigNotFound {
		return nil, err
	}

	// 2. Шаблон по дню недели
	return r.getOne(ctx, squirrel.And{
		squirrel.Eq{"establishment_id": establishmentID},
		squirrel.Eq{"day_of_week": int(date.Weekday())},
		squirrel.Eq{"specific_date": nil},
	})
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Sqlizer) (*domain.EstablishmentCapacityConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From("establishment_capacity_config").
		Where(where).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	var config domain.EstablishmentCapacityConfig
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&config.EstablishmentID,
		&config.DayOfWeek,
		&config.SpecificDate,
		&config.OpenTime,
		&config.CloseTime,
		&config.SlotIntervalMinutes,
		&config.TotalCapacity,
		&config.OccupationDurationMinutes,
		&config.PaidStockPercentage,
		&config.FreeStockPercentage,
		&config.BufferPercentage,
		&config.IsClosed,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan config: %v", ErrScanRow, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return &config, nil
}
