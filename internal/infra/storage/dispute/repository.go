package dispute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/pkg/dbmetrics"
	"github.com/planeat-app/PLE-ReservationService/pkg/psqlbuilder"
)

type DBExecutor = dbmetrics.DBExecutor

// Код ошибки PostgreSQL для нарушения уникальности
const pgUniqueViolation = "23505"

var disputeColumns = []string{
	"id",
	"reservation_id",
	"establishment_id",
	"client_id",
	"status",
	"declared_by",
	"declared_at",
	"client_response_deadline",
	"client_response",
	"client_responded_at",
	"arbitrated_by",
	"arbitrated_at",
	"arbitration_notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со спорами о неявке
// Споры никогда не удаляются - это аудиторские записи
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория споров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает спор по брони
// Уникальный индекс по reservation_id гарантирует не больше одного спора на бронь
func (r *Repository) Create(ctx context.Context, d *domain.NoShowDispute) (*domain.NoShowDispute, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("no_show_disputes").
		Columns(
			"reservation_id",
			"establishment_id",
			"client_id",
			"status",
			"declared_by",
			"declared_at",
			"client_response_deadline",
		).
		Values(
			d.ReservationID,
			d.EstablishmentID,
			d.ClientID,
			d.Status,
			d.DeclaredBy,
			d.DeclaredAt,
			d.ClientResponseDeadline,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&d.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, ErrDisputeExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time

	return d, nil
}

// GetByID получает спор по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.NoShowDispute, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByReservationID получает спор по ID брони
func (r *Repository) GetByReservationID(ctx context.Context, reservationID int64) (*domain.NoShowDispute, error) {
	return r.getOne(ctx, squirrel.Eq{"reservation_id": reservationID})
}

// RecordClientResponse условно фиксирует ответ клиента и переводит спор
// из pending_client_response в новый статус
func (r *Repository) RecordClientResponse(
	ctx context.Context,
	id int64,
	response domain.ClientDisputeResponse,
	respondedAt time.Time,
	to domain.DisputeStatus,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("no_show_disputes").
		Set("status", to).
		Set("client_response", response).
		Set("client_responded_at", respondedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.DisputePendingClientResponse}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RecordClientResponse - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RecordClientResponse - execute update: %v", ErrExecQuery, err)
	}

	return r.checkConflict(ctx, result, id, "RecordClientResponse")
}

// RecordArbitration условно фиксирует решение оператора по спору
// Допустимо только из disputed_pending_arbitration
func (r *Repository) RecordArbitration(
	ctx context.Context,
	id int64,
	to domain.DisputeStatus,
	arbitratedBy int64,
	arbitratedAt time.Time,
	notes *string,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("no_show_disputes").
		Set("status", to).
		Set("arbitrated_by", arbitratedBy).
		Set("arbitrated_at", arbitratedAt).
		Set("arbitration_notes", notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.DisputePendingArbitration}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RecordArbitration - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RecordArbitration - execute update: %v", ErrExecQuery, err)
	}

	return r.checkConflict(ctx, result, id, "RecordArbitration")
}

// UpdateStatusIf условно обновляет статус спора (для sweep-переходов)
func (r *Repository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.DisputeStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("no_show_disputes").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatusIf - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatusIf - execute update: %v", ErrExecQuery, err)
	}

	return r.checkConflict(ctx, result, id, "UpdateStatusIf")
}

// ListPastResponseDeadline возвращает споры без ответа клиента, просрочившие
// 48-часовое окно
func (r *Repository) ListPastResponseDeadline(ctx context.Context, now time.Time) ([]*domain.NoShowDispute, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(disputeColumns...).
		From("no_show_disputes").
		Where(squirrel.Eq{"status": domain.DisputePendingClientResponse}).
		Where(squirrel.Lt{"client_response_deadline": now}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPastResponseDeadline - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPastResponseDeadline - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	disputes := make([]*domain.NoShowDispute, 0)
	for rows.Next() {
		d, err := scanDispute(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPastResponseDeadline - scan row: %v", ErrScanRow, err)
		}
		disputes = append(disputes, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPastResponseDeadline - rows error: %v", ErrScanRow, err)
	}

	return disputes, nil
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Sqlizer) (*domain.NoShowDispute, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(disputeColumns...).
		From("no_show_disputes").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	d, err := scanDispute(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan dispute: %v", ErrScanRow, err)
	}

	return d, nil
}

func (r *Repository) checkConflict(ctx context.Context, result sql.Result, id int64, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrStatusConflict
}

func scanDispute(scan func(dest ...interface{}) error) (*domain.NoShowDispute, error) {
	var d domain.NoShowDispute
	var createdAt, updatedAt sql.NullTime

	err := scan(
		&d.ID,
		&d.ReservationID,
		&d.EstablishmentID,
		&d.ClientID,
		&d.Status,
		&d.DeclaredBy,
		&d.DeclaredAt,
		&d.ClientResponseDeadline,
		&d.ClientResponse,
		&d.ClientRespondedAt,
		&d.ArbitratedBy,
		&d.ArbitratedAt,
		&d.ArbitrationNotes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time

	return &d, nil
}
