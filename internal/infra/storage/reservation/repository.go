package reservation

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

// Колонки таблицы reservations в порядке сканирования
var reservationColumns = []string{
	"id",
	"client_id",
	"establishment_id",
	"status",
	"type",
	"payment_type",
	"stock_type",
	"date",
	"start_time",
	"duration_minutes",
	"party_size",
	"deposit_required",
	"deposit_amount",
	"deposit_paid_at",
	"checkin_token",
	"cancellation_class",
	"cancellation_reason",
	"cancelled_at",
	"venue_confirmation_requested_at",
	"venue_confirmed_at",
	"venue_confirmed_by",
	"pro_confirmation_deadline",
	"venue_auto_validation_at",
	"quote_acknowledge_deadline",
	"quote_deadline",
	"pro_responded_at",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория броней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую бронь
// Если в контексте передана активная транзакция, использует её - при создании
// брони с проверкой вместимости слота это обязательно (race condition)
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"client_id",
			"establishment_id",
			"status",
			"type",
			"payment_type",
			"stock_type",
			"date",
			"start_time",
			"duration_minutes",
			"party_size",
			"deposit_required",
			"deposit_amount",
			"checkin_token",
			"pro_confirmation_deadline",
			"venue_auto_validation_at",
			"quote_acknowledge_deadline",
			"notes",
		).
		Values(
			res.ClientID,
			res.EstablishmentID,
			res.Status,
			res.Type,
			res.PaymentType,
			res.StockType,
			res.Date,
			res.StartTime,
			res.DurationMinutes,
			res.PartySize,
			res.DepositRequired,
			res.DepositAmount,
			res.CheckinToken,
			res.ProConfirmationDeadline,
			res.VenueAutoValidationAt,
			res.QuoteAcknowledgeDeadline,
			res.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронь по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	res, err := scanReservation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}

	return res, nil
}

// ListByClient получает список броней клиента
// Опционально фильтрует по статусу
func (r *Repository) ListByClient(ctx context.Context, clientID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListByFilter получает брони по фильтру
// Внутри транзакции для конкретного слота добавляет FOR UPDATE - так сериализуются
// конкурентные бронирования одного слота
func (r *Repository) ListByFilter(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations")

	if filter.EstablishmentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"establishment_id": *filter.EstablishmentID})
	}
	if filter.ClientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"date": *filter.Date})
	}
	if filter.StartTime != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"start_time": *filter.StartTime})
	}
	if len(filter.Statuses) > 0 {
		statusStrings := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings})
	}
	if filter.OccupyingOnly {
		occupying := make([]string, len(domain.OccupyingStatuses))
		for i, s := range domain.OccupyingStatuses {
			occupying[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": occupying})
	}

	selectBuilder = selectBuilder.OrderBy("date ASC, start_time ASC, id ASC")

	// Блокировка строк слота: только в транзакции и только для конкретного слота
	if dbmetrics.IsInTransaction(ctx) && filter.Date != nil && filter.StartTime != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// UpdateStatusIf условно обновляет статус: UPDATE ... WHERE status = from
// Возвращает ErrStatusConflict, если бронь уже не в ожидаемом статусе -
// на этом строится идемпотентность sweep-переходов
func (r *Repository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.ReservationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
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

// Cancel условно отменяет бронь с записью классификации и причины
func (r *Repository) Cancel(
	ctx context.Context,
	id int64,
	from, to domain.ReservationStatus,
	class domain.CancellationClass,
	reason *string,
	cancelledAt time.Time,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", to).
		Set("cancellation_class", class).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	return r.checkConflict(ctx, result, id, "Cancel")
}

// MarkProResponded фиксирует момент ответа заведения (для pro trust score)
// Только первый ответ: повторные вызовы не перезаписывают время
func (r *Repository) MarkProResponded(ctx context.Context, id int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("pro_responded_at", at).
		Where(squirrel.Eq{"id": id}).
		Where("pro_responded_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkProResponded - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkProResponded - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// MarkVenueConfirmed фиксирует подтверждение исхода визита заведением
func (r *Repository) MarkVenueConfirmed(ctx context.Context, id int64, by int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("venue_confirmed_at", at).
		Set("venue_confirmed_by", by).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkVenueConfirmed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkVenueConfirmed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkVenueConfirmed - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// MarkVenueConfirmationRequested фиксирует момент запроса подтверждения у заведения
func (r *Repository) MarkVenueConfirmationRequested(ctx context.Context, id int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("venue_confirmation_requested_at", at).
		Where(squirrel.Eq{"id": id}).
		Where("venue_confirmation_requested_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkVenueConfirmationRequested - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkVenueConfirmationRequested - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// MarkDepositPaid условно переводит бронь в deposit_paid с фиксацией оплаты
func (r *Repository) MarkDepositPaid(ctx context.Context, id int64, from domain.ReservationStatus, paidAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusDepositPaid).
		Set("deposit_paid_at", paidAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkDepositPaid - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkDepositPaid - execute update: %v", ErrExecQuery, err)
	}

	return r.checkConflict(ctx, result, id, "MarkDepositPaid")
}

// AcknowledgeQuote условно переводит заявку на групповое предложение в
// quote_acknowledged и фиксирует дедлайн отправки предложения
func (r *Repository) AcknowledgeQuote(ctx context.Context, id int64, ackAt, quoteDeadline time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusQuoteAcknowledged).
		Set("quote_deadline", quoteDeadline).
		Set("pro_responded_at", ackAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusQuoteRequested}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AcknowledgeQuote - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AcknowledgeQuote - execute update: %v", ErrExecQuery, err)
	}

	return r.checkConflict(ctx, result, id, "AcknowledgeQuote")
}

// ListDueVenueConfirmation возвращает брони, по которым пора запросить у
// заведения подтверждение исхода визита (слот + 12ч) и запрос еще не отправлялся
func (r *Repository) ListDueVenueConfirmation(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Чекпоинт запроса не хранится отдельно: он на 12 часов раньше
	// момента авто-валидации
	requestCheckpoint := now.Add(domain.VenueAutoValidationDelay - domain.VenueConfirmationRequestDelay)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"status": []string{
			string(domain.StatusConfirmed),
			string(domain.StatusDepositPaid),
			string(domain.StatusCheckedIn),
		}}).
		Where(squirrel.Lt{"venue_auto_validation_at": requestCheckpoint}).
		Where("venue_confirmed_at IS NULL").
		Where("venue_confirmation_requested_at IS NULL").
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListDueVenueConfirmation - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueVenueConfirmation - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListPastProConfirmation возвращает брони, просрочившие дедлайн подтверждения
// заведением и все еще ожидающие его
func (r *Repository) ListPastProConfirmation(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	return r.listPastDeadline(ctx, "pro_confirmation_deadline", now,
		[]domain.ReservationStatus{domain.StatusRequested, domain.StatusPendingProValidation}, "")
}

// ListPastAutoValidation возвращает подтвержденные брони без ответа заведения,
// просрочившие окно авто-валидации
func (r *Repository) ListPastAutoValidation(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	return r.listPastDeadline(ctx, "venue_auto_validation_at", now,
		[]domain.ReservationStatus{domain.StatusConfirmed, domain.StatusDepositPaid},
		"venue_confirmed_at IS NULL")
}

// ListQuotesPastAcknowledge возвращает заявки на групповые предложения,
// не подтвержденные заведением за 48 часов
func (r *Repository) ListQuotesPastAcknowledge(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	return r.listPastDeadline(ctx, "quote_acknowledge_deadline", now,
		[]domain.ReservationStatus{domain.StatusQuoteRequested}, "")
}

// ListQuotesPastDeadline возвращает отправленные предложения, просрочившие
// недельное окно принятия
func (r *Repository) ListQuotesPastDeadline(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	return r.listPastDeadline(ctx, "quote_deadline", now,
		[]domain.ReservationStatus{domain.StatusQuoteAcknowledged, domain.StatusQuoteSent}, "")
}

func (r *Repository) listPastDeadline(
	ctx context.Context,
	deadlineColumn string,
	now time.Time,
	statuses []domain.ReservationStatus,
	extraCond string,
) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"status": statusStrings}).
		Where(squirrel.Lt{deadlineColumn: now}).
		OrderBy("id ASC")

	if extraCond != "" {
		selectBuilder = selectBuilder.Where(extraCond)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listPastDeadline(%s) - build select query: %v", ErrBuildQuery, deadlineColumn, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listPastDeadline(%s) - execute query: %v", ErrExecQuery, deadlineColumn, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ProResponsivenessStats агрегаты ответственности заведения для pro trust score
type ProResponsivenessStats struct {
	TotalRequests      int
	AnsweredInTime     int
	AvgResponseMinutes float64
	TotalFinished      int
	CancelledByPro     int
}

// GetProResponsivenessStats считает агрегаты по истории броней заведения
func (r *Repository) GetProResponsivenessStats(ctx context.Context, establishmentID int64) (*ProResponsivenessStats, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COUNT(*) FILTER (WHERE pro_confirmation_deadline IS NOT NULL)",
		"COUNT(*) FILTER (WHERE pro_responded_at IS NOT NULL AND pro_responded_at <= pro_confirmation_deadline)",
		"COALESCE(AVG(EXTRACT(EPOCH FROM (pro_responded_at - created_at)) / 60) FILTER (WHERE pro_responded_at IS NOT NULL), 0)",
		"COUNT(*) FILTER (WHERE status IN ('consumed', 'consumed_default', 'no_show_confirmed', 'cancelled_user', 'cancelled_pro'))",
		"COUNT(*) FILTER (WHERE status = 'cancelled_pro')",
	).
		From("reservations").
		Where(squirrel.Eq{"establishment_id": establishmentID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetProResponsivenessStats - build select query: %v", ErrBuildQuery, err)
	}

	var stats ProResponsivenessStats
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalRequests,
		&stats.AnsweredInTime,
		&stats.AvgResponseMinutes,
		&stats.TotalFinished,
		&stats.CancelledByPro,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: GetProResponsivenessStats - scan: %v", ErrScanRow, err)
	}

	return &stats, nil
}

func (r *Repository) checkConflict(ctx context.Context, result sql.Result, id int64, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Различаем "не найдена" и "статус уже другой"
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrStatusConflict
}

// scanReservation сканирует одну бронь; scan - функция вида row.Scan
func scanReservation(scan func(dest ...interface{}) error) (*domain.Reservation, error) {
	var res domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := scan(
		&res.ID,
		&res.ClientID,
		&res.EstablishmentID,
		&res.Status,
		&res.Type,
		&res.PaymentType,
		&res.StockType,
		&res.Date,
		&res.StartTime,
		&res.DurationMinutes,
		&res.PartySize,
		&res.DepositRequired,
		&res.DepositAmount,
		&res.DepositPaidAt,
		&res.CheckinToken,
		&res.CancellationClass,
		&res.CancellationReason,
		&res.CancelledAt,
		&res.VenueConfirmationRequestedAt,
		&res.VenueConfirmedAt,
		&res.VenueConfirmedBy,
		&res.ProConfirmationDeadline,
		&res.VenueAutoValidationAt,
		&res.QuoteAcknowledgeDeadline,
		&res.QuoteDeadline,
		&res.ProRespondedAt,
		&res.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс броней
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}
