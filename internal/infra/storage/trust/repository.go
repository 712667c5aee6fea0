package trust

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

// Repository репозиторий для счетчиков доверия клиентов и заведений
// и неизменяемых аудиторских записей санкций
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория доверия
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetClientStats получает счетчики клиента
// Если записи нет - возвращает ErrStatsNotFound, вызывающий код
// инициализирует нулевые счетчики сам
func (r *Repository) GetClientStats(ctx context.Context, clientID int64) (*domain.ClientStatsV2, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(
		"client_id",
		"honored",
		"no_shows",
		"late_cancellations",
		"very_late_cancellations",
		"reviews_posted",
		"free_to_paid_conversions",
		"total_reservations",
		"consecutive_no_shows",
		"consecutive_honored",
		"suspension_count",
		"is_suspended",
		"suspended_until",
		"permanently_excluded",
		"score",
		"updated_at",
	).
		From("client_stats_v2").
		Where(squirrel.Eq{"client_id": clientID})

	// Счетчики читаются с блокировкой внутри транзакции, чтобы два
	// параллельных исхода не потеряли инкремент
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetClientStats - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.ClientStatsV2
	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ClientID,
		&s.Honored,
		&s.NoShows,
		&s.LateCancellations,
		&s.VeryLateCancellations,
		&s.ReviewsPosted,
		&s.FreeToPaidConversions,
		&s.TotalReservations,
		&s.ConsecutiveNoShows,
		&s.ConsecutiveHonored,
		&s.SuspensionCount,
		&s.IsSuspended,
		&s.SuspendedUntil,
		&s.PermanentlyExcluded,
		&s.Score,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetClientStats - scan stats: %v", ErrScanRow, err)
	}

	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// UpsertClientStats сохраняет счетчики клиента целиком
func (r *Repository) UpsertClientStats(ctx context.Context, s *domain.ClientStatsV2) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("client_stats_v2").
		Columns(
			"client_id",
			"honored",
			"no_shows",
			"late_cancellations",
			"very_late_cancellations",
			"reviews_posted",
			"free_to_paid_conversions",
			"total_reservations",
			"consecutive_no_shows",
			"consecutive_honored",
			"suspension_count",
			"is_suspended",
			"suspended_until",
			"permanently_excluded",
			"score",
		).
		Values(
			s.ClientID,
			s.Honored,
			s.NoShows,
			s.LateCancellations,
			s.VeryLateCancellations,
			s.ReviewsPosted,
			s.FreeToPaidConversions,
			s.TotalReservations,
			s.ConsecutiveNoShows,
			s.ConsecutiveHonored,
			s.SuspensionCount,
			s.IsSuspended,
			s.SuspendedUntil,
			s.PermanentlyExcluded,
			s.Score,
		).
		Suffix(`ON CONFLICT (client_id) DO UPDATE SET
			honored = EXCLUDED.honored,
			no_shows = EXCLUDED.no_shows,
			late_cancellations = EXCLUDED.late_cancellations,
			very_late_cancellations = EXCLUDED.very_late_cancellations,
			reviews_posted = EXCLUDED.reviews_posted,
			free_to_paid_conversions = EXCLUDED.free_to_paid_conversions,
			total_reservations = EXCLUDED.total_reservations,
			consecutive_no_shows = EXCLUDED.consecutive_no_shows,
			consecutive_honored = EXCLUDED.consecutive_honored,
			suspension_count = EXCLUDED.suspension_count,
			is_suspended = EXCLUDED.is_suspended,
			suspended_until = EXCLUDED.suspended_until,
			permanently_excluded = EXCLUDED.permanently_excluded,
			score = EXCLUDED.score,
			updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertClientStats - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertClientStats - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetProScore получает агрегат доверия заведения
func (r *Repository) GetProScore(ctx context.Context, establishmentID int64) (*domain.ProTrustScore, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(
		"establishment_id",
		"response_rate",
		"avg_response_minutes",
		"false_no_show_count",
		"cancellation_rate",
		"score",
		"sanction_level",
		"deactivated_until",
		"updated_at",
	).
		From("pro_trust_scores").
		Where(squirrel.Eq{"establishment_id": establishmentID})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetProScore - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.ProTrustScore
	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.EstablishmentID,
		&p.ResponseRate,
		&p.AvgResponseMinutes,
		&p.FalseNoShowCount,
		&p.CancellationRate,
		&p.Score,
		&p.SanctionLevel,
		&p.DeactivatedUntil,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProScoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProScore - scan score: %v", ErrScanRow, err)
	}

	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// UpsertProScore сохраняет агрегат доверия заведения целиком
func (r *Repository) UpsertProScore(ctx context.Context, p *domain.ProTrustScore) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("pro_trust_scores").
		Columns(
			"establishment_id",
			"response_rate",
			"avg_response_minutes",
			"false_no_show_count",
			"cancellation_rate",
			"score",
			"sanction_level",
			"deactivated_until",
		).
		Values(
			p.EstablishmentID,
			p.ResponseRate,
			p.AvgResponseMinutes,
			p.FalseNoShowCount,
			p.CancellationRate,
			p.Score,
			p.SanctionLevel,
			p.DeactivatedUntil,
		).
		Suffix(`ON CONFLICT (establishment_id) DO UPDATE SET
			response_rate = EXCLUDED.response_rate,
			avg_response_minutes = EXCLUDED.avg_response_minutes,
			false_no_show_count = EXCLUDED.false_no_show_count,
			cancellation_rate = EXCLUDED.cancellation_rate,
			score = EXCLUDED.score,
			sanction_level = EXCLUDED.sanction_level,
			deactivated_until = EXCLUDED.deactivated_until,
			updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertProScore - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertProScore - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// CreateEstablishmentSanction добавляет аудиторскую запись санкции заведения
func (r *Repository) CreateEstablishmentSanction(ctx context.Context, s *domain.EstablishmentSanction) (*domain.EstablishmentSanction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("establishment_sanctions").
		Columns(
			"establishment_id",
			"type",
			"reason",
			"dispute_id",
			"imposed_by",
			"imposed_at",
			"effective_until",
		).
		Values(
			s.EstablishmentID,
			s.Type,
			s.Reason,
			s.DisputeID,
			s.ImposedBy,
			s.ImposedAt,
			s.EffectiveUntil,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateEstablishmentSanction - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: CreateEstablishmentSanction - execute insert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time

	return s, nil
}

// GetEstablishmentSanction получает запись санкции по ID
func (r *Repository) GetEstablishmentSanction(ctx context.Context, id int64) (*domain.EstablishmentSanction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"establishment_id",
		"type",
		"reason",
		"dispute_id",
		"imposed_by",
		"imposed_at",
		"effective_until",
		"lifted_by",
		"lifted_at",
		"lift_reason",
		"created_at",
	).
		From("establishment_sanctions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetEstablishmentSanction - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.EstablishmentSanction
	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.EstablishmentID,
		&s.Type,
		&s.Reason,
		&s.DisputeID,
		&s.ImposedBy,
		&s.ImposedAt,
		&s.EffectiveUntil,
		&s.LiftedBy,
		&s.LiftedAt,
		&s.LiftReason,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSanctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetEstablishmentSanction - scan sanction: %v", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time

	return &s, nil
}

// LiftEstablishmentSanction снимает санкцию заведения
// Запись не удаляется - фиксируются автор, время и причина снятия
func (r *Repository) LiftEstablishmentSanction(
	ctx context.Context,
	id int64,
	liftedBy domain.SanctionActor,
	liftedAt time.Time,
	reason string,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("establishment_sanctions").
		Set("lifted_by", liftedBy).
		Set("lifted_at", liftedAt).
		Set("lift_reason", reason).
		Where(squirrel.Eq{"id": id}).
		Where("lifted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: LiftEstablishmentSanction - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: LiftEstablishmentSanction - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: LiftEstablishmentSanction - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := r.GetEstablishmentSanction(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyLifted
}

// CreateClientSuspension добавляет аудиторскую запись отстранения клиента
func (r *Repository) CreateClientSuspension(ctx context.Context, s *domain.ClientSuspension) (*domain.ClientSuspension, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("client_suspensions").
		Columns(
			"client_id",
			"reason",
			"permanent",
			"imposed_by",
			"imposed_at",
			"effective_until",
		).
		Values(
			s.ClientID,
			s.Reason,
			s.Permanent,
			s.ImposedBy,
			s.ImposedAt,
			s.EffectiveUntil,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateClientSuspension - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: CreateClientSuspension - execute insert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time

	return s, nil
}

// GetClientSuspension получает запись отстранения по ID
func (r *Repository) GetClientSuspension(ctx context.Context, id int64) (*domain.ClientSuspension, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"client_id",
		"reason",
		"permanent",
		"imposed_by",
		"imposed_at",
		"effective_until",
		"lifted_by",
		"lifted_at",
		"lift_reason",
		"created_at",
	).
		From("client_suspensions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetClientSuspension - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.ClientSuspension
	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.ClientID,
		&s.Reason,
		&s.Permanent,
		&s.ImposedBy,
		&s.ImposedAt,
		&s.EffectiveUntil,
		&s.LiftedBy,
		&s.LiftedAt,
		&s.LiftReason,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSuspensionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetClientSuspension - scan suspension: %v", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time

	return &s, nil
}

// LiftClientSuspension снимает отстранение клиента
// Запись не удаляется - фиксируются автор, время и причина снятия
func (r *Repository) LiftClientSuspension(
	ctx context.Context,
	id int64,
	liftedBy domain.SanctionActor,
	liftedAt time.Time,
	reason string,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("client_suspensions").
		Set("lifted_by", liftedBy).
		Set("lifted_at", liftedAt).
		Set("lift_reason", reason).
		Where(squirrel.Eq{"id": id}).
		Where("lifted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: LiftClientSuspension - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: LiftClientSuspension - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: LiftClientSuspension - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := r.GetClientSuspension(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyLifted
}
