package trust

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/internal/infra/storage/reservation"
	trustRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/trust"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type nopTxManager struct{}

func (nopTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (nopTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (nopTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memTrustRepo struct {
	clientStats map[int64]*domain.ClientStatsV2
	proScores   map[int64]*domain.ProTrustScore
	sanctions   map[int64]*domain.EstablishmentSanction
	suspensions []*domain.ClientSuspension
	nextID      int64
}

func newMemTrustRepo() *memTrustRepo {
	return &memTrustRepo{
		clientStats: make(map[int64]*domain.ClientStatsV2),
		proScores:   make(map[int64]*domain.ProTrustScore),
		sanctions:   make(map[int64]*domain.EstablishmentSanction),
		nextID:      1,
	}
}

func (r *memTrustRepo) GetClientStats(_ context.Context, clientID int64) (*domain.ClientStatsV2, error) {
	s, ok := r.clientStats[clientID]
	if !ok {
		return nil, trustRepo.ErrStatsNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memTrustRepo) UpsertClientStats(_ context.Context, s *domain.ClientStatsV2) error {
	copied := *s
	r.clientStats[s.ClientID] = &copied
	return nil
}

func (r *memTrustRepo) GetProScore(_ context.Context, establishmentID int64) (*domain.ProTrustScore, error) {
	p, ok := r.proScores[establishmentID]
	if !ok {
		return nil, trustRepo.ErrProScoreNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memTrustRepo) UpsertProScore(_ context.Context, p *domain.ProTrustScore) error {
	copied := *p
	r.proScores[p.EstablishmentID] = &copied
	return nil
}

func (r *memTrustRepo) CreateEstablishmentSanction(_ context.Context, s *domain.EstablishmentSanction) (*domain.EstablishmentSanction, error) {
	created := *s
	created.ID = r.nextID
	r.nextID++
	r.sanctions[created.ID] = &created
	copied := created
	return &copied, nil
}

func (r *memTrustRepo) GetEstablishmentSanction(_ context.Context, id int64) (*domain.EstablishmentSanction, error) {
	s, ok := r.sanctions[id]
	if !ok {
		return nil, trustRepo.ErrSanctionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memTrustRepo) LiftEstablishmentSanction(_ context.Context, id int64, liftedBy domain.SanctionActor, liftedAt time.Time, reason string) error {
	s, ok := r.sanctions[id]
	if !ok {
		return trustRepo.ErrSanctionNotFound
	}
	if s.LiftedAt != nil {
		return trustRepo.ErrAlreadyLifted
	}
	s.LiftedBy = &liftedBy
	s.LiftedAt = &liftedAt
	s.LiftReason = &reason
	return nil
}

func (r *memTrustRepo) CreateClientSuspension(_ context.Context, s *domain.ClientSuspension) (*domain.ClientSuspension, error) {
	created := *s
	created.ID = r.nextID
	r.nextID++
	r.suspensions = append(r.suspensions, &created)
	copied := created
	return &copied, nil
}

func (r *memTrustRepo) GetClientSuspension(_ context.Context, id int64) (*domain.ClientSuspension, error) {
	for _, s := range r.suspensions {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, trustRepo.ErrSuspensionNotFound
}

func (r *memTrustRepo) LiftClientSuspension(_ context.Context, id int64, liftedBy domain.SanctionActor, liftedAt time.Time, reason string) error {
	for _, s := range r.suspensions {
		if s.ID == id {
			if s.LiftedAt != nil {
				return trustRepo.ErrAlreadyLifted
			}
			s.LiftedBy = &liftedBy
			s.LiftedAt = &liftedAt
			s.LiftReason = &reason
			return nil
		}
	}
	return trustRepo.ErrSuspensionNotFound
}

type stubStatsReader struct {
	stats reservation.ProResponsivenessStats
}

func (r *stubStatsReader) GetProResponsivenessStats(_ context.Context, _ int64) (*reservation.ProResponsivenessStats, error) {
	copied := r.stats
	return &copied, nil
}

type capturedEvents struct {
	imposed []notifier.SanctionImposedEvent
	lifted  []notifier.SanctionLiftedEvent
}

func (e *capturedEvents) SanctionImposed(_ context.Context, event notifier.SanctionImposedEvent) {
	e.imposed = append(e.imposed, event)
}

func (e *capturedEvents) SanctionLifted(_ context.Context, event notifier.SanctionLiftedEvent) {
	e.lifted = append(e.lifted, event)
}

type fixture struct {
	svc    *Service
	repo   *memTrustRepo
	stats  *stubStatsReader
	events *capturedEvents
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newMemTrustRepo(),
		stats:  &stubStatsReader{},
		events: &capturedEvents{},
		now:    time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.stats, nopTxManager{}, f.events, domain.DefaultProScorePolicy(), nopLogger{}, func() time.Time { return f.now })
	return f
}

func TestGetClientScoreWithoutHistory(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetClientScore(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, int64(10), resp.ClientID)
	assert.Equal(t, domain.ClientScoreBase, resp.Score)
	assert.False(t, resp.IsSuspended)
}

func TestRecordHonoredRaisesScore(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.RecordHonored(context.Background(), 10))
	}

	resp, err := f.svc.GetClientScore(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Honored)
	assert.Greater(t, resp.Score, domain.ClientScoreBase)
}

func TestNoShowEscalationLadder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Две неявки подряд санкции не дают
	for i := 0; i < 2; i++ {
		decision, err := f.svc.RecordNoShow(ctx, 10)
		require.NoError(t, err)
		assert.Nil(t, decision)
	}

	// Третья подряд - отстранение на 7 дней
	decision, err := f.svc.RecordNoShow(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.False(t, decision.Permanent)
	assert.Equal(t, 7*24*time.Hour, decision.Duration)

	stats := f.repo.clientStats[10]
	assert.True(t, stats.IsSuspended)
	require.NotNil(t, stats.SuspendedUntil)
	assert.Equal(t, f.now.Add(7*24*time.Hour), *stats.SuspendedUntil)
	require.Len(t, f.events.imposed, 1)
	assert.Equal(t, "suspension_7d", f.events.imposed[0].Type)

	// Следующая неявка после первого отстранения - сразу 30 дней
	decision, err = f.svc.RecordNoShow(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.Equal(t, 30*24*time.Hour, decision.Duration)

	// Затем постоянное исключение
	decision, err = f.svc.RecordNoShow(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.True(t, decision.Permanent)
	assert.True(t, f.repo.clientStats[10].PermanentlyExcluded)
	require.Len(t, f.events.imposed, 3)
	assert.Equal(t, "permanent_exclusion", f.events.imposed[2].Type)

	// Исключенный клиент дальше не эскалируется
	decision, err = f.svc.RecordNoShow(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, decision)

	// Каждое решение оставило аудиторскую запись
	assert.Len(t, f.repo.suspensions, 3)
}

func TestHonoredStreakResetsNoShowStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.RecordNoShow(ctx, 10)
		require.NoError(t, err)
	}
	// Пять состоявшихся визитов подряд обнуляют серию неявок
	for i := 0; i < 5; i++ {
		require.NoError(t, f.svc.RecordHonored(ctx, 10))
	}

	// Серия начинается заново: двух неявок снова мало для санкции
	for i := 0; i < 2; i++ {
		decision, err := f.svc.RecordNoShow(ctx, 10)
		require.NoError(t, err)
		assert.Nil(t, decision)
	}
	assert.False(t, f.repo.clientStats[10].IsSuspended)
}

func TestRecordFalseNoShowEscalatesEstablishment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Первое ложное объявление - предупреждение
	require.NoError(t, f.svc.RecordFalseNoShow(ctx, 100, 1))
	score := f.repo.proScores[100]
	assert.Equal(t, domain.ProSanctionWarning, score.SanctionLevel)
	assert.Nil(t, score.DeactivatedUntil)
	require.Len(t, f.events.imposed, 1)

	// Второе - деактивация на 7 дней
	require.NoError(t, f.svc.RecordFalseNoShow(ctx, 100, 2))
	score = f.repo.proScores[100]
	assert.Equal(t, domain.ProSanctionDeactivated7d, score.SanctionLevel)
	require.NotNil(t, score.DeactivatedUntil)
	assert.Equal(t, f.now.Add(7*24*time.Hour), *score.DeactivatedUntil)

	// Третье остается в пределах уровня 7d: лестница не шагает, санкция не дублируется
	require.NoError(t, f.svc.RecordFalseNoShow(ctx, 100, 3))
	score = f.repo.proScores[100]
	assert.Equal(t, domain.ProSanctionDeactivated7d, score.SanctionLevel)
	assert.Equal(t, 3, score.FalseNoShowCount)
	require.Len(t, f.events.imposed, 2)

	// Четвертое - 30 дней
	require.NoError(t, f.svc.RecordFalseNoShow(ctx, 100, 4))
	assert.Equal(t, domain.ProSanctionDeactivated30d, f.repo.proScores[100].SanctionLevel)

	// Шестое - постоянное исключение
	require.NoError(t, f.svc.RecordFalseNoShow(ctx, 100, 5))
	require.NoError(t, f.svc.RecordFalseNoShow(ctx, 100, 6))
	assert.Equal(t, domain.ProSanctionPermanentlyExcluded, f.repo.proScores[100].SanctionLevel)
}

func TestRecomputeProScoreUsesReservationAggregates(t *testing.T) {
	f := newFixture(t)
	f.stats.stats = reservation.ProResponsivenessStats{
		TotalRequests:      10,
		AnsweredInTime:     8,
		AvgResponseMinutes: 45,
		TotalFinished:      20,
		CancelledByPro:     2,
	}

	require.NoError(t, f.svc.RecomputeProScore(context.Background(), 100))

	score := f.repo.proScores[100]
	assert.InDelta(t, 0.8, score.ResponseRate, 1e-9)
	assert.InDelta(t, 0.1, score.CancellationRate, 1e-9)
	assert.Equal(t, 45.0, score.AvgResponseMinutes)
	assert.Equal(t, domain.ComputeProScore(*score, domain.DefaultProScorePolicy()), score.Score)
}

func TestGetEstablishmentTrustWithoutHistory(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetEstablishmentTrust(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, int64(100), resp.EstablishmentID)
	assert.Equal(t, 1.0, resp.ResponseRate)
	assert.Equal(t, string(domain.ProSanctionNone), resp.SanctionLevel)
}

func TestLiftSanction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Доводим заведение до действующей деактивации
	require.NoError(t, f.svc.RecordFalseNoShow(ctx, 100, 1))
	require.NoError(t, f.svc.RecordFalseNoShow(ctx, 100, 2))
	require.Len(t, f.events.imposed, 2)
	sanctionID := f.events.imposed[1].SanctionID
	require.Equal(t, domain.ProSanctionDeactivated7d, f.repo.proScores[100].SanctionLevel)

	require.NoError(t, f.svc.LiftSanction(ctx, sanctionID, "manual review cleared the establishment"))

	// Уровень откатился, аудиторская запись осталась со следами снятия
	score := f.repo.proScores[100]
	assert.Equal(t, domain.ProSanctionNone, score.SanctionLevel)
	assert.Nil(t, score.DeactivatedUntil)
	lifted := f.repo.sanctions[sanctionID]
	require.NotNil(t, lifted.LiftedAt)
	require.NotNil(t, lifted.LiftedBy)
	assert.Equal(t, domain.SanctionByOperator, *lifted.LiftedBy)
	require.Len(t, f.events.lifted, 1)

	// Повторное снятие
	err := f.svc.LiftSanction(ctx, sanctionID, "again")
	assert.ErrorIs(t, err, ErrSanctionAlreadyLifted)

	// Несуществующая санкция
	err = f.svc.LiftSanction(ctx, 404, "nothing here")
	assert.ErrorIs(t, err, ErrSanctionNotFound)
}

func TestLiftClientSuspension(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Три неявки подряд - действующее отстранение на 7 дней
	for i := 0; i < 3; i++ {
		_, err := f.svc.RecordNoShow(ctx, 10)
		require.NoError(t, err)
	}
	require.True(t, f.repo.clientStats[10].IsSuspended)
	require.Len(t, f.repo.suspensions, 1)
	suspensionID := f.repo.suspensions[0].ID

	require.NoError(t, f.svc.LiftClientSuspension(ctx, suspensionID, "identity theft confirmed by support"))

	// Клиенту возвращен доступ, аудиторская запись хранит следы снятия
	stats := f.repo.clientStats[10]
	assert.False(t, stats.IsSuspended)
	assert.Nil(t, stats.SuspendedUntil)
	lifted := f.repo.suspensions[0]
	require.NotNil(t, lifted.LiftedAt)
	require.NotNil(t, lifted.LiftedBy)
	assert.Equal(t, domain.SanctionByOperator, *lifted.LiftedBy)
	require.Len(t, f.events.lifted, 1)
	require.NotNil(t, f.events.lifted[0].ClientID)
	assert.Equal(t, int64(10), *f.events.lifted[0].ClientID)

	// Повторное снятие и несуществующая запись
	assert.ErrorIs(t, f.svc.LiftClientSuspension(ctx, suspensionID, "again"), ErrSanctionAlreadyLifted)
	assert.ErrorIs(t, f.svc.LiftClientSuspension(ctx, 404, "nothing here"), ErrSuspensionNotFound)
}

func TestLiftClientSuspensionExpiredWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.RecordNoShow(ctx, 10)
		require.NoError(t, err)
	}
	suspensionID := f.repo.suspensions[0].ID

	// Окно отстранения уже истекло: запись снимается, счетчики не трогаются
	f.now = f.now.Add(8 * 24 * time.Hour)
	require.NoError(t, f.svc.LiftClientSuspension(ctx, suspensionID, "late cleanup"))

	require.NotNil(t, f.repo.suspensions[0].LiftedAt)
	assert.True(t, f.repo.clientStats[10].IsSuspended)
}
