package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	reservationRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/reservation"
	checkinClient "github.com/planeat-app/PLE-ReservationService/internal/integrations/checkin"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
	"github.com/planeat-app/PLE-ReservationService/internal/service/reservations/models"
	"github.com/planeat-app/PLE-ReservationService/pkg/ptr"
	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type memReservationRepo struct {
	byID map[int64]*domain.Reservation
}

func (r *memReservationRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	res, ok := r.byID[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	copied := *res
	return &copied, nil
}

func (r *memReservationRepo) ListByClient(_ context.Context, clientID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	for _, res := range r.byID {
		if res.ClientID != clientID {
			continue
		}
		if status != nil && res.Status != *status {
			continue
		}
		copied := *res
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memReservationRepo) UpdateStatusIf(_ context.Context, id int64, from, to domain.ReservationStatus) error {
	res, ok := r.byID[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if res.Status != from {
		return reservationRepo.ErrStatusConflict
	}
	res.Status = to
	return nil
}

func (r *memReservationRepo) Cancel(_ context.Context, id int64, from, to domain.ReservationStatus, class domain.CancellationClass, reason *string, cancelledAt time.Time) error {
	res, ok := r.byID[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if res.Status != from {
		return reservationRepo.ErrStatusConflict
	}
	res.Status = to
	res.CancellationClass = &class
	res.CancellationReason = reason
	res.CancelledAt = &cancelledAt
	return nil
}

func (r *memReservationRepo) MarkProResponded(_ context.Context, id int64, at time.Time) error {
	res, ok := r.byID[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	res.ProRespondedAt = &at
	return nil
}

func (r *memReservationRepo) MarkVenueConfirmed(_ context.Context, id int64, by int64, at time.Time) error {
	res, ok := r.byID[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	res.VenueConfirmedAt = &at
	res.VenueConfirmedBy = &by
	return nil
}

func (r *memReservationRepo) MarkDepositPaid(_ context.Context, id int64, from domain.ReservationStatus, paidAt time.Time) error {
	res, ok := r.byID[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if res.Status != from {
		return reservationRepo.ErrStatusConflict
	}
	res.Status = domain.StatusDepositPaid
	res.DepositPaidAt = &paidAt
	return nil
}

func (r *memReservationRepo) AcknowledgeQuote(_ context.Context, id int64, ackAt, quoteDeadline time.Time) error {
	res, ok := r.byID[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if res.Status != domain.StatusQuoteRequested {
		return reservationRepo.ErrStatusConflict
	}
	res.Status = domain.StatusQuoteAcknowledged
	res.QuoteDeadline = &quoteDeadline
	return nil
}

type stubCheckinClient struct {
	err error // nil - токен принят сервисом верификации
}

func (c *stubCheckinClient) ValidateWithGracefulDegradation(_ context.Context, _ int64, _ string) error {
	return c.err
}

type trustCalls struct {
	honored       []int64
	cancellations []domain.CancellationClass
	recomputed    []int64
}

func (t *trustCalls) RecordHonored(_ context.Context, clientID int64) error {
	t.honored = append(t.honored, clientID)
	return nil
}

func (t *trustCalls) RecordCancellation(_ context.Context, _ int64, class domain.CancellationClass) error {
	t.cancellations = append(t.cancellations, class)
	return nil
}

func (t *trustCalls) RecomputeProScore(_ context.Context, establishmentID int64) error {
	t.recomputed = append(t.recomputed, establishmentID)
	return nil
}

type capturedEvents struct {
	statusChanged []notifier.ReservationStatusChangedEvent
}

func (e *capturedEvents) ReservationStatusChanged(_ context.Context, event notifier.ReservationStatusChangedEvent) {
	e.statusChanged = append(e.statusChanged, event)
}

type fixture struct {
	svc     *Service
	repo    *memReservationRepo
	checkin *stubCheckinClient
	trust   *trustCalls
	events  *capturedEvents
	now     time.Time
}

func newFixture(t *testing.T, reservations ...*domain.Reservation) *fixture {
	t.Helper()
	f := &fixture{
		repo:    &memReservationRepo{byID: make(map[int64]*domain.Reservation)},
		checkin: &stubCheckinClient{},
		trust:   &trustCalls{},
		events:  &capturedEvents{},
		now:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
	for _, res := range reservations {
		f.repo.byID[res.ID] = res
	}
	f.svc = NewService(f.repo, f.checkin, f.trust, f.events, nopLogger{}, func() time.Time { return f.now })
	return f
}

// Бронь со слотом через hoursAhead часов от времени фикстуры
func slotReservation(id int64, status domain.ReservationStatus, hoursAhead int) *domain.Reservation {
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	slot := base.Add(time.Duration(hoursAhead) * time.Hour)
	return &domain.Reservation{
		ID:              id,
		ClientID:        10,
		EstablishmentID: 100,
		Status:          status,
		Type:            domain.TypeStandard,
		PaymentType:     domain.PaymentPaid,
		StockType:       domain.StockPaid,
		Date:            time.Date(slot.Year(), slot.Month(), slot.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:       types.NewTimeString(slot),
		PartySize:       4,
	}
}

func TestGetByIDAccess(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusConfirmed, 48))

	resp, err := f.svc.GetByID(context.Background(), 1, 10) // клиент
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)

	_, err = f.svc.GetByID(context.Background(), 1, 100) // заведение
	assert.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestProConfirmsRequest(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusRequested, 48))

	resp, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
		ActorID: 100, IsPro: true, Status: string(domain.StatusConfirmed),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	// Первый ответ заведения фиксируется для счета отзывчивости
	require.NotNil(t, f.repo.byID[1].ProRespondedAt)
	assert.Equal(t, []int64{100}, f.trust.recomputed)
	require.Len(t, f.events.statusChanged, 1)
	assert.Equal(t, string(domain.StatusRequested), f.events.statusChanged[0].FromStatus)
}

func TestVenueConfirmsOutcome(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusCheckedIn, -3))

	resp, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
		ActorID: 100, IsPro: true, Status: string(domain.StatusConsumed),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConsumed), resp.Status)
	require.NotNil(t, f.repo.byID[1].VenueConfirmedAt)
	require.NotNil(t, f.repo.byID[1].VenueConfirmedBy)
	assert.Equal(t, int64(100), *f.repo.byID[1].VenueConfirmedBy)
	assert.Equal(t, []int64{10}, f.trust.honored)
}

func TestQuoteAcknowledgeSetsDeadline(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusQuoteRequested, 7*24))

	resp, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
		ActorID: 100, IsPro: true, Status: string(domain.StatusQuoteAcknowledged),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusQuoteAcknowledged), resp.Status)
	require.NotNil(t, f.repo.byID[1].QuoteDeadline)
	assert.Equal(t, f.now.Add(domain.QuoteWindow), *f.repo.byID[1].QuoteDeadline)
}

func TestTransitionGuards(t *testing.T) {
	t.Run("reserved target", func(t *testing.T) {
		f := newFixture(t, slotReservation(1, domain.StatusConfirmed, 48))
		_, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
			ActorID: 10, IsPro: false, Status: string(domain.StatusCheckedIn),
		})
		assert.ErrorIs(t, err, ErrTransitionReserved)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t, slotReservation(1, domain.StatusConfirmed, 48))
		_, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
			ActorID: 10, IsPro: false, Status: "teleported",
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("client takes pro transition", func(t *testing.T) {
		f := newFixture(t, slotReservation(1, domain.StatusRequested, 48))
		_, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
			ActorID: 10, IsPro: false, Status: string(domain.StatusConfirmed),
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("invalid transition", func(t *testing.T) {
		f := newFixture(t, slotReservation(1, domain.StatusRequested, 48))
		_, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
			ActorID: 100, IsPro: true, Status: string(domain.StatusConsumed),
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("terminal reservation", func(t *testing.T) {
		f := newFixture(t, slotReservation(1, domain.StatusExpired, 48))
		_, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
			ActorID: 100, IsPro: true, Status: string(domain.StatusConfirmed),
		})
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
	})
}

func TestTransitionRepeatIsNoOp(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusCheckedIn, -3))

	_, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
		ActorID: 100, IsPro: true, Status: string(domain.StatusConsumed),
	})
	require.NoError(t, err)
	require.Equal(t, []int64{10}, f.trust.honored)
	require.Len(t, f.events.statusChanged, 1)

	// Повтор того же перехода - no-op: счетчики и события не дублируются
	resp, err := f.svc.Transition(context.Background(), 1, &models.TransitionRequest{
		ActorID: 100, IsPro: true, Status: string(domain.StatusConsumed),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConsumed), resp.Status)
	assert.Equal(t, []int64{10}, f.trust.honored)
	assert.Len(t, f.events.statusChanged, 1)
}

func TestCancelClassification(t *testing.T) {
	tests := []struct {
		name       string
		hoursAhead int
		wantClass  domain.CancellationClass
	}{
		{"free cancellation", 48, domain.CancellationFree},
		{"late cancellation", 18, domain.CancellationLate},
		{"very late cancellation", 6, domain.CancellationVeryLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, slotReservation(1, domain.StatusConfirmed, tt.hoursAhead))

			err := f.svc.Cancel(context.Background(), 1, &models.CancelRequest{ActorID: 10})
			require.NoError(t, err)

			res := f.repo.byID[1]
			assert.Equal(t, domain.StatusCancelledUser, res.Status)
			require.NotNil(t, res.CancellationClass)
			assert.Equal(t, tt.wantClass, *res.CancellationClass)
			assert.Equal(t, []domain.CancellationClass{tt.wantClass}, f.trust.cancellations)
		})
	}
}

func TestCancelBlockedWithinThreeHours(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusConfirmed, 2))

	err := f.svc.Cancel(context.Background(), 1, &models.CancelRequest{ActorID: 10})
	assert.ErrorIs(t, err, ErrCancellationBlocked)
	assert.Equal(t, domain.StatusConfirmed, f.repo.byID[1].Status)
	assert.Empty(t, f.trust.cancellations)
}

func TestCancelRepeatIsTerminal(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusConfirmed, 48))

	require.NoError(t, f.svc.Cancel(context.Background(), 1, &models.CancelRequest{ActorID: 10}))

	res := f.repo.byID[1]
	require.NotNil(t, res.CancelledAt)
	firstAt := *res.CancelledAt
	firstClass := *res.CancellationClass
	assert.Equal(t, domain.CancellationFree, firstClass)

	// Спустя 30 часов классификация была бы другой - повтор не должен
	// переписать зафиксированную отмену
	f.now = f.now.Add(30 * time.Hour)
	err := f.svc.Cancel(context.Background(), 1, &models.CancelRequest{ActorID: 10})
	assert.ErrorIs(t, err, ErrAlreadyTerminal)

	assert.Equal(t, firstAt, *f.repo.byID[1].CancelledAt)
	assert.Equal(t, firstClass, *f.repo.byID[1].CancellationClass)
	assert.Equal(t, []domain.CancellationClass{domain.CancellationFree}, f.trust.cancellations)
}

func TestCancelQuoteRequestUnblocked(t *testing.T) {
	// Заявка на квоту не занимает слот: окно блокировки к ней не применяется
	res := slotReservation(1, domain.StatusQuoteRequested, 2)
	res.Type = domain.TypeGroupQuote
	f := newFixture(t, res)

	err := f.svc.Cancel(context.Background(), 1, &models.CancelRequest{ActorID: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelledUser, f.repo.byID[1].Status)
}

func TestCancelByPro(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusConfirmed, 2))

	// Заведение может отменить даже внутри блокирующего окна
	err := f.svc.Cancel(context.Background(), 1, &models.CancelRequest{ActorID: 100, IsPro: true})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelledPro, f.repo.byID[1].Status)
	assert.Equal(t, []int64{100}, f.trust.recomputed)
	assert.Empty(t, f.trust.cancellations)
}

func TestCancelAccess(t *testing.T) {
	f := newFixture(t, slotReservation(1, domain.StatusConfirmed, 48))

	err := f.svc.Cancel(context.Background(), 1, &models.CancelRequest{ActorID: 999})
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = f.svc.Cancel(context.Background(), 1, &models.CancelRequest{ActorID: 999, IsPro: true})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCheckIn(t *testing.T) {
	res := slotReservation(1, domain.StatusConfirmed, 0)
	res.CheckinToken = ptr.Ptr("a1b2c3")
	f := newFixture(t, res)

	resp, err := f.svc.CheckIn(context.Background(), 1, &models.CheckInRequest{ClientID: 10, Token: "a1b2c3"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCheckedIn), resp.Status)
	require.Len(t, f.events.statusChanged, 1)
	assert.Equal(t, string(domain.StatusCheckedIn), f.events.statusChanged[0].ToStatus)
}

func TestCheckInGuards(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		res := slotReservation(1, domain.StatusConfirmed, 0)
		res.CheckinToken = ptr.Ptr("a1b2c3")
		f := newFixture(t, res)
		f.checkin.err = checkinClient.ErrTokenInvalid

		_, err := f.svc.CheckIn(context.Background(), 1, &models.CheckInRequest{ClientID: 10, Token: "wrong"})
		assert.ErrorIs(t, err, ErrCheckinTokenInvalid)
	})

	t.Run("not checkinable status", func(t *testing.T) {
		f := newFixture(t, slotReservation(1, domain.StatusRequested, 0))
		_, err := f.svc.CheckIn(context.Background(), 1, &models.CheckInRequest{ClientID: 10, Token: "a1b2c3"})
		assert.ErrorIs(t, err, ErrNotCheckinable)
	})

	t.Run("foreign client", func(t *testing.T) {
		res := slotReservation(1, domain.StatusConfirmed, 0)
		res.CheckinToken = ptr.Ptr("a1b2c3")
		f := newFixture(t, res)
		_, err := f.svc.CheckIn(context.Background(), 1, &models.CheckInRequest{ClientID: 99, Token: "a1b2c3"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestCheckInDegradedVerification(t *testing.T) {
	// Сервис верификации недоступен: принимается локальное сравнение токена
	res := slotReservation(1, domain.StatusDepositPaid, 0)
	res.CheckinToken = ptr.Ptr("a1b2c3")
	f := newFixture(t, res)
	f.checkin.err = checkinClient.ErrServiceDegraded

	resp, err := f.svc.CheckIn(context.Background(), 1, &models.CheckInRequest{ClientID: 10, Token: "a1b2c3"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCheckedIn), resp.Status)

	// Несовпадающий токен в деградации отклоняется
	res2 := slotReservation(2, domain.StatusConfirmed, 0)
	res2.CheckinToken = ptr.Ptr("a1b2c3")
	f.repo.byID[2] = res2
	_, err = f.svc.CheckIn(context.Background(), 2, &models.CheckInRequest{ClientID: 10, Token: "zzz"})
	assert.ErrorIs(t, err, ErrCheckinTokenInvalid)
}

func TestGetClientReservationsFilter(t *testing.T) {
	f := newFixture(t,
		slotReservation(1, domain.StatusConfirmed, 48),
		slotReservation(2, domain.StatusConsumed, -48),
	)

	all, err := f.svc.GetClientReservations(context.Background(), &models.GetClientReservationsRequest{ClientID: 10})
	require.NoError(t, err)
	assert.Len(t, all.Reservations, 2)

	status := string(domain.StatusConfirmed)
	filtered, err := f.svc.GetClientReservations(context.Background(), &models.GetClientReservationsRequest{ClientID: 10, Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered.Reservations, 1)
	assert.Equal(t, int64(1), filtered.Reservations[0].ID)

	bad := "imaginary"
	_, err = f.svc.GetClientReservations(context.Background(), &models.GetClientReservationsRequest{ClientID: 10, Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
