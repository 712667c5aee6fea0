package create_reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	configRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/capacityconfig"
	trustRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/trust"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
	"github.com/planeat-app/PLE-ReservationService/pkg/ptr"
)

type fixedTime struct{ now time.Time }

func (p *fixedTime) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type serializableTxManager struct{}

func (serializableTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memReservationRepo struct {
	created []*domain.Reservation
	nextID  int64
}

func (r *memReservationRepo) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	r.nextID++
	created := *res
	created.ID = r.nextID
	r.created = append(r.created, &created)
	copied := created
	return &copied, nil
}

func (r *memReservationRepo) ListByFilter(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	for _, res := range r.created {
		if filter.EstablishmentID != nil && res.EstablishmentID != *filter.EstablishmentID {
			continue
		}
		if filter.Date != nil && !res.Date.Equal(*filter.Date) {
			continue
		}
		if filter.StartTime != nil && res.StartTime != *filter.StartTime {
			continue
		}
		if filter.OccupyingOnly && !res.IsOccupying() {
			continue
		}
		copied := *res
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memReservationRepo) ListByClient(_ context.Context, clientID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	for _, res := range r.created {
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

type stubConfigRepo struct {
	config *domain.EstablishmentCapacityConfig
}

func (r *stubConfigRepo) GetForDate(_ context.Context, _ int64, _ time.Time) (*domain.EstablishmentCapacityConfig, error) {
	if r.config == nil {
		return nil, configRepo.ErrConfigNotFound
	}
	copied := *r.config
	return &copied, nil
}

type stubStatsReader struct {
	stats *domain.ClientStatsV2
}

func (r *stubStatsReader) GetClientStats(_ context.Context, _ int64) (*domain.ClientStatsV2, error) {
	if r.stats == nil {
		return nil, trustRepo.ErrStatsNotFound
	}
	copied := *r.stats
	return &copied, nil
}

type trustCalls struct {
	conversions []int64
}

func (t *trustCalls) RecordFreeToPaidConversion(_ context.Context, clientID int64) error {
	t.conversions = append(t.conversions, clientID)
	return nil
}

type capturedEvents struct {
	statusChanged []notifier.ReservationStatusChangedEvent
}

func (e *capturedEvents) ReservationStatusChanged(_ context.Context, event notifier.ReservationStatusChangedEvent) {
	e.statusChanged = append(e.statusChanged, event)
}

type fixture struct {
	uc      *UseCase
	resRepo *memReservationRepo
	configs *stubConfigRepo
	stats   *stubStatsReader
	trust   *trustCalls
	events  *capturedEvents
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		resRepo: &memReservationRepo{},
		configs: &stubConfigRepo{config: defaultConfig()},
		stats:   &stubStatsReader{},
		trust:   &trustCalls{},
		events:  &capturedEvents{},
		now:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
	f.uc = NewUseCase(f.resRepo, f.configs, f.stats, f.trust, serializableTxManager{}, f.events, nopLogger{})
	f.uc.timeProvider = &fixedTime{now: f.now}
	return f
}

// 20 мест: 70/20/10 -> 14 paid, 4 free, 2 buffer
func defaultConfig() *domain.EstablishmentCapacityConfig {
	return &domain.EstablishmentCapacityConfig{
		ID:                        1,
		EstablishmentID:           100,
		OpenTime:                  "12:00",
		CloseTime:                 "22:00",
		SlotIntervalMinutes:       30,
		TotalCapacity:             20,
		OccupationDurationMinutes: 90,
		PaidStockPercentage:       70,
		FreeStockPercentage:       20,
		BufferPercentage:          10,
	}
}

func validRequest() *Request {
	return &Request{
		ClientID:        10,
		EstablishmentID: 100,
		Type:            string(domain.TypeStandard),
		PaymentType:     string(domain.PaymentPaid),
		Date:            time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "19:00",
		PartySize:       4,
	}
}

func TestCreateStandardReservation(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusRequested), resp.Status)
	assert.Equal(t, string(domain.StockPaid), resp.StockType)
	assert.Equal(t, 90, resp.DurationMinutes)
	require.NotNil(t, resp.CheckinToken)
	assert.Len(t, *resp.CheckinToken, 32)

	// Бронь не день в день: дедлайн подтверждения +12ч от создания
	require.NotNil(t, resp.ProConfirmationDeadline)
	assert.Equal(t, f.now.Add(domain.ProConfirmationDefaultDelay), *resp.ProConfirmationDeadline)
	assert.Nil(t, resp.QuoteAcknowledgeDeadline)

	created := f.resRepo.created[0]
	require.NotNil(t, created.VenueAutoValidationAt)
	slotStart, err := created.SlotStart()
	require.NoError(t, err)
	assert.Equal(t, slotStart.Add(domain.VenueAutoValidationDelay), *created.VenueAutoValidationAt)

	require.Len(t, f.events.statusChanged, 1)
	assert.Equal(t, string(domain.StatusRequested), f.events.statusChanged[0].ToStatus)
}

func TestCreateSameDayUsesShortDeadline(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.Date = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) // день запроса

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.ProConfirmationDeadline)
	assert.Equal(t, f.now.Add(domain.ProConfirmationSameDayDelay), *resp.ProConfirmationDeadline)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		mutate  func(req *Request)
		wantErr error
	}{
		{"zero client", func(req *Request) { req.ClientID = 0 }, ErrInvalidInput},
		{"unknown type", func(req *Request) { req.Type = "walk_in" }, ErrInvalidInput},
		{"unknown payment", func(req *Request) { req.PaymentType = "barter" }, ErrInvalidInput},
		{"zero party", func(req *Request) { req.PartySize = 0 }, ErrInvalidInput},
		{"oversized party", func(req *Request) { req.PartySize = domain.MaxPartySize + 1 }, ErrInvalidInput},
		{"bad time format", func(req *Request) { req.StartTime = "7pm" }, ErrInvalidInput},
		{"negative deposit", func(req *Request) { req.DepositAmount = ptr.Ptr(-10.0) }, ErrInvalidInput},
		{"past date", func(req *Request) { req.Date = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }, ErrInvalidDate},
		{"before opening", func(req *Request) { req.StartTime = "11:00" }, ErrInvalidTimeSlot},
		{"at closing", func(req *Request) { req.StartTime = "22:00" }, ErrInvalidTimeSlot},
		{"off the slot grid", func(req *Request) { req.StartTime = "19:10" }, ErrInvalidTimeSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateRejectsWhenPoolFull(t *testing.T) {
	f := newFixture(t)

	// Paid-пул на 14 мест: три брони по 4 оставляют 2 свободных
	for i := 0; i < 3; i++ {
		req := validRequest()
		req.ClientID = int64(10 + i)
		_, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
	}

	req := validRequest()
	req.ClientID = 50
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotFull)

	// Группа из 2 еще помещается
	req.PartySize = 2
	_, err = f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)

	// Другой слот не затронут
	req = validRequest()
	req.ClientID = 51
	req.StartTime = "20:00"
	_, err = f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateFreePoolRequiresPromo(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.PaymentType = string(domain.PaymentFree)

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrPoolNotBookable)

	req.PromoEligible = true
	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StockFree), resp.StockType)

	// Free-пул на 4 места: вторая четверка не помещается
	req2 := validRequest()
	req2.ClientID = 11
	req2.PaymentType = string(domain.PaymentFree)
	req2.PromoEligible = true
	_, err = f.uc.Execute(context.Background(), req2)
	assert.ErrorIs(t, err, ErrSlotFull)
}

func TestCreateSuspendedClient(t *testing.T) {
	f := newFixture(t)

	t.Run("active suspension", func(t *testing.T) {
		f.stats.stats = &domain.ClientStatsV2{
			ClientID:       10,
			IsSuspended:    true,
			SuspendedUntil: ptr.Ptr(f.now.Add(24 * time.Hour)),
		}
		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrClientSuspended)
	})

	t.Run("expired suspension", func(t *testing.T) {
		f.stats.stats = &domain.ClientStatsV2{
			ClientID:       10,
			IsSuspended:    true,
			SuspendedUntil: ptr.Ptr(f.now.Add(-24 * time.Hour)),
		}
		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.NoError(t, err)
	})

	t.Run("permanent exclusion", func(t *testing.T) {
		f.stats.stats = &domain.ClientStatsV2{ClientID: 10, PermanentlyExcluded: true}
		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrClientSuspended)
	})
}

func TestCreateConfigGuards(t *testing.T) {
	t.Run("no config", func(t *testing.T) {
		f := newFixture(t)
		f.configs.config = nil
		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("closed date", func(t *testing.T) {
		f := newFixture(t)
		f.configs.config.IsClosed = true
		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrEstablishmentClosed)
	})
}

func TestCreateQuoteRequest(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.Type = string(domain.TypeGroupQuote)
	req.PartySize = 25

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusQuoteRequested), resp.Status)
	require.NotNil(t, resp.QuoteAcknowledgeDeadline)
	assert.Equal(t, f.now.Add(domain.QuoteAcknowledgeWindow), *resp.QuoteAcknowledgeDeadline)
	assert.Nil(t, resp.ProConfirmationDeadline)
	assert.Nil(t, resp.CheckinToken)

	// Заявка на квоту не занимает слот: обычная бронь проходит без учета группы
	std := validRequest()
	std.ClientID = 11
	std.PartySize = 14
	_, err = f.uc.Execute(context.Background(), std)
	assert.NoError(t, err)
}

func TestFreeToPaidConversion(t *testing.T) {
	f := newFixture(t)

	// Состоявшийся бесплатный визит в истории
	f.resRepo.created = append(f.resRepo.created, &domain.Reservation{
		ID: 900, ClientID: 10, EstablishmentID: 100,
		Status:      domain.StatusConsumed,
		PaymentType: domain.PaymentFree,
		StockType:   domain.StockFree,
		Date:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		StartTime:   "19:00",
		PartySize:   2,
	})
	f.resRepo.nextID = 900

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, f.trust.conversions)

	// Вторая платная бронь конверсией уже не считается
	_, err = f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, f.trust.conversions)
}
