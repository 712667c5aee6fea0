package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	configRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/capacityconfig"
	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

type fixedTime struct{ now time.Time }

func (p *fixedTime) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type stubReservationRepo struct {
	reservations []*domain.Reservation
}

func (r *stubReservationRepo) ListByFilter(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	for _, res := range r.reservations {
		if filter.EstablishmentID != nil && res.EstablishmentID != *filter.EstablishmentID {
			continue
		}
		if filter.Date != nil && !res.Date.Equal(*filter.Date) {
			continue
		}
		if filter.OccupyingOnly && !res.IsOccupying() {
			continue
		}
		out = append(out, res)
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

// 20 мест: 70/20/10 -> 14 paid, 4 free, 2 buffer
func defaultConfig() *domain.EstablishmentCapacityConfig {
	return &domain.EstablishmentCapacityConfig{
		ID:                        1,
		EstablishmentID:           100,
		OpenTime:                  "18:00",
		CloseTime:                 "22:00",
		SlotIntervalMinutes:       60,
		TotalCapacity:             20,
		OccupationDurationMinutes: 90,
		PaidStockPercentage:       70,
		FreeStockPercentage:       20,
		BufferPercentage:          10,
	}
}

func newUseCase(resRepo *stubReservationRepo, cfgRepo *stubConfigRepo, now time.Time) *UseCase {
	uc := NewUseCase(resRepo, cfgRepo, nopLogger{})
	uc.timeProvider = &fixedTime{now: now}
	return uc
}

func occupying(establishmentID int64, date time.Time, startTime types.TimeString, stock domain.StockType, party int) *domain.Reservation {
	return &domain.Reservation{
		EstablishmentID: establishmentID,
		Status:          domain.StatusConfirmed,
		StockType:       stock,
		Date:            date,
		StartTime:       startTime,
		PartySize:       party,
	}
}

func TestAvailabilityGrid(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	resRepo := &stubReservationRepo{reservations: []*domain.Reservation{
		occupying(100, date, "19:00", domain.StockPaid, 6),
		occupying(100, date, "19:00", domain.StockFree, 2),
		// Отмененная бронь слот не занимает
		{EstablishmentID: 100, Status: domain.StatusCancelledUser, StockType: domain.StockPaid, Date: date, StartTime: "19:00", PartySize: 5},
		// Другая дата не учитывается
		occupying(100, date.AddDate(0, 0, 1), "19:00", domain.StockPaid, 10),
	}}

	uc := newUseCase(resRepo, &stubConfigRepo{config: defaultConfig()}, now)
	resp, err := uc.Execute(context.Background(), &Request{EstablishmentID: 100, Date: date})
	require.NoError(t, err)

	// Сетка 18:00-22:00 с шагом 60 минут
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, types.TimeString("18:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("21:00"), resp.Slots[3].StartTime)
	assert.False(t, resp.IsClosed)

	// Пустой слот
	assert.Equal(t, PoolSlot{Total: 14, Occupied: 0, Available: 14}, resp.Slots[0].Paid)
	assert.Equal(t, PoolSlot{Total: 4, Occupied: 0, Available: 4}, resp.Slots[0].Free)
	assert.Equal(t, PoolSlot{Total: 2, Occupied: 0, Available: 2}, resp.Slots[0].Buffer)

	// Слот 19:00 с занятостью по пулам
	assert.Equal(t, PoolSlot{Total: 14, Occupied: 6, Available: 8}, resp.Slots[1].Paid)
	assert.Equal(t, PoolSlot{Total: 4, Occupied: 2, Available: 2}, resp.Slots[1].Free)
}

func TestAvailabilityOvershootClampsToZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	// Занятость выше тоталов после ужатия конфигурации
	resRepo := &stubReservationRepo{reservations: []*domain.Reservation{
		occupying(100, date, "18:00", domain.StockPaid, 30),
	}}

	uc := newUseCase(resRepo, &stubConfigRepo{config: defaultConfig()}, now)
	resp, err := uc.Execute(context.Background(), &Request{EstablishmentID: 100, Date: date})
	require.NoError(t, err)

	assert.Equal(t, PoolSlot{Total: 14, Occupied: 30, Available: 0}, resp.Slots[0].Paid)
}

func TestAvailabilityHidesStartedSlotsToday(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC)

	uc := newUseCase(&stubReservationRepo{}, &stubConfigRepo{config: defaultConfig()}, now)
	resp, err := uc.Execute(context.Background(), &Request{EstablishmentID: 100, Date: date})
	require.NoError(t, err)

	// 18:00 и 19:00 уже начались
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, types.TimeString("20:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("21:00"), resp.Slots[1].StartTime)
}

func TestAvailabilityPastDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	uc := newUseCase(&stubReservationRepo{}, &stubConfigRepo{config: defaultConfig()}, now)
	resp, err := uc.Execute(context.Background(), &Request{EstablishmentID: 100, Date: date})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
}

func TestAvailabilityClosedDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	config := defaultConfig()
	config.IsClosed = true

	uc := newUseCase(&stubReservationRepo{}, &stubConfigRepo{config: config}, now)
	resp, err := uc.Execute(context.Background(), &Request{EstablishmentID: 100, Date: date})
	require.NoError(t, err)

	assert.True(t, resp.IsClosed)
	assert.Empty(t, resp.Slots)
}

func TestAvailabilityGuards(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("no config", func(t *testing.T) {
		uc := newUseCase(&stubReservationRepo{}, &stubConfigRepo{}, now)
		_, err := uc.Execute(context.Background(), &Request{EstablishmentID: 100, Date: date})
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("bad establishment id", func(t *testing.T) {
		uc := newUseCase(&stubReservationRepo{}, &stubConfigRepo{config: defaultConfig()}, now)
		_, err := uc.Execute(context.Background(), &Request{EstablishmentID: 0, Date: date})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
