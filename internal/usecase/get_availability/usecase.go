package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	configRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/capacityconfig"
	"github.com/planeat-app/PLE-ReservationService/pkg/ptr"
)

// UseCase use case для получения доступности слотов заведения на дату
// Доступность всегда выводится из конфигурации и занимающих статусов,
// отдельного счетчика мест нет
type UseCase struct {
	reservationRepo ReservationRepository
	configRepo      ConfigRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	configRepo ConfigRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		configRepo:      configRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: establishment=%d, date=%s",
		req.EstablishmentID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// Прошедшие даты бронировать нельзя - слотов нет
	if isDateInPast(req.Date, now) {
		return &Response{
			EstablishmentID: req.EstablishmentID,
			Date:            req.Date,
			Slots:           []Slot{},
		}, nil
	}

	// 2. Конфигурация вместимости на дату
	config, err := uc.configRepo.GetForDate(ctx, req.EstablishmentID, req.Date)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			uc.logger.Warn("GetAvailability: no config for establishment=%d on %s",
				req.EstablishmentID, req.Date.Format(domain.DateFormat))
			return nil, ErrConfigNotFound
		}
		uc.logger.Error("GetAvailability: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}

	if config.IsClosed {
		uc.logger.Info("GetAvailability: establishment=%d closed on %s",
			req.EstablishmentID, req.Date.Format(domain.DateFormat))
		return &Response{
			EstablishmentID: req.EstablishmentID,
			Date:            req.Date,
			IsClosed:        true,
			Slots:           []Slot{},
		}, nil
	}

	if err := config.Validate(); err != nil {
		uc.logger.Error("GetAvailability: invalid config id=%d: %v", config.ID, err)
		return nil, fmt.Errorf("%w: invalid capacity config: %v", ErrInternal, err)
	}

	// 3. Сетка слотов в рабочих часах
	slotTimes, err := generateSlotTimes(config)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// Для текущего дня уже начавшиеся слоты не показываются
	if isSameDay(req.Date, now) {
		slotTimes = filterPastSlots(slotTimes, now)
	}

	// 4. Занимающие брони на дату одним запросом
	occupying, err := uc.reservationRepo.ListByFilter(ctx, domain.ReservationFilter{
		EstablishmentID: ptr.Ptr(req.EstablishmentID),
		Date:            ptr.Ptr(req.Date),
		OccupyingOnly:   true,
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
	}

	// 5. Деривация занятости по пулам
	totals := config.SplitCapacity()
	slots := buildSlots(slotTimes, totals, occupying)

	uc.logger.Info("GetAvailability: %d slots for establishment=%d on %s (pools paid=%d free=%d buffer=%d)",
		len(slots), req.EstablishmentID, req.Date.Format(domain.DateFormat), totals.Paid, totals.Free, totals.Buffer)

	return &Response{
		EstablishmentID: req.EstablishmentID,
		Date:            req.Date,
		Slots:           slots,
	}, nil
}
