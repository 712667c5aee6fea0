package create_reservation

import (
	"fmt"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.EstablishmentID <= 0 {
		return fmt.Errorf("%w: establishmentID must be positive", ErrInvalidInput)
	}

	switch domain.ReservationType(req.Type) {
	case domain.TypeStandard, domain.TypeGroupQuote:
	default:
		return fmt.Errorf("%w: unknown reservation type %q", ErrInvalidInput, req.Type)
	}

	switch domain.PaymentType(req.PaymentType) {
	case domain.PaymentFree, domain.PaymentPaid:
	default:
		return fmt.Errorf("%w: unknown payment type %q", ErrInvalidInput, req.PaymentType)
	}

	if req.PartySize <= 0 {
		return fmt.Errorf("%w: partySize must be positive", ErrInvalidInput)
	}
	if req.PartySize > domain.MaxPartySize {
		return fmt.Errorf("%w: partySize exceeds maximum of %d", ErrInvalidInput, domain.MaxPartySize)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.DepositAmount != nil && *req.DepositAmount < 0 {
		return fmt.Errorf("%w: depositAmount must be non-negative", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что дата брони не в прошлом
func validateDate(date, now time.Time) error {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dateOnly.Before(nowOnly) {
		return ErrInvalidDate
	}
	return nil
}

// validateSlotTime проверяет, что время попадает в рабочие часы и выровнено
// по сетке слотов заведения
func validateSlotTime(startTime types.TimeString, config *domain.EstablishmentCapacityConfig) error {
	if startTime.IsBefore(config.OpenTime) || !startTime.IsBefore(config.CloseTime) {
		return fmt.Errorf("%w: %s outside working hours %s-%s",
			ErrInvalidTimeSlot, startTime, config.OpenTime, config.CloseTime)
	}

	offset, err := minutesBetween(config.OpenTime, startTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}
	if offset%config.SlotIntervalMinutes != 0 {
		return fmt.Errorf("%w: %s is not aligned to the %d-minute grid",
			ErrInvalidTimeSlot, startTime, config.SlotIntervalMinutes)
	}

	return nil
}

// occupiedByPool суммирует размеры групп занимающих слот броней по пулам
func occupiedByPool(reservations []*domain.Reservation) (paid, free, buffer int) {
	for _, res := range reservations {
		if !res.IsOccupying() {
			continue
		}
		switch res.StockType {
		case domain.StockPaid:
			paid += res.PartySize
		case domain.StockFree:
			free += res.PartySize
		case domain.StockBuffer:
			buffer += res.PartySize
		}
	}
	return paid, free, buffer
}

// minutesBetween возвращает разницу в минутах между двумя "HH:MM"
func minutesBetween(from, to types.TimeString) (int, error) {
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	fromAt, err := from.At(base)
	if err != nil {
		return 0, err
	}
	toAt, err := to.At(base)
	if err != nil {
		return 0, err
	}
	return int(toAt.Sub(fromAt).Minutes()), nil
}
