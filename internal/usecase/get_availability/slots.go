package get_availability

import (
	"fmt"
	"time"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.EstablishmentID <= 0 {
		return fmt.Errorf("%w: establishmentID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

// generateSlotTimes генерирует сетку слотов от открытия до закрытия
// с шагом slot_interval_minutes
func generateSlotTimes(config *domain.EstablishmentCapacityConfig) ([]types.TimeString, error) {
	slots := make([]types.TimeString, 0)
	current := config.OpenTime

	for current.IsBefore(config.CloseTime) {
		slots = append(slots, current)

		next, err := current.AddMinutes(config.SlotIntervalMinutes)
		if err != nil {
			return nil, err
		}
		// "24:00" и дальше сетка не продолжается
		if err := next.Validate(); err != nil {
			break
		}
		if !current.IsBefore(next) {
			break
		}
		current = next
	}

	return slots, nil
}

// buildSlots считает занятость каждого слота по пулам
// Бронь занимает ровно свой слот: пересечения между слотами не считаются,
// занятость - сумма размеров групп занимающих статусов
func buildSlots(
	slotTimes []types.TimeString,
	totals domain.PoolTotals,
	occupying []*domain.Reservation,
) []Slot {
	type poolOccupancy struct {
		paid, free, buffer int
	}

	bySlot := make(map[types.TimeString]poolOccupancy, len(slotTimes))
	for _, res := range occupying {
		occ := bySlot[res.StartTime]
		switch res.StockType {
		case domain.StockPaid:
			occ.paid += res.PartySize
		case domain.StockFree:
			occ.free += res.PartySize
		case domain.StockBuffer:
			occ.buffer += res.PartySize
		}
		bySlot[res.StartTime] = occ
	}

	result := make([]Slot, len(slotTimes))
	for i, startTime := range slotTimes {
		occ := bySlot[startTime]
		availability := domain.NewSlotAvailability(totals, occ.paid, occ.free, occ.buffer)

		result[i] = Slot{
			StartTime: startTime,
			Paid:      toPoolSlot(availability.Paid),
			Free:      toPoolSlot(availability.Free),
			Buffer:    toPoolSlot(availability.Buffer),
		}
	}

	return result
}

func toPoolSlot(p domain.PoolAvailability) PoolSlot {
	return PoolSlot{Total: p.Total, Occupied: p.Occupied, Available: p.Available}
}

// filterPastSlots оставляет слоты, которые еще не начались
func filterPastSlots(slotTimes []types.TimeString, now time.Time) []types.TimeString {
	currentTime := types.NewTimeString(now)
	filtered := make([]types.TimeString, 0, len(slotTimes))
	for _, slot := range slotTimes {
		if !slot.IsBefore(currentTime) {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
