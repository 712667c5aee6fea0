package get_availability

import (
	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	getAvailability "github.com/planeat-app/PLE-ReservationService/internal/usecase/get_availability"
)

// PoolSlotResponse доступность одного пула в слоте
type PoolSlotResponse struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

// SlotResponse доступность одного временного слота
type SlotResponse struct {
	StartTime string           `json:"startTime"`
	Paid      PoolSlotResponse `json:"paid"`
	Free      PoolSlotResponse `json:"free"`
	Buffer    PoolSlotResponse `json:"buffer"`
}

// GetAvailabilityResponse HTTP response model
type GetAvailabilityResponse struct {
	EstablishmentID int64          `json:"establishmentId"`
	Date            string         `json:"date"`
	IsClosed        bool           `json:"isClosed"`
	Slots           []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(r *getAvailability.Response) *GetAvailabilityResponse {
	resp := &GetAvailabilityResponse{
		EstablishmentID: r.EstablishmentID,
		Date:            r.Date.Format(domain.DateFormat),
		IsClosed:        r.IsClosed,
		Slots:           make([]SlotResponse, 0, len(r.Slots)),
	}

	for _, slot := range r.Slots {
		resp.Slots = append(resp.Slots, SlotResponse{
			StartTime: slot.StartTime.String(),
			Paid:      fromPool(slot.Paid),
			Free:      fromPool(slot.Free),
			Buffer:    fromPool(slot.Buffer),
		})
	}

	return resp
}

func fromPool(p getAvailability.PoolSlot) PoolSlotResponse {
	return PoolSlotResponse{
		Total:     p.Total,
		Occupied:  p.Occupied,
		Available: p.Available,
	}
}
