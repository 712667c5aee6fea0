package create_reservation

import (
	"errors"
	"net/http"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
	createReservation "github.com/planeat-app/PLE-ReservationService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgConfigNotFound      = "конфигурация вместимости на эту дату не найдена"
	msgEstablishmentClosed = "заведение закрыто в выбранную дату"
	msgInvalidResDate      = "некорректная дата брони"
	msgInvalidTimeSlot     = "некорректный временной слот"
	msgSlotFull            = "недостаточно мест в выбранном слоте"
	msgPoolNotBookable     = "выбранный пул недоступен для бронирования"
	msgClientSuspended     = "клиент отстранен от бронирования"
	msgInvalidInput        = "некорректные данные брони"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrSlotFull):
			h.logger.Warn("POST /reservations - Slot full: client_id=%d, establishment_id=%d",
				req.ClientID, req.EstablishmentID)
			handlers.RespondConflict(w, msgSlotFull)

		case errors.Is(err, createReservation.ErrConfigNotFound):
			h.logger.Warn("POST /reservations - Config not found: establishment_id=%d", req.EstablishmentID)
			handlers.RespondNotFound(w, msgConfigNotFound)

		case errors.Is(err, createReservation.ErrEstablishmentClosed):
			h.logger.Warn("POST /reservations - Establishment closed: establishment_id=%d", req.EstablishmentID)
			handlers.RespondBadRequest(w, msgEstablishmentClosed)

		case errors.Is(err, createReservation.ErrInvalidDate):
			h.logger.Warn("POST /reservations - Invalid date: client_id=%d, date=%s", req.ClientID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidResDate)

		case errors.Is(err, createReservation.ErrInvalidTimeSlot):
			h.logger.Warn("POST /reservations - Invalid time slot: client_id=%d, start_time=%s",
				req.ClientID, req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createReservation.ErrPoolNotBookable):
			h.logger.Warn("POST /reservations - Pool not bookable: client_id=%d, payment_type=%s",
				req.ClientID, req.PaymentType)
			handlers.RespondBadRequest(w, msgPoolNotBookable)

		case errors.Is(err, createReservation.ErrClientSuspended):
			h.logger.Warn("POST /reservations - Client suspended: client_id=%d", req.ClientID)
			handlers.RespondForbidden(w, msgClientSuspended)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: client_id=%d, error=%v", req.ClientID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: client_id=%d, establishment_id=%d, error=%v",
				req.ClientID, req.EstablishmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, client_id=%d, establishment_id=%d, status=%s",
		result.ID, req.ClientID, req.EstablishmentID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
