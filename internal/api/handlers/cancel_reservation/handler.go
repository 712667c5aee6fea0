package cancel_reservation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
	"github.com/planeat-app/PLE-ReservationService/internal/api/middleware"
	"github.com/planeat-app/PLE-ReservationService/internal/service/reservations"
)

const (
	msgInvalidReservationID = "некорректный ID брони"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgActorMismatch        = "ID в теле запроса не совпадает с аутентифицированным пользователем"
	msgNotFound             = "бронь не найдена"
	msgForbidden            = "доступ запрещен"
	msgCancellationBlocked  = "отмена менее чем за 3 часа до начала невозможна"
	msgAlreadyTerminal      = "бронь уже в завершенном статусе"
	msgInvalidTransition    = "бронь не может быть отменена из текущего статуса"
	msgInvalidInput         = "некорректные данные отмены"
	msgStatusConflict       = "статус брони изменился, повторите запрос"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reservationIDStr := vars["reservationId"]

	reservationID, err := strconv.ParseInt(reservationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	var req CancelReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	authID, ok := middleware.GetUserID(r.Context())
	if !ok || authID != req.ActorID {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Actor mismatch: reservation_id=%d, actor_id=%d, auth_id=%d",
			reservationID, req.ActorID, authID)
		handlers.RespondForbidden(w, msgActorMismatch)
		return
	}

	err = h.service.Cancel(r.Context(), reservationID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Access denied: reservation_id=%d, actor_id=%d",
				reservationID, req.ActorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrCancellationBlocked):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Cancellation blocked: reservation_id=%d, actor_id=%d",
				reservationID, req.ActorID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgCancellationBlocked)

		case errors.Is(err, reservations.ErrAlreadyTerminal):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Already terminal: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgAlreadyTerminal)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid transition: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, reservations.ErrStatusConflict):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Concurrent change: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgStatusConflict)

		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid input: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /reservations/{id}/cancel - Failed to cancel reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/cancel - Reservation cancelled successfully: reservation_id=%d, actor_id=%d",
		reservationID, req.ActorID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
