package transition_reservation

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
	msgInvalidStatus        = "неизвестный статус брони"
	msgTransitionReserved   = "переход выполняется через выделенный эндпоинт"
	msgInvalidTransition    = "недопустимый переход статуса"
	msgAlreadyTerminal      = "бронь уже в завершенном статусе"
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

// Handle PATCH /api/v1/reservations/{reservationId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reservationIDStr := vars["reservationId"]

	reservationID, err := strconv.ParseInt(reservationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/status - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	var req TransitionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservations/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	authID, ok := middleware.GetUserID(r.Context())
	if !ok || authID != req.ActorID {
		h.logger.Warn("PATCH /reservations/{id}/status - Actor mismatch: reservation_id=%d, actor_id=%d, auth_id=%d",
			reservationID, req.ActorID, authID)
		handlers.RespondForbidden(w, msgActorMismatch)
		return
	}

	result, err := h.service.Transition(r.Context(), reservationID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservations/{id}/status - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/status - Access denied: reservation_id=%d, actor_id=%d",
				reservationID, req.ActorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidStatus):
			h.logger.Warn("PATCH /reservations/{id}/status - Invalid status: reservation_id=%d, status=%s",
				reservationID, req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, reservations.ErrTransitionReserved):
			h.logger.Warn("PATCH /reservations/{id}/status - Reserved transition: reservation_id=%d, status=%s",
				reservationID, req.Status)
			handlers.RespondBadRequest(w, msgTransitionReserved)

		case errors.Is(err, reservations.ErrAlreadyTerminal):
			h.logger.Warn("PATCH /reservations/{id}/status - Already terminal: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgAlreadyTerminal)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservations/{id}/status - Invalid transition: reservation_id=%d, status=%s",
				reservationID, req.Status)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, reservations.ErrStatusConflict):
			h.logger.Warn("PATCH /reservations/{id}/status - Concurrent change: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgStatusConflict)

		default:
			h.logger.Error("PATCH /reservations/{id}/status - Failed to transition: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/status - Transition applied: reservation_id=%d, actor_id=%d, status=%s",
		reservationID, req.ActorID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
