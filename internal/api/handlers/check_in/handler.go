package check_in

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
	msgNotCheckinable       = "бронь не допускает чек-ин в текущем статусе"
	msgTokenInvalid         = "неверный чек-ин токен"
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

// Handle POST /api/v1/reservations/{reservationId}/check-in
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reservationIDStr := vars["reservationId"]

	reservationID, err := strconv.ParseInt(reservationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/check-in - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	var req CheckInRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/check-in - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	authID, ok := middleware.GetUserID(r.Context())
	if !ok || authID != req.ClientID {
		h.logger.Warn("POST /reservations/{id}/check-in - Actor mismatch: reservation_id=%d, client_id=%d, auth_id=%d",
			reservationID, req.ClientID, authID)
		handlers.RespondForbidden(w, msgActorMismatch)
		return
	}

	result, err := h.service.CheckIn(r.Context(), reservationID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/check-in - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("POST /reservations/{id}/check-in - Access denied: reservation_id=%d, client_id=%d",
				reservationID, req.ClientID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrNotCheckinable):
			h.logger.Warn("POST /reservations/{id}/check-in - Not checkinable: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgNotCheckinable)

		case errors.Is(err, reservations.ErrCheckinTokenInvalid):
			h.logger.Warn("POST /reservations/{id}/check-in - Invalid token: reservation_id=%d, client_id=%d",
				reservationID, req.ClientID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgTokenInvalid)

		case errors.Is(err, reservations.ErrStatusConflict):
			h.logger.Warn("POST /reservations/{id}/check-in - Concurrent change: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgStatusConflict)

		default:
			h.logger.Error("POST /reservations/{id}/check-in - Failed to check in: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/check-in - Check-in successful: reservation_id=%d, client_id=%d",
		reservationID, req.ClientID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
