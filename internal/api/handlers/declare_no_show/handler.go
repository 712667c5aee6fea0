package declare_no_show

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
	"github.com/planeat-app/PLE-ReservationService/internal/api/middleware"
	"github.com/planeat-app/PLE-ReservationService/internal/service/disputes"
)

const (
	msgInvalidReservationID = "некорректный ID брони"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgActorMismatch        = "ID в теле запроса не совпадает с аутентифицированным пользователем"
	msgNotFound             = "бронь не найдена"
	msgForbidden            = "доступ запрещен"
	msgDisputeExists        = "неявка по этой брони уже объявлена"
	msgNotEligible          = "бронь не допускает объявление неявки"
	msgSlotNotStarted       = "слот еще не начался"
)

type Handler struct {
	service DisputeService
	logger  Logger
}

func NewHandler(service DisputeService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/no-show
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reservationIDStr := vars["reservationId"]

	reservationID, err := strconv.ParseInt(reservationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/no-show - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	var req DeclareNoShowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/no-show - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	authID, ok := middleware.GetUserID(r.Context())
	if !ok || authID != req.EstablishmentID {
		h.logger.Warn("POST /reservations/{id}/no-show - Actor mismatch: reservation_id=%d, establishment_id=%d, auth_id=%d",
			reservationID, req.EstablishmentID, authID)
		handlers.RespondForbidden(w, msgActorMismatch)
		return
	}

	result, err := h.service.DeclareNoShow(r.Context(), reservationID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, disputes.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/no-show - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, disputes.ErrAccessDenied):
			h.logger.Warn("POST /reservations/{id}/no-show - Access denied: reservation_id=%d, establishment_id=%d",
				reservationID, req.EstablishmentID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, disputes.ErrDisputeExists):
			h.logger.Warn("POST /reservations/{id}/no-show - Dispute exists: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgDisputeExists)

		case errors.Is(err, disputes.ErrNotEligible):
			h.logger.Warn("POST /reservations/{id}/no-show - Not eligible: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgNotEligible)

		case errors.Is(err, disputes.ErrSlotNotStarted):
			h.logger.Warn("POST /reservations/{id}/no-show - Slot not started: reservation_id=%d", reservationID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgSlotNotStarted)

		default:
			h.logger.Error("POST /reservations/{id}/no-show - Failed to declare no-show: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/no-show - No-show declared: dispute_id=%d, reservation_id=%d, establishment_id=%d",
		result.ID, reservationID, req.EstablishmentID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
