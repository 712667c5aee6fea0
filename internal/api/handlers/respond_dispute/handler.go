package respond_dispute

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
	msgInvalidDisputeID   = "некорректный ID спора"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgActorMismatch      = "ID в теле запроса не совпадает с аутентифицированным пользователем"
	msgNotFound           = "спор не найден"
	msgForbidden          = "доступ запрещен"
	msgWindowExpired      = "окно ответа на спор истекло"
	msgDisputeClosed      = "спор уже завершен"
	msgInvalidResponse    = "некорректный ответ, ожидается confirm или dispute"
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

// Handle POST /api/v1/disputes/{disputeId}/response
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	disputeIDStr := vars["disputeId"]

	disputeID, err := strconv.ParseInt(disputeIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /disputes/{id}/response - Invalid dispute ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDisputeID)
		return
	}

	var req RespondDisputeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /disputes/{id}/response - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	authID, ok := middleware.GetUserID(r.Context())
	if !ok || authID != req.ClientID {
		h.logger.Warn("POST /disputes/{id}/response - Actor mismatch: dispute_id=%d, client_id=%d, auth_id=%d",
			disputeID, req.ClientID, authID)
		handlers.RespondForbidden(w, msgActorMismatch)
		return
	}

	result, err := h.service.ClientRespond(r.Context(), disputeID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, disputes.ErrDisputeNotFound):
			h.logger.Warn("POST /disputes/{id}/response - Dispute not found: dispute_id=%d", disputeID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, disputes.ErrAccessDenied):
			h.logger.Warn("POST /disputes/{id}/response - Access denied: dispute_id=%d, client_id=%d",
				disputeID, req.ClientID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, disputes.ErrWindowExpired):
			h.logger.Warn("POST /disputes/{id}/response - Window expired: dispute_id=%d", disputeID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgWindowExpired)

		case errors.Is(err, disputes.ErrDisputeClosed):
			h.logger.Warn("POST /disputes/{id}/response - Dispute closed: dispute_id=%d", disputeID)
			handlers.RespondConflict(w, msgDisputeClosed)

		case errors.Is(err, disputes.ErrInvalidInput):
			h.logger.Warn("POST /disputes/{id}/response - Invalid response: dispute_id=%d, response=%s",
				disputeID, req.Response)
			handlers.RespondBadRequest(w, msgInvalidResponse)

		default:
			h.logger.Error("POST /disputes/{id}/response - Failed to respond: dispute_id=%d, error=%v",
				disputeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /disputes/{id}/response - Response recorded: dispute_id=%d, client_id=%d, response=%s, status=%s",
		disputeID, req.ClientID, req.Response, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
