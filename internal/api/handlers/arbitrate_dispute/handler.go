package arbitrate_dispute

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
	msgInvalidDisputeID     = "некорректный ID спора"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingOperatorID    = "отсутствует ID оператора"
	msgNotFound             = "спор не найден"
	msgNotPendingArbitration = "спор не находится на стадии арбитража"
	msgInvalidInput         = "некорректные данные арбитража"
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

// Handle POST /internal/v1/disputes/{disputeId}/arbitrate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	disputeIDStr := vars["disputeId"]

	disputeID, err := strconv.ParseInt(disputeIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /disputes/{id}/arbitrate - Invalid dispute ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDisputeID)
		return
	}

	// Получаем operatorID из контекста (через middleware Operator)
	operatorID, ok := middleware.GetOperatorID(r.Context())
	if !ok {
		h.logger.Warn("POST /disputes/{id}/arbitrate - Missing operator ID")
		handlers.RespondUnauthorized(w, msgMissingOperatorID)
		return
	}

	var req ArbitrateDisputeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /disputes/{id}/arbitrate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Arbitrate(r.Context(), disputeID, req.ToServiceRequest(operatorID))
	if err != nil {
		switch {
		case errors.Is(err, disputes.ErrDisputeNotFound):
			h.logger.Warn("POST /disputes/{id}/arbitrate - Dispute not found: dispute_id=%d", disputeID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, disputes.ErrNotPendingArbitration):
			h.logger.Warn("POST /disputes/{id}/arbitrate - Not pending arbitration: dispute_id=%d", disputeID)
			handlers.RespondConflict(w, msgNotPendingArbitration)

		case errors.Is(err, disputes.ErrInvalidInput):
			h.logger.Warn("POST /disputes/{id}/arbitrate - Invalid input: dispute_id=%d, outcome=%s",
				disputeID, req.Outcome)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /disputes/{id}/arbitrate - Failed to arbitrate: dispute_id=%d, error=%v",
				disputeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /disputes/{id}/arbitrate - Dispute arbitrated: dispute_id=%d, operator_id=%d, outcome=%s",
		disputeID, operatorID, req.Outcome)
	handlers.RespondJSON(w, http.StatusOK, result)
}
