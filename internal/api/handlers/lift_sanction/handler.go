package lift_sanction

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
	"github.com/planeat-app/PLE-ReservationService/internal/api/middleware"
	"github.com/planeat-app/PLE-ReservationService/internal/service/trust"
)

const (
	msgInvalidSanctionID  = "некорректный ID санкции"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingOperatorID  = "отсутствует ID оператора"
	msgMissingReason      = "причина снятия санкции обязательна"
	msgNotFound           = "санкция не найдена"
	msgAlreadyLifted      = "санкция уже снята"
)

// LiftSanctionRequest HTTP request model
type LiftSanctionRequest struct {
	Reason string `json:"reason"`
}

type Handler struct {
	service TrustService
	logger  Logger
}

func NewHandler(service TrustService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /internal/v1/sanctions/{sanctionId}/lift
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sanctionIDStr := vars["sanctionId"]

	sanctionID, err := strconv.ParseInt(sanctionIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /sanctions/{id}/lift - Invalid sanction ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSanctionID)
		return
	}

	operatorID, ok := middleware.GetOperatorID(r.Context())
	if !ok {
		h.logger.Warn("POST /sanctions/{id}/lift - Missing operator ID")
		handlers.RespondUnauthorized(w, msgMissingOperatorID)
		return
	}

	var req LiftSanctionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /sanctions/{id}/lift - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.Reason == "" {
		h.logger.Warn("POST /sanctions/{id}/lift - Missing reason: sanction_id=%d, operator_id=%d",
			sanctionID, operatorID)
		handlers.RespondBadRequest(w, msgMissingReason)
		return
	}

	err = h.service.LiftSanction(r.Context(), sanctionID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, trust.ErrSanctionNotFound):
			h.logger.Warn("POST /sanctions/{id}/lift - Sanction not found: sanction_id=%d", sanctionID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, trust.ErrSanctionAlreadyLifted):
			h.logger.Warn("POST /sanctions/{id}/lift - Already lifted: sanction_id=%d", sanctionID)
			handlers.RespondConflict(w, msgAlreadyLifted)

		default:
			h.logger.Error("POST /sanctions/{id}/lift - Failed to lift sanction: sanction_id=%d, error=%v",
				sanctionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /sanctions/{id}/lift - Sanction lifted: sanction_id=%d, operator_id=%d",
		sanctionID, operatorID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
