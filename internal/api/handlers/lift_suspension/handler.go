package lift_suspension

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
	msgInvalidSuspensionID = "некорректный ID отстранения"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingOperatorID   = "отсутствует ID оператора"
	msgMissingReason       = "причина снятия отстранения обязательна"
	msgNotFound            = "отстранение не найдено"
	msgAlreadyLifted       = "отстранение уже снято"
)

// LiftSuspensionRequest HTTP request model
type LiftSuspensionRequest struct {
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

// Handle POST /internal/v1/suspensions/{suspensionId}/lift
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	suspensionIDStr := vars["suspensionId"]

	suspensionID, err := strconv.ParseInt(suspensionIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /suspensions/{id}/lift - Invalid suspension ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSuspensionID)
		return
	}

	operatorID, ok := middleware.GetOperatorID(r.Context())
	if !ok {
		h.logger.Warn("POST /suspensions/{id}/lift - Missing operator ID")
		handlers.RespondUnauthorized(w, msgMissingOperatorID)
		return
	}

	var req LiftSuspensionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /suspensions/{id}/lift - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.Reason == "" {
		h.logger.Warn("POST /suspensions/{id}/lift - Missing reason: suspension_id=%d, operator_id=%d",
			suspensionID, operatorID)
		handlers.RespondBadRequest(w, msgMissingReason)
		return
	}

	err = h.service.LiftClientSuspension(r.Context(), suspensionID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, trust.ErrSuspensionNotFound):
			h.logger.Warn("POST /suspensions/{id}/lift - Suspension not found: suspension_id=%d", suspensionID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, trust.ErrSanctionAlreadyLifted):
			h.logger.Warn("POST /suspensions/{id}/lift - Already lifted: suspension_id=%d", suspensionID)
			handlers.RespondConflict(w, msgAlreadyLifted)

		default:
			h.logger.Error("POST /suspensions/{id}/lift - Failed to lift suspension: suspension_id=%d, error=%v",
				suspensionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /suspensions/{id}/lift - Suspension lifted: suspension_id=%d, operator_id=%d",
		suspensionID, operatorID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
