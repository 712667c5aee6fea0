package record_review

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
)

const (
	msgInvalidClientID = "некорректный ID клиента"
)

// Handler учитывает оставленный клиентом отзыв в его счете доверия.
// Сами отзывы живут в сервисе контента, сюда приходит только факт
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

// Handle POST /internal/v1/clients/{clientId}/reviews
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientIDStr := vars["clientId"]

	clientID, err := strconv.ParseInt(clientIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /clients/{clientId}/reviews - Invalid client ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	if err := h.service.RecordReview(r.Context(), clientID); err != nil {
		h.logger.Error("POST /clients/{clientId}/reviews - Failed to record review: client_id=%d, error=%v",
			clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /clients/{clientId}/reviews - Review recorded: client_id=%d", clientID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
