package get_client_score

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
)

const (
	msgInvalidClientID = "некорректный ID клиента"
)

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

// Handle GET /api/v1/clients/{clientId}/score
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientIDStr := vars["clientId"]

	clientID, err := strconv.ParseInt(clientIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /clients/{clientId}/score - Invalid client ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	// Клиент без истории получает базовый счет, 404 здесь не бывает
	result, err := h.service.GetClientScore(r.Context(), clientID)
	if err != nil {
		h.logger.Error("GET /clients/{clientId}/score - Failed to get score: client_id=%d, error=%v",
			clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /clients/{clientId}/score - Score retrieved: client_id=%d, score=%d",
		clientID, result.Score)
	handlers.RespondJSON(w, http.StatusOK, result)
}
