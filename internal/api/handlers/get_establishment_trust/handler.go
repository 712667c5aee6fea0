package get_establishment_trust

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
)

const (
	msgInvalidEstablishmentID = "некорректный ID заведения"
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

// Handle GET /api/v1/establishments/{establishmentId}/trust
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	establishmentIDStr := vars["establishmentId"]

	establishmentID, err := strconv.ParseInt(establishmentIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /establishments/{id}/trust - Invalid establishment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEstablishmentID)
		return
	}

	// Заведение без истории получает базовый агрегат, 404 здесь не бывает
	result, err := h.service.GetEstablishmentTrust(r.Context(), establishmentID)
	if err != nil {
		h.logger.Error("GET /establishments/{id}/trust - Failed to get trust: establishment_id=%d, error=%v",
			establishmentID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /establishments/{id}/trust - Trust retrieved: establishment_id=%d, score=%d, sanction_level=%s",
		establishmentID, result.Score, result.SanctionLevel)
	handlers.RespondJSON(w, http.StatusOK, result)
}
