package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
	"github.com/planeat-app/PLE-ReservationService/internal/domain"
	getAvailability "github.com/planeat-app/PLE-ReservationService/internal/usecase/get_availability"
)

const (
	msgInvalidEstablishmentID = "некорректный ID заведения"
	msgMissingDate            = "отсутствует query параметр date"
	msgInvalidDate            = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgConfigNotFound         = "конфигурация вместимости на эту дату не найдена"
	msgInvalidInput           = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/establishments/{establishmentId}/availability?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	establishmentIDStr := vars["establishmentId"]

	establishmentID, err := strconv.ParseInt(establishmentIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /establishments/{id}/availability - Invalid establishment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEstablishmentID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /establishments/{id}/availability - Missing date: establishment_id=%d", establishmentID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /establishments/{id}/availability - Invalid date %q: %v", dateStr, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		EstablishmentID: establishmentID,
		Date:            date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrConfigNotFound):
			h.logger.Warn("GET /establishments/{id}/availability - Config not found: establishment_id=%d, date=%s",
				establishmentID, dateStr)
			handlers.RespondNotFound(w, msgConfigNotFound)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /establishments/{id}/availability - Invalid input: establishment_id=%d, error=%v",
				establishmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /establishments/{id}/availability - Failed to get availability: establishment_id=%d, error=%v",
				establishmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /establishments/{id}/availability - Availability retrieved: establishment_id=%d, date=%s, slots=%d",
		establishmentID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
