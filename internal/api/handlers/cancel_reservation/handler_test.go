package cancel_reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planeat-app/PLE-ReservationService/internal/api/middleware"
	"github.com/planeat-app/PLE-ReservationService/internal/service/reservations/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type stubService struct {
	gotID  int64
	gotReq *models.CancelRequest
	err    error
}

func (s *stubService) Cancel(_ context.Context, id int64, req *models.CancelRequest) error {
	s.gotID = id
	s.gotReq = req
	return s.err
}

func doCancel(t *testing.T, svc *stubService, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(svc, nopLogger{})

	r := mux.NewRouter()
	sub := r.PathPrefix("/api/v1").Subrouter()
	sub.Use(middleware.Auth)
	sub.HandleFunc("/reservations/{reservationId}/cancel", h.Handle).Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reservations/7/cancel", strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCancelHandlerAcceptsMatchingActor(t *testing.T) {
	svc := &stubService{}

	rec := doCancel(t, svc, "10", `{"actorId": 10, "isPro": false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotReq)
	assert.Equal(t, int64(7), svc.gotID)
	assert.Equal(t, int64(10), svc.gotReq.ActorID)
}

func TestCancelHandlerRejectsForeignActorInBody(t *testing.T) {
	// Аутентифицирован пользователь 10, в теле - чужой ID
	svc := &stubService{}

	rec := doCancel(t, svc, "10", `{"actorId": 99, "isPro": false}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, svc.gotReq, "service must not be called")
}

func TestCancelHandlerRequiresAuthHeader(t *testing.T) {
	svc := &stubService{}

	rec := doCancel(t, svc, "", `{"actorId": 10}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, svc.gotReq)
}
