package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/planeat-app/PLE-ReservationService/internal/api/handlers"
)

type contextKey string

const (
	userIDKey     contextKey = "userID"
	operatorIDKey contextKey = "operatorID"

	headerUserID     = "X-User-ID"
	headerOperatorID = "X-Operator-ID"

	msgMissingUserID     = "отсутствует заголовок X-User-ID"
	msgInvalidUserID     = "некорректный заголовок X-User-ID"
	msgMissingOperatorID = "отсутствует заголовок X-Operator-ID"
	msgInvalidOperatorID = "некорректный заголовок X-Operator-ID"
)

// Auth требует валидный заголовок X-User-ID и кладет ID в контекст запроса.
// Аутентификацией занимается API gateway, сервис доверяет заголовку
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(headerUserID)
		if raw == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgInvalidUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Operator требует валидный заголовок X-Operator-ID (внутренние ручки платформы)
func Operator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(headerOperatorID)
		if raw == "" {
			handlers.RespondUnauthorized(w, msgMissingOperatorID)
			return
		}

		operatorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || operatorID <= 0 {
			handlers.RespondUnauthorized(w, msgInvalidOperatorID)
			return
		}

		ctx := context.WithValue(r.Context(), operatorIDKey, operatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID пользователя, установленный middleware Auth
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// GetOperatorID возвращает ID оператора, установленный middleware Operator
func GetOperatorID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(operatorIDKey).(int64)
	return id, ok
}
