package checkin

import "errors"

var (
	// ErrTokenInvalid возвращается, когда токен не соответствует брони
	ErrTokenInvalid = errors.New("check-in token invalid")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("checkin client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("checkin client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что сервис верификации недоступен и чек-ин принимается
	// по локальному сравнению токена
	ErrServiceDegraded = errors.New("checkin service unavailable: graceful degradation applied")
)
