package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyTerminal возвращается при действии над завершенной бронью
	ErrAlreadyTerminal = errors.New("reservation is in a terminal status")

	// ErrTransitionReserved возвращается для переходов, у которых есть
	// выделенный эндпоинт (отмена, чек-ин, неявка) или которые делает
	// только планировщик (expired)
	ErrTransitionReserved = errors.New("transition not allowed via this endpoint")

	// ErrStatusConflict возвращается, когда статус брони изменился конкурентно
	ErrStatusConflict = errors.New("reservation status changed concurrently")

	// ErrCancellationBlocked возвращается при отмене менее чем за 3 часа до слота
	ErrCancellationBlocked = errors.New("cancellation blocked: less than 3 hours before slot start")

	// ErrCheckinTokenInvalid возвращается при неверном чек-ин токене
	ErrCheckinTokenInvalid = errors.New("check-in token invalid")

	// ErrNotCheckinable возвращается, когда бронь не в статусе, допускающем чек-ин
	ErrNotCheckinable = errors.New("reservation not eligible for check-in")

	// ErrInvalidStatus возвращается при неизвестном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
