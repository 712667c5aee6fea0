package disputes

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrDisputeNotFound возвращается, когда спор не найден
	ErrDisputeNotFound = errors.New("dispute not found")

	// ErrDisputeExists возвращается при повторном объявлении неявки по той же брони
	ErrDisputeExists = errors.New("dispute already exists for this reservation")

	// ErrNotEligible возвращается, когда бронь не в статусе, допускающем
	// объявление неявки
	ErrNotEligible = errors.New("reservation not eligible for no-show declaration")

	// ErrSlotNotStarted возвращается при объявлении неявки до начала слота
	ErrSlotNotStarted = errors.New("slot has not started yet")

	// ErrWindowExpired возвращается при ответе клиента после 48-часового окна
	ErrWindowExpired = errors.New("dispute response window expired")

	// ErrDisputeClosed возвращается при действии над завершенным спором
	ErrDisputeClosed = errors.New("dispute already resolved")

	// ErrNotPendingArbitration возвращается при арбитраже спора вне стадии арбитража
	ErrNotPendingArbitration = errors.New("dispute is not pending arbitration")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
