package trust

import "errors"

var (
	// ErrSanctionNotFound возвращается, когда запись санкции не найдена
	ErrSanctionNotFound = errors.New("sanction not found")

	// ErrSanctionAlreadyLifted возвращается при повторном снятии санкции
	ErrSanctionAlreadyLifted = errors.New("sanction already lifted")

	// ErrSuspensionNotFound возвращается, когда запись отстранения клиента не найдена
	ErrSuspensionNotFound = errors.New("client suspension not found")

	// ErrScoreNotFound возвращается, когда у заведения нет агрегата доверия
	ErrScoreNotFound = errors.New("trust score not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
