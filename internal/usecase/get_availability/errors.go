package get_availability

import "errors"

var (
	// ErrConfigNotFound возвращается, когда у заведения нет конфигурации
	// вместимости на запрошенную дату
	ErrConfigNotFound = errors.New("get_availability: no capacity config for this date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
