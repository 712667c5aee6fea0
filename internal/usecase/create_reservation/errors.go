package create_reservation

import "errors"

var (
	// ErrConfigNotFound возвращается, когда у заведения нет конфигурации
	// вместимости на запрошенную дату
	ErrConfigNotFound = errors.New("create_reservation: no capacity config for this date")

	// ErrEstablishmentClosed возвращается, когда заведение закрыто в эту дату
	ErrEstablishmentClosed = errors.New("create_reservation: establishment is closed on this date")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("create_reservation: invalid reservation date")

	// ErrInvalidTimeSlot возвращается, когда время вне рабочих часов или
	// не кратно интервалу слотов
	ErrInvalidTimeSlot = errors.New("create_reservation: invalid time slot")

	// ErrSlotFull возвращается, когда в пуле не хватает мест на запрошенную группу
	ErrSlotFull = errors.New("create_reservation: not enough seats in the pool")

	// ErrPoolNotBookable возвращается, когда запрошенный пул закрыт для брони
	// (free без промо-условий, buffer всегда)
	ErrPoolNotBookable = errors.New("create_reservation: pool not open to this booking")

	// ErrClientSuspended возвращается, когда клиент отстранен или исключен
	ErrClientSuspended = errors.New("create_reservation: client is suspended")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
