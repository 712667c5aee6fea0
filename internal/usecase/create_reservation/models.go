package create_reservation

import (
	"time"

	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

// Request модель запроса на создание брони
type Request struct {
	ClientID        int64            // ID клиента
	EstablishmentID int64            // ID заведения
	Type            string           // standard | group_quote
	PaymentType     string           // free | paid
	PromoEligible   bool             // Промо-условия открывают free-пул
	Date            time.Time        // Дата брони (без времени)
	StartTime       types.TimeString // Время начала слота (например, "19:00")
	PartySize       int              // Размер группы
	DepositRequired bool             // Требуется ли депозит
	DepositAmount   *float64         // Сумма депозита (опционально)
	Notes           *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданной бронью
type Response struct {
	ID              int64            // ID созданной брони
	ClientID        int64            // ID клиента
	EstablishmentID int64            // ID заведения
	Status          string           // Статус брони
	Type            string           // Тип брони
	PaymentType     string           // Тип оплаты
	StockType       string           // Пул вместимости
	Date            time.Time        // Дата брони
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность занятия слота
	PartySize       int              // Размер группы
	CheckinToken    *string          // Чек-ин токен

	ProConfirmationDeadline  *time.Time // Дедлайн подтверждения заведением
	QuoteAcknowledgeDeadline *time.Time // Дедлайн подтверждения заявки квоты

	Notes *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
