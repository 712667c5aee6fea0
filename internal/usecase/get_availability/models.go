package get_availability

import (
	"time"

	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

// Request модель запроса на получение доступности слотов
type Request struct {
	EstablishmentID int64     // ID заведения
	Date            time.Time // Дата (без времени)
}

// PoolSlot доступность одного пула в слоте
type PoolSlot struct {
	Total     int // Всего мест в пуле
	Occupied  int // Занято
	Available int // Свободно
}

// Slot доступность одного временного слота по пулам
type Slot struct {
	StartTime types.TimeString // Время начала слота

	Paid   PoolSlot // Платный пул
	Free   PoolSlot // Бесплатный (промо) пул
	Buffer PoolSlot // Операционный резерв, для броней закрыт
}

// Response модель ответа со списком слотов
type Response struct {
	EstablishmentID int64     // ID заведения
	Date            time.Time // Дата
	IsClosed        bool      // Заведение закрыто в эту дату
	Slots           []Slot    // Слоты в рабочих часах
}
