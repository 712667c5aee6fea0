package sweep_deadlines

import "github.com/planeat-app/PLE-ReservationService/internal/domain"

// Transition один переход, сделанный sweep-проходом
type Transition struct {
	ReservationID int64
	DisputeID     int64 // 0 для переходов броней
	From          string
	To            string
}

// Result итог одного sweep-прохода
type Result struct {
	Expired         []Transition // requested/pending -> expired
	AutoValidated   []Transition // confirmed/deposit_paid -> consumed_default
	QuotesExpired   []Transition // quote_* -> quote_expired
	NoShowConfirmed []Transition // споры без ответа клиента -> no_show_confirmed
	VenueReminders  int          // отправленные запросы подтверждения визита
	Errors          int          // переходы, завершившиеся ошибкой
}

// Transitions возвращает общее число сделанных переходов
func (r *Result) Transitions() int {
	return len(r.Expired) + len(r.AutoValidated) + len(r.QuotesExpired) + len(r.NoShowConfirmed)
}

func newTransition(res *domain.Reservation, to domain.ReservationStatus) Transition {
	return Transition{
		ReservationID: res.ID,
		From:          string(res.Status),
		To:            string(to),
	}
}
