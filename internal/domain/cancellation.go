package domain

import "time"

// CancellationClass classifies a cancellation by lead time before slot start
type CancellationClass string

const (
	CancellationFree     CancellationClass = "free"
	CancellationLate     CancellationClass = "late"
	CancellationVeryLate CancellationClass = "very_late"
	CancellationBlocked  CancellationClass = "blocked"
)

// ClassifyCancellation buckets a cancellation by lead time:
//
//	lead <= 3h        -> blocked (the cancellation request itself must fail)
//	3h  < lead <= 12h -> very_late
//	12h < lead <= 24h -> late
//	lead > 24h        -> free
//
// late and very_late feed the trust scorer as negative-weight events.
func ClassifyCancellation(startsAt, cancelAt time.Time) CancellationClass {
	lead := startsAt.Sub(cancelAt)

	switch {
	case lead <= CancellationBlockedWithin:
		return CancellationBlocked
	case lead <= CancellationVeryLateWithin:
		return CancellationVeryLate
	case lead <= CancellationLateWithin:
		return CancellationLate
	default:
		return CancellationFree
	}
}

// CancellationStatusFor maps the cancelling actor to the target status
func CancellationStatusFor(byPro bool) ReservationStatus {
	if byPro {
		return StatusCancelledPro
	}
	return StatusCancelledUser
}
