package domain

import "time"

// ProConfirmationDeadline is request time + 2h when the slot is on the same
// day as the request, + 12h otherwise
func ProConfirmationDeadline(requestedAt, slotStart time.Time) time.Time {
	if sameDay(requestedAt, slotStart) {
		return requestedAt.Add(ProConfirmationSameDayDelay)
	}
	return requestedAt.Add(ProConfirmationDefaultDelay)
}

// VenueConfirmationRequestAt is when the venue is first asked to confirm the
// visit outcome (slot start + 12h)
func VenueConfirmationRequestAt(slotStart time.Time) time.Time {
	return slotStart.Add(VenueConfirmationRequestDelay)
}

// VenueReminderAt is the reminder checkpoint (slot start + 18h)
func VenueReminderAt(slotStart time.Time) time.Time {
	return slotStart.Add(VenueReminderDelay)
}

// VenueAutoValidationAt is when a confirmed reservation with no venue response
// is forced to consumed_default (slot start + 24h)
func VenueAutoValidationAt(slotStart time.Time) time.Time {
	return slotStart.Add(VenueAutoValidationDelay)
}

// DisputeResponseDeadline is declaration time + 48h
func DisputeResponseDeadline(declaredAt time.Time) time.Time {
	return declaredAt.Add(DisputeResponseWindow)
}

// QuoteAcknowledgeDeadline is quote request time + 48h
func QuoteAcknowledgeDeadline(requestedAt time.Time) time.Time {
	return requestedAt.Add(QuoteAcknowledgeWindow)
}

// QuoteDeadline is acknowledgement time + 7 days
func QuoteDeadline(acknowledgedAt time.Time) time.Time {
	return acknowledgedAt.Add(QuoteWindow)
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
