package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProConfirmationDeadline(t *testing.T) {
	t.Run("same-day slot gets 2 hours", func(t *testing.T) {
		// Requested at 17:30 for a 19:00 slot the same day -> deadline 19:30.
		requestedAt := time.Date(2025, 6, 15, 17, 30, 0, 0, time.UTC)
		slotStart := time.Date(2025, 6, 15, 19, 0, 0, 0, time.UTC)

		got := ProConfirmationDeadline(requestedAt, slotStart)
		assert.Equal(t, time.Date(2025, 6, 15, 19, 30, 0, 0, time.UTC), got)
	})

	t.Run("future-day slot gets 12 hours", func(t *testing.T) {
		requestedAt := time.Date(2025, 6, 15, 17, 30, 0, 0, time.UTC)
		slotStart := time.Date(2025, 6, 17, 19, 0, 0, 0, time.UTC)

		got := ProConfirmationDeadline(requestedAt, slotStart)
		assert.Equal(t, requestedAt.Add(12*time.Hour), got)
	})
}

func TestVenueCheckpoints(t *testing.T) {
	slotStart := time.Date(2025, 6, 15, 19, 0, 0, 0, time.UTC)

	assert.Equal(t, slotStart.Add(12*time.Hour), VenueConfirmationRequestAt(slotStart))
	assert.Equal(t, slotStart.Add(18*time.Hour), VenueReminderAt(slotStart))
	assert.Equal(t, slotStart.Add(24*time.Hour), VenueAutoValidationAt(slotStart))
}

func TestDisputeAndQuoteDeadlines(t *testing.T) {
	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, at.Add(48*time.Hour), DisputeResponseDeadline(at))
	assert.Equal(t, at.Add(48*time.Hour), QuoteAcknowledgeDeadline(at))
	assert.Equal(t, at.Add(7*24*time.Hour), QuoteDeadline(at))
}
