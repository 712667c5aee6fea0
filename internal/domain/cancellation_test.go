package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCancellation(t *testing.T) {
	start := time.Date(2025, 6, 15, 19, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		cancelAt time.Time
		want     CancellationClass
	}{
		{"exactly at slot start", start, CancellationBlocked},
		{"1h before", start.Add(-1 * time.Hour), CancellationBlocked},
		{"exactly 3h before is still blocked", start.Add(-3 * time.Hour), CancellationBlocked},
		{"just over 3h before", start.Add(-3*time.Hour - time.Minute), CancellationVeryLate},
		{"6h before", start.Add(-6 * time.Hour), CancellationVeryLate},
		{"exactly 12h before is very_late", start.Add(-12 * time.Hour), CancellationVeryLate},
		{"just over 12h before", start.Add(-12*time.Hour - time.Minute), CancellationLate},
		{"18h before", start.Add(-18 * time.Hour), CancellationLate},
		{"exactly 24h before is late", start.Add(-24 * time.Hour), CancellationLate},
		{"just over 24h before", start.Add(-24*time.Hour - time.Minute), CancellationFree},
		{"3 days before", start.Add(-72 * time.Hour), CancellationFree},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyCancellation(start, tc.cancelAt))
		})
	}
}

func TestCancellationStatusFor(t *testing.T) {
	assert.Equal(t, StatusCancelledPro, CancellationStatusFor(true))
	assert.Equal(t, StatusCancelledUser, CancellationStatusFor(false))
}
