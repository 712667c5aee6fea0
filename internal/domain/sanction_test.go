package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscalateClientAfterNoShow_Ladder(t *testing.T) {
	stats := &ClientStatsV2{}

	// Two no-shows: not enough for a sanction.
	stats.RecordNoShow()
	require.Nil(t, EscalateClientAfterNoShow(stats))
	stats.RecordNoShow()
	require.Nil(t, EscalateClientAfterNoShow(stats))

	// Third consecutive no-show fires the 7-day suspension.
	stats.RecordNoShow()
	decision := EscalateClientAfterNoShow(stats)
	require.NotNil(t, decision)
	assert.True(t, decision.Suspend)
	assert.False(t, decision.Permanent)
	assert.Equal(t, ClientFirstSuspension, decision.Duration)
	stats.SuspensionCount++

	// A further no-show after the suspension escalates straight to 30 days.
	stats.RecordNoShow()
	decision = EscalateClientAfterNoShow(stats)
	require.NotNil(t, decision)
	assert.Equal(t, ClientSecondSuspension, decision.Duration)
	assert.False(t, decision.Permanent)
	stats.SuspensionCount++

	// The third occurrence is permanent exclusion.
	stats.RecordNoShow()
	decision = EscalateClientAfterNoShow(stats)
	require.NotNil(t, decision)
	assert.True(t, decision.Permanent)
}

func TestEscalateClientAfterNoShow_ExcludedClientIgnored(t *testing.T) {
	stats := &ClientStatsV2{PermanentlyExcluded: true, ConsecutiveNoShows: 10}
	assert.Nil(t, EscalateClientAfterNoShow(stats))
}

func TestRehabilitation(t *testing.T) {
	stats := &ClientStatsV2{}
	stats.RecordNoShow()
	stats.RecordNoShow()

	// One honored reservation breaks nothing by itself.
	stats.RecordHonored()
	assert.Equal(t, 2, stats.ConsecutiveNoShows)

	// Five consecutive honored reservations reset the streak.
	for i := 0; i < 4; i++ {
		stats.RecordHonored()
	}
	assert.Equal(t, 0, stats.ConsecutiveNoShows)
	assert.Equal(t, 5, stats.ConsecutiveHonored)

	// A no-show restarts both streaks.
	stats.RecordNoShow()
	assert.Equal(t, 1, stats.ConsecutiveNoShows)
	assert.Equal(t, 0, stats.ConsecutiveHonored)
}

func TestRecordCancellation(t *testing.T) {
	stats := &ClientStatsV2{ConsecutiveHonored: 3}

	stats.RecordCancellation(CancellationLate)
	assert.Equal(t, 1, stats.LateCancellations)
	assert.Equal(t, 0, stats.ConsecutiveHonored)

	stats.RecordCancellation(CancellationVeryLate)
	assert.Equal(t, 1, stats.VeryLateCancellations)

	// A free cancellation counts toward totals without penalty counters.
	stats.RecordCancellation(CancellationFree)
	assert.Equal(t, 1, stats.LateCancellations)
	assert.Equal(t, 1, stats.VeryLateCancellations)
	assert.Equal(t, 3, stats.TotalReservations)
}

func TestNextProSanction(t *testing.T) {
	policy := DefaultProScorePolicy()

	cases := []struct {
		falseNoShows int
		want         ProSanctionLevel
	}{
		{0, ProSanctionNone},
		{1, ProSanctionWarning},
		{2, ProSanctionDeactivated7d},
		{3, ProSanctionDeactivated7d},
		{4, ProSanctionDeactivated30d},
		{5, ProSanctionDeactivated30d},
		{6, ProSanctionPermanentlyExcluded},
		{10, ProSanctionPermanentlyExcluded},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NextProSanction(tc.falseNoShows, policy), "falseNoShows=%d", tc.falseNoShows)
	}
}

func TestProSanctionEscalates(t *testing.T) {
	assert.True(t, ProSanctionEscalates(ProSanctionNone, ProSanctionWarning))
	assert.True(t, ProSanctionEscalates(ProSanctionWarning, ProSanctionDeactivated7d))
	assert.False(t, ProSanctionEscalates(ProSanctionDeactivated30d, ProSanctionWarning))
	assert.False(t, ProSanctionEscalates(ProSanctionWarning, ProSanctionWarning))
}

func TestEstablishmentSanctionIsActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(7 * 24 * time.Hour)

	active := EstablishmentSanction{Type: ProSanctionDeactivated7d, EffectiveUntil: &until}
	assert.True(t, active.IsActive(now))
	assert.False(t, active.IsActive(until.Add(time.Minute)))

	lifted := active
	liftedAt := now.Add(time.Hour)
	lifted.LiftedAt = &liftedAt
	assert.False(t, lifted.IsActive(now.Add(2*time.Hour)))

	permanent := EstablishmentSanction{Type: ProSanctionPermanentlyExcluded}
	assert.True(t, permanent.IsActive(now.AddDate(10, 0, 0)))

	warning := EstablishmentSanction{Type: ProSanctionWarning}
	assert.False(t, warning.IsActive(now))
}
