package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeClientScoreV2(t *testing.T) {
	cases := []struct {
		name  string
		stats ClientStatsV2
		want  int
	}{
		{"fresh client sits at base", ClientStatsV2{}, 60},
		{"one honored", ClientStatsV2{Honored: 1, TotalReservations: 1}, 65},
		{"one no-show", ClientStatsV2{NoShows: 1, TotalReservations: 1}, 45},
		{"late cancellation", ClientStatsV2{LateCancellations: 1, TotalReservations: 1}, 55},
		{"very late cancellation", ClientStatsV2{VeryLateCancellations: 1, TotalReservations: 1}, 50},
		{"review and conversion", ClientStatsV2{ReviewsPosted: 1, FreeToPaidConversions: 1}, 63},
		{
			"seniority tier 1 at 5 reservations",
			ClientStatsV2{Honored: 5, TotalReservations: 5},
			60 + 25 + 5,
		},
		{
			"seniority tiers are not cumulative",
			ClientStatsV2{Honored: 4, NoShows: 16, TotalReservations: 20},
			// 60 + 20 - 240 + 10 clamps to 0
			0,
		},
		{"clamped at 100", ClientStatsV2{Honored: 30, TotalReservations: 30}, 100},
		{"clamped at 0", ClientStatsV2{NoShows: 10, TotalReservations: 10}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeClientScoreV2(tc.stats))
		})
	}
}

func TestComputeClientScoreV2_Monotonicity(t *testing.T) {
	base := ClientStatsV2{Honored: 3, NoShows: 2, LateCancellations: 1, TotalReservations: 6}

	t.Run("non-decreasing in honored", func(t *testing.T) {
		prev := ComputeClientScoreV2(base)
		for i := 1; i <= 30; i++ {
			s := base
			s.Honored += i
			got := ComputeClientScoreV2(s)
			assert.GreaterOrEqual(t, got, prev)
			prev = got
		}
	})

	t.Run("non-increasing in no-shows", func(t *testing.T) {
		prev := ComputeClientScoreV2(base)
		for i := 1; i <= 30; i++ {
			s := base
			s.NoShows += i
			got := ComputeClientScoreV2(s)
			assert.LessOrEqual(t, got, prev)
			prev = got
		}
	})

	t.Run("always clamped to [0,100]", func(t *testing.T) {
		for honored := 0; honored <= 50; honored += 5 {
			for noShows := 0; noShows <= 50; noShows += 5 {
				s := ClientStatsV2{Honored: honored, NoShows: noShows, TotalReservations: honored + noShows}
				got := ComputeClientScoreV2(s)
				assert.GreaterOrEqual(t, got, 0)
				assert.LessOrEqual(t, got, 100)
			}
		}
	})
}

func TestStarsConversion(t *testing.T) {
	t.Run("score to stars", func(t *testing.T) {
		assert.InDelta(t, 3.0, ScoreToStars(60), 0.001)
		assert.InDelta(t, 5.0, ScoreToStars(100), 0.001)
		assert.InDelta(t, 0.0, ScoreToStars(0), 0.001)
		assert.InDelta(t, 3.35, ScoreToStars(67), 0.001)
	})

	t.Run("round trip within tolerance over [0,5]", func(t *testing.T) {
		for s := 0.0; s <= 5.0; s += 0.05 {
			stars := math.Round(s*100) / 100
			got := ScoreToStars(StarsToScore(stars))
			assert.InDelta(t, stars, got, 0.05, "stars=%v", stars)
		}
	})

	t.Run("score round trip is exact", func(t *testing.T) {
		for score := 0; score <= 100; score++ {
			assert.Equal(t, score, StarsToScore(ScoreToStars(score)))
		}
	})
}

func TestComputeProScore(t *testing.T) {
	policy := DefaultProScorePolicy()

	t.Run("perfect responsiveness scores high", func(t *testing.T) {
		s := ProTrustScore{ResponseRate: 1.0, AvgResponseMinutes: 30}
		got := ComputeProScore(s, policy)
		assert.Equal(t, 89, got) // 60 + 30 - 1
	})

	t.Run("false no-shows drag the score down", func(t *testing.T) {
		s := ProTrustScore{ResponseRate: 1.0, FalseNoShowCount: 3}
		assert.Equal(t, 45, ComputeProScore(s, policy)) // 60 + 30 - 45
	})

	t.Run("clamped to [0,100]", func(t *testing.T) {
		worst := ProTrustScore{FalseNoShowCount: 50, CancellationRate: 1.0}
		assert.Equal(t, 0, ComputeProScore(worst, policy))
	})
}
