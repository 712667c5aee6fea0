package domain

import (
	"math"
	"time"
)

// Client score weights (base 60, clamped to [0,100])
const (
	ClientScoreBase = 60
	ClientScoreMin  = 0
	ClientScoreMax  = 100

	ScorePerHonored              = 5
	ScorePerNoShow               = -15
	ScorePerLateCancellation     = -5
	ScorePerVeryLateCancellation = -10
	ScorePerReview               = 1
	ScorePerFreeToPaidConversion = 2

	SeniorityBonusAt5  = 5
	SeniorityBonusAt20 = 10
	SeniorityTier1     = 5
	SeniorityTier2     = 20

	StarsPerScorePoint = 20.0 // score / 20 = stars
)

// ClientStatsV2 holds the running counters a client score is derived from.
// The score is always re-derivable from scratch from these counters.
type ClientStatsV2 struct {
	ClientID int64

	Honored               int
	NoShows               int
	LateCancellations     int
	VeryLateCancellations int
	ReviewsPosted         int
	FreeToPaidConversions int
	TotalReservations     int

	ConsecutiveNoShows int
	ConsecutiveHonored int

	SuspensionCount     int
	IsSuspended         bool
	SuspendedUntil      *time.Time
	PermanentlyExcluded bool

	Score int

	UpdatedAt time.Time
}

// ComputeClientScoreV2 derives the client trust score from the counters.
// Pure function: base 60, per-event weights, the higher applicable seniority
// tier (not cumulative), clamped to [0,100].
func ComputeClientScoreV2(s ClientStatsV2) int {
	score := ClientScoreBase

	score += s.Honored * ScorePerHonored
	score += s.NoShows * ScorePerNoShow
	score += s.LateCancellations * ScorePerLateCancellation
	score += s.VeryLateCancellations * ScorePerVeryLateCancellation
	score += s.ReviewsPosted * ScorePerReview
	score += s.FreeToPaidConversions * ScorePerFreeToPaidConversion

	switch {
	case s.TotalReservations >= SeniorityTier2:
		score += SeniorityBonusAt20
	case s.TotalReservations >= SeniorityTier1:
		score += SeniorityBonusAt5
	}

	if score < ClientScoreMin {
		return ClientScoreMin
	}
	if score > ClientScoreMax {
		return ClientScoreMax
	}
	return score
}

// ScoreToStars converts a [0,100] score to the 0-5 star display,
// rounded to 2 decimals
func ScoreToStars(score int) float64 {
	return math.Round(float64(score)/StarsPerScorePoint*100) / 100
}

// StarsToScore is the inverse mapping, rounded to the nearest integer
func StarsToScore(stars float64) int {
	return int(math.Round(stars * StarsPerScorePoint))
}

// ProTrustScore is the rolling aggregate per establishment
type ProTrustScore struct {
	EstablishmentID int64

	ResponseRate       float64 // share of requests answered before the deadline, [0,1]
	AvgResponseMinutes float64
	FalseNoShowCount   int
	CancellationRate   float64 // share of pro-cancelled reservations, [0,1]

	Score int

	SanctionLevel    ProSanctionLevel
	DeactivatedUntil *time.Time

	UpdatedAt time.Time
}

// ProScorePolicy carries the establishment-scoped weights and thresholds the
// professional score and sanction ladder run on. The exact weighting is policy,
// not a hardcoded formula.
type ProScorePolicy struct {
	Base int

	ResponseRateWeight      int // full weight at 100% response rate
	ResponseLatencyPenalty  int // per hour of average response latency
	FalseNoShowPenalty      int // per resolved_favor_client outcome
	CancellationRatePenalty int // full penalty at 100% cancellation rate

	// Sanction ladder thresholds on accumulated false no-shows
	WarningAt       int
	Deactivate7dAt  int
	Deactivate30dAt int
	ExcludeAt       int
}

// DefaultProScorePolicy is used when an establishment has no override
func DefaultProScorePolicy() ProScorePolicy {
	return ProScorePolicy{
		Base:                    60,
		ResponseRateWeight:      30,
		ResponseLatencyPenalty:  2,
		FalseNoShowPenalty:      15,
		CancellationRatePenalty: 25,
		WarningAt:               1,
		Deactivate7dAt:          2,
		Deactivate30dAt:         4,
		ExcludeAt:               6,
	}
}

// ComputeProScore derives the professional trust score under a policy,
// clamped to [0,100]
func ComputeProScore(s ProTrustScore, policy ProScorePolicy) int {
	score := float64(policy.Base)

	score += s.ResponseRate * float64(policy.ResponseRateWeight)
	score -= s.AvgResponseMinutes / 60 * float64(policy.ResponseLatencyPenalty)
	score -= float64(s.FalseNoShowCount) * float64(policy.FalseNoShowPenalty)
	score -= s.CancellationRate * float64(policy.CancellationRatePenalty)

	rounded := int(math.Round(score))
	if rounded < ClientScoreMin {
		return ClientScoreMin
	}
	if rounded > ClientScoreMax {
		return ClientScoreMax
	}
	return rounded
}
