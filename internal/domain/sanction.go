package domain

import "time"

// Client sanction ladder durations
const (
	ClientFirstSuspension  = 7 * 24 * time.Hour
	ClientSecondSuspension = 30 * 24 * time.Hour

	// NoShowStreakThreshold triggers the first suspension
	NoShowStreakThreshold = 3
	// RehabilitationStreak of consecutive honored reservations resets the
	// no-show streak
	RehabilitationStreak = 5
)

// ProSanctionLevel is the professional sanction ladder
type ProSanctionLevel string

const (
	ProSanctionNone                ProSanctionLevel = "none"
	ProSanctionWarning             ProSanctionLevel = "warning"
	ProSanctionDeactivated7d       ProSanctionLevel = "deactivated_7d"
	ProSanctionDeactivated30d      ProSanctionLevel = "deactivated_30d"
	ProSanctionPermanentlyExcluded ProSanctionLevel = "permanently_excluded"
)

// SanctionActor identifies who imposed or lifted a sanction
type SanctionActor string

const (
	SanctionBySystem   SanctionActor = "system"
	SanctionByOperator SanctionActor = "operator"
)

// EstablishmentSanction is an immutable audit entry for a professional
// sanction imposition or lift
type EstablishmentSanction struct {
	ID              int64
	EstablishmentID int64

	Type   ProSanctionLevel
	Reason string

	DisputeID *int64

	ImposedBy      SanctionActor
	ImposedAt      time.Time
	EffectiveUntil *time.Time // nil = permanent or warning

	LiftedBy   *SanctionActor
	LiftedAt   *time.Time
	LiftReason *string

	CreatedAt time.Time
}

// IsActive reports whether the sanction is still in force at now
func (s *EstablishmentSanction) IsActive(now time.Time) bool {
	if s.LiftedAt != nil {
		return false
	}
	if s.EffectiveUntil == nil {
		return s.Type == ProSanctionPermanentlyExcluded
	}
	return now.Before(*s.EffectiveUntil)
}

// ClientSuspension is an immutable audit entry mirroring the escalator's
// decision for a client
type ClientSuspension struct {
	ID       int64
	ClientID int64

	Reason    string
	Permanent bool

	ImposedBy      SanctionActor
	ImposedAt      time.Time
	EffectiveUntil *time.Time

	LiftedBy   *SanctionActor
	LiftedAt   *time.Time
	LiftReason *string

	CreatedAt time.Time
}

// IsActive reports whether the suspension is still in force at now
func (s *ClientSuspension) IsActive(now time.Time) bool {
	if s.LiftedAt != nil {
		return false
	}
	if s.EffectiveUntil == nil {
		return s.Permanent
	}
	return now.Before(*s.EffectiveUntil)
}

// ClientSanctionDecision is the escalator's verdict after a no-show
type ClientSanctionDecision struct {
	Suspend   bool
	Permanent bool
	Duration  time.Duration
	Reason    string
}

// EscalateClientAfterNoShow applies the graduated client ladder to stats that
// already include the new no-show:
//
//	3 consecutive no-shows      -> first suspension, 7 days
//	next no-show after resuming -> second suspension, 30 days
//	a third occurrence          -> permanent exclusion
//
// Returns nil when no sanction fires. The streak only resets after
// RehabilitationStreak consecutive honored reservations (see RecordHonored).
func EscalateClientAfterNoShow(s *ClientStatsV2) *ClientSanctionDecision {
	if s.PermanentlyExcluded {
		return nil
	}

	switch {
	case s.SuspensionCount == 0:
		if s.ConsecutiveNoShows >= NoShowStreakThreshold {
			return &ClientSanctionDecision{
				Suspend:  true,
				Duration: ClientFirstSuspension,
				Reason:   "3 consecutive no-shows",
			}
		}
		return nil
	case s.SuspensionCount == 1:
		return &ClientSanctionDecision{
			Suspend:  true,
			Duration: ClientSecondSuspension,
			Reason:   "no-show after first suspension",
		}
	default:
		return &ClientSanctionDecision{
			Suspend:   true,
			Permanent: true,
			Reason:    "no-show after second suspension",
		}
	}
}

// NextProSanction walks the professional ladder from the accumulated false
// no-show count under the given policy. Returns ProSanctionNone below the
// warning threshold.
func NextProSanction(falseNoShows int, policy ProScorePolicy) ProSanctionLevel {
	switch {
	case falseNoShows >= policy.ExcludeAt:
		return ProSanctionPermanentlyExcluded
	case falseNoShows >= policy.Deactivate30dAt:
		return ProSanctionDeactivated30d
	case falseNoShows >= policy.Deactivate7dAt:
		return ProSanctionDeactivated7d
	case falseNoShows >= policy.WarningAt:
		return ProSanctionWarning
	default:
		return ProSanctionNone
	}
}

// ProSanctionDuration returns the deactivation window for a ladder level,
// zero for warning and permanent levels
func ProSanctionDuration(level ProSanctionLevel) time.Duration {
	switch level {
	case ProSanctionDeactivated7d:
		return 7 * 24 * time.Hour
	case ProSanctionDeactivated30d:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// proSanctionRank orders the ladder so escalation never steps backwards
var proSanctionRank = map[ProSanctionLevel]int{
	ProSanctionNone:                0,
	ProSanctionWarning:             1,
	ProSanctionDeactivated7d:       2,
	ProSanctionDeactivated30d:      3,
	ProSanctionPermanentlyExcluded: 4,
}

// ProSanctionEscalates reports whether moving from current to next climbs the ladder
func ProSanctionEscalates(current, next ProSanctionLevel) bool {
	return proSanctionRank[next] > proSanctionRank[current]
}

// RecordHonored updates the streak counters for an honored reservation.
// Rehabilitation: after RehabilitationStreak consecutive honored reservations
// the no-show streak resets.
func (s *ClientStatsV2) RecordHonored() {
	s.Honored++
	s.TotalReservations++
	s.ConsecutiveHonored++
	if s.ConsecutiveHonored >= RehabilitationStreak {
		s.ConsecutiveNoShows = 0
	}
}

// RecordNoShow updates the counters for a confirmed no-show
func (s *ClientStatsV2) RecordNoShow() {
	s.NoShows++
	s.TotalReservations++
	s.ConsecutiveHonored = 0
	s.ConsecutiveNoShows++
}

// RecordCancellation updates the counters for a classified cancellation.
// Only late and very_late carry negative weight; free cancellations count
// toward totals without penalty.
func (s *ClientStatsV2) RecordCancellation(class CancellationClass) {
	s.TotalReservations++
	s.ConsecutiveHonored = 0
	switch class {
	case CancellationLate:
		s.LateCancellations++
	case CancellationVeryLate:
		s.VeryLateCancellations++
	}
}
