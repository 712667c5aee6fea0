package domain

import (
	"fmt"
	"time"

	"github.com/planeat-app/PLE-ReservationService/pkg/types"
)

// EstablishmentCapacityConfig defines, per establishment, how a time-slot
// window is carved into bookable slots and how total capacity is partitioned
// into the paid/free/buffer pools.
//
// Either DayOfWeek (weekly template) or SpecificDate (override) is set;
// a specific-date row takes precedence over the weekly template.
type EstablishmentCapacityConfig struct {
	ID              int64
	EstablishmentID int64

	DayOfWeek    *int // 0 = Sunday ... 6 = Saturday, matching time.Weekday
	SpecificDate *time.Time

	OpenTime            types.TimeString
	CloseTime           types.TimeString
	SlotIntervalMinutes int

	TotalCapacity             int
	OccupationDurationMinutes int

	PaidStockPercentage int
	FreeStockPercentage int
	BufferPercentage    int

	IsClosed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the config invariants: percentages sum to exactly 100 and
// total capacity is non-negative
func (c *EstablishmentCapacityConfig) Validate() error {
	if sum := c.PaidStockPercentage + c.FreeStockPercentage + c.BufferPercentage; sum != PercentageSum {
		return fmt.Errorf("%w: pool percentages sum to %d, want %d", ErrInvalidConfig, sum, PercentageSum)
	}
	if c.PaidStockPercentage < 0 || c.FreeStockPercentage < 0 || c.BufferPercentage < 0 {
		return fmt.Errorf("%w: negative pool percentage", ErrInvalidConfig)
	}
	if c.TotalCapacity < MinTotalCapacity {
		return fmt.Errorf("%w: total capacity %d is negative", ErrInvalidConfig, c.TotalCapacity)
	}
	if c.SlotIntervalMinutes <= 0 {
		return fmt.Errorf("%w: slot interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// IsSpecificDate returns true for a specific-date override row
func (c *EstablishmentCapacityConfig) IsSpecificDate() bool {
	return c.SpecificDate != nil
}

// PoolTotals holds the integer seat counts of the three pools
type PoolTotals struct {
	Paid   int
	Free   int
	Buffer int
}

// Total returns the sum of the three pools
func (p PoolTotals) Total() int {
	return p.Paid + p.Free + p.Buffer
}

// ForStock returns the pool size matching a stock type
func (p PoolTotals) ForStock(stock StockType) int {
	switch stock {
	case StockPaid:
		return p.Paid
	case StockFree:
		return p.Free
	case StockBuffer:
		return p.Buffer
	default:
		return 0
	}
}

// SplitCapacity partitions total seats across the three pools by percentage.
//
// Each pool first gets floor(total * pct / 100). The remaining seats are handed
// out one by one to the pools with the largest fractional remainders, ties
// broken in paid, free, buffer order. The three results always sum to total.
func (c *EstablishmentCapacityConfig) SplitCapacity() PoolTotals {
	return SplitCapacity(c.TotalCapacity, c.PaidStockPercentage, c.FreeStockPercentage, c.BufferPercentage)
}

// SplitCapacity is the standalone split used by SlotAvailability derivation.
// See EstablishmentCapacityConfig.SplitCapacity for the rounding rule.
func SplitCapacity(total, paidPct, freePct, bufferPct int) PoolTotals {
	if total <= 0 {
		return PoolTotals{}
	}

	type share struct {
		floor     int
		remainder int // total*pct % 100, the fractional part scaled by 100
	}

	shares := [3]share{
		{floor: total * paidPct / 100, remainder: total * paidPct % 100},
		{floor: total * freePct / 100, remainder: total * freePct % 100},
		{floor: total * bufferPct / 100, remainder: total * bufferPct % 100},
	}

	leftover := total - shares[0].floor - shares[1].floor - shares[2].floor

	// Largest remainder first; on equal remainders the lower index (paid,
	// then free, then buffer) wins.
	for leftover > 0 {
		best := -1
		for i := range shares {
			if best == -1 || shares[i].remainder > shares[best].remainder {
				best = i
			}
		}
		shares[best].floor++
		shares[best].remainder = -1 // consumed
		leftover--
	}

	return PoolTotals{
		Paid:   shares[0].floor,
		Free:   shares[1].floor,
		Buffer: shares[2].floor,
	}
}

// PoolAvailability is the derived occupancy of a single pool
type PoolAvailability struct {
	Total     int
	Occupied  int
	Available int
}

// SlotAvailability is derived, never stored: totals and occupied counts per
// pool for a given (establishment, date, time slot).
type SlotAvailability struct {
	EstablishmentID int64
	Date            time.Time
	StartTime       types.TimeString

	Paid   PoolAvailability
	Free   PoolAvailability
	Buffer PoolAvailability
}

// ForStock returns the availability of the pool matching a stock type
func (a *SlotAvailability) ForStock(stock StockType) PoolAvailability {
	switch stock {
	case StockPaid:
		return a.Paid
	case StockFree:
		return a.Free
	case StockBuffer:
		return a.Buffer
	default:
		return PoolAvailability{}
	}
}

// NewSlotAvailability derives availability from pool totals and per-pool
// occupied counts. Available never goes negative even if occupancy temporarily
// overshoots totals (e.g. after a config shrink).
func NewSlotAvailability(totals PoolTotals, occupiedPaid, occupiedFree, occupiedBuffer int) SlotAvailability {
	return SlotAvailability{
		Paid:   newPoolAvailability(totals.Paid, occupiedPaid),
		Free:   newPoolAvailability(totals.Free, occupiedFree),
		Buffer: newPoolAvailability(totals.Buffer, occupiedBuffer),
	}
}

func newPoolAvailability(total, occupied int) PoolAvailability {
	if occupied < 0 {
		occupied = 0
	}
	available := total - occupied
	if available < 0 {
		available = 0
	}
	return PoolAvailability{Total: total, Occupied: occupied, Available: available}
}

// StockForBooking resolves which pool a booking request may consume.
// Paid bookings take the paid pool; free bookings take the free pool only
// under promotional conditions. The buffer pool is operational overflow and is
// never offered to the normal booking flow.
func StockForBooking(payment PaymentType, promoEligible bool) (StockType, error) {
	switch payment {
	case PaymentPaid:
		return StockPaid, nil
	case PaymentFree:
		if !promoEligible {
			return "", fmt.Errorf("%w: free pool requires promotional eligibility", ErrPoolNotBookable)
		}
		return StockFree, nil
	default:
		return "", fmt.Errorf("%w: unknown payment type %q", ErrInvalidConfig, payment)
	}
}
