package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCapacity(t *testing.T) {
	cases := []struct {
		name                       string
		total                      int
		paidPct, freePct, buffPct  int
		wantPaid, wantFree, wantBu int
	}{
		{"100 seats 88/6/6 splits with no rounding loss", 100, 88, 6, 6, 88, 6, 6},
		{"even split", 30, 50, 30, 20, 15, 9, 6},
		{"zero capacity", 0, 88, 6, 6, 0, 0, 0},
		{"single seat goes to the largest share", 1, 88, 6, 6, 1, 0, 0},
		{"remainder tie broken free before buffer", 7, 88, 6, 6, 6, 1, 0},
		{"all paid", 10, 100, 0, 0, 10, 0, 0},
		{"indivisible thirds", 10, 34, 33, 33, 4, 3, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitCapacity(tc.total, tc.paidPct, tc.freePct, tc.buffPct)
			assert.Equal(t, tc.wantPaid, got.Paid, "paid pool")
			assert.Equal(t, tc.wantFree, got.Free, "free pool")
			assert.Equal(t, tc.wantBu, got.Buffer, "buffer pool")
			assert.Equal(t, tc.total, got.Total(), "pools must sum to total")
		})
	}
}

func TestSplitCapacity_SumInvariant(t *testing.T) {
	// The three integer pools must sum exactly to total for every capacity.
	percentages := [][3]int{{88, 6, 6}, {50, 30, 20}, {34, 33, 33}, {99, 1, 0}, {0, 0, 100}}
	for _, pct := range percentages {
		for total := 0; total <= 250; total++ {
			got := SplitCapacity(total, pct[0], pct[1], pct[2])
			require.Equal(t, total, got.Total(), "total=%d pct=%v", total, pct)
			require.GreaterOrEqual(t, got.Paid, 0)
			require.GreaterOrEqual(t, got.Free, 0)
			require.GreaterOrEqual(t, got.Buffer, 0)
		}
	}
}

func TestCapacityConfigValidate(t *testing.T) {
	valid := EstablishmentCapacityConfig{
		TotalCapacity:       100,
		SlotIntervalMinutes: 30,
		PaidStockPercentage: 88,
		FreeStockPercentage: 6,
		BufferPercentage:    6,
	}
	assert.NoError(t, valid.Validate())

	t.Run("percentages must sum to 100", func(t *testing.T) {
		c := valid
		c.BufferPercentage = 7
		err := c.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("negative capacity rejected", func(t *testing.T) {
		c := valid
		c.TotalCapacity = -1
		assert.Error(t, c.Validate())
	})

	t.Run("zero interval rejected", func(t *testing.T) {
		c := valid
		c.SlotIntervalMinutes = 0
		assert.Error(t, c.Validate())
	})
}

func TestNewSlotAvailability(t *testing.T) {
	totals := PoolTotals{Paid: 88, Free: 6, Buffer: 6}

	t.Run("derives available per pool", func(t *testing.T) {
		a := NewSlotAvailability(totals, 80, 6, 0)
		assert.Equal(t, 8, a.Paid.Available)
		assert.Equal(t, 0, a.Free.Available)
		assert.Equal(t, 6, a.Buffer.Available)
	})

	t.Run("never reports negative availability", func(t *testing.T) {
		a := NewSlotAvailability(totals, 100, 10, 10)
		assert.Equal(t, 0, a.Paid.Available)
		assert.Equal(t, 0, a.Free.Available)
		assert.Equal(t, 0, a.Buffer.Available)
	})
}

func TestStockForBooking(t *testing.T) {
	t.Run("paid booking takes paid pool", func(t *testing.T) {
		stock, err := StockForBooking(PaymentPaid, false)
		require.NoError(t, err)
		assert.Equal(t, StockPaid, stock)
	})

	t.Run("free booking requires promo eligibility", func(t *testing.T) {
		_, err := StockForBooking(PaymentFree, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPoolNotBookable))

		stock, err := StockForBooking(PaymentFree, true)
		require.NoError(t, err)
		assert.Equal(t, StockFree, stock)
	})
}

func TestStockTypeStoredValues(t *testing.T) {
	// Stored verbatim in the reservations.stock_type column (VARCHAR(16));
	// renaming a value is a schema migration, not a refactor.
	assert.Equal(t, "paid_stock", string(StockPaid))
	assert.Equal(t, "free_stock", string(StockFree))
	assert.Equal(t, "buffer", string(StockBuffer))
}
