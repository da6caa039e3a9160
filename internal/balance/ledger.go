package balance

import (
	"math"

	balanceerrors "go-timeoff/internal/balance/errors"
)

// Tolerance absorbs float rounding noise: values within it of zero are snapped
// to zero, and a bucket only counts as negative beyond it.
const Tolerance = 1e-6

// Delta is a signed adjustment to the three hour buckets.
type Delta struct {
	Balance float64
	Pending float64
	Booked  float64
}

// Round2 rounds to 2 decimal places, the ledger's persisted precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func snap(v float64) float64 {
	if math.Abs(v) < Tolerance {
		return 0
	}
	return v
}

// Apply computes the delta in memory and mutates the snapshot only if every
// resulting bucket stays non-negative. On violation the snapshot is untouched
// and the caller must roll back the enclosing transaction.
func Apply(b *LeaveBalance, d Delta) error {
	newBalance := snap(Round2(b.BalanceHours + d.Balance))
	newPending := snap(Round2(b.PendingHours + d.Pending))
	newBooked := snap(Round2(b.BookedHours + d.Booked))

	if newBalance < -Tolerance || newPending < -Tolerance || newBooked < -Tolerance {
		return balanceerrors.ErrNegativeBucket
	}

	b.BalanceHours = newBalance
	b.PendingHours = newPending
	b.BookedHours = newBooked
	return nil
}
