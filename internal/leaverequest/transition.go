package leaverequest

import "go-timeoff/internal/balance"

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type transition struct {
	from string
	to   string
}

// ledgerDeltas maps every legal state transition to its balance effect for a
// paid leave type. Unpaid types take the same transitions with no ledger
// effect. Approve only moves held hours between buckets; the three-field sum
// changes only when hours re-enter the balance on rejection.
var ledgerDeltas = map[transition]func(hours float64) balance.Delta{
	{StatusPending, StatusApproved}: func(h float64) balance.Delta {
		return balance.Delta{Pending: -h, Booked: +h}
	},
	{StatusPending, StatusRejected}: func(h float64) balance.Delta {
		return balance.Delta{Pending: -h, Balance: +h}
	},
	{StatusApproved, StatusRejected}: func(h float64) balance.Delta {
		return balance.Delta{Booked: -h, Balance: +h}
	},
}

// eligibleStates lists which current states each review action accepts.
// Rejecting an approved request is the late-cancellation path.
var eligibleStates = map[string][]string{
	ActionApprove: {StatusPending},
	ActionReject:  {StatusPending, StatusApproved},
}

func targetStatus(action string) string {
	if action == ActionApprove {
		return StatusApproved
	}
	return StatusRejected
}

func isEligible(action, currentStatus string) bool {
	for _, s := range eligibleStates[action] {
		if s == currentStatus {
			return true
		}
	}
	return false
}

// deltaFor returns the ledger delta for a transition, or ok=false when the
// transition carries no ledger effect.
func deltaFor(from, to string, hours float64) (balance.Delta, bool) {
	fn, ok := ledgerDeltas[transition{from: from, to: to}]
	if !ok {
		return balance.Delta{}, false
	}
	return fn(hours), true
}
