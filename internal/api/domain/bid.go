package domain

// Bid status lifecycle
const (
	BidStatusPending    = "pending"
	BidStatusInProgress = "in-progress"
	BidStatusRejected   = "rejected"
	BidStatusCompleted  = "completed"
)

// transitions is the forward-only status graph. Rejected and completed are
// terminal.
var transitions = map[string][]string{
	BidStatusPending:    {BidStatusInProgress, BidStatusRejected},
	BidStatusInProgress: {BidStatusCompleted, BidStatusRejected},
	BidStatusRejected:   {},
	BidStatusCompleted:  {},
}

// ValidBidStatus reports whether s is one of the recognized status values
func ValidBidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a bid may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
