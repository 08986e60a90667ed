package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidBidStatus(t *testing.T) {
	for _, s := range []string{BidStatusPending, BidStatusInProgress, BidStatusRejected, BidStatusCompleted} {
		assert.True(t, ValidBidStatus(s), s)
	}

	for _, s := range []string{"", "PENDING", "done", "in_progress"} {
		assert.False(t, ValidBidStatus(s), s)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{BidStatusPending, BidStatusInProgress, true},
		{BidStatusPending, BidStatusRejected, true},
		{BidStatusPending, BidStatusCompleted, false},
		{BidStatusInProgress, BidStatusCompleted, true},
		{BidStatusInProgress, BidStatusRejected, true},
		{BidStatusInProgress, BidStatusPending, false},
		// Terminal states allow nothing
		{BidStatusRejected, BidStatusPending, false},
		{BidStatusRejected, BidStatusInProgress, false},
		{BidStatusCompleted, BidStatusPending, false},
		{BidStatusCompleted, BidStatusRejected, false},
		// No self-loops
		{BidStatusPending, BidStatusPending, false},
		{BidStatusCompleted, BidStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}
