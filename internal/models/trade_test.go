package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionProposal(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to accepted", ProposalStatusPending, ProposalStatusAccepted, true},
		{"pending to rejected", ProposalStatusPending, ProposalStatusRejected, true},
		{"pending to withdrawn", ProposalStatusPending, ProposalStatusWithdrawn, true},
		{"pending to countered", ProposalStatusPending, ProposalStatusCountered, true},
		{"accepted to rejected", ProposalStatusAccepted, ProposalStatusRejected, false},
		{"accepted to accepted", ProposalStatusAccepted, ProposalStatusAccepted, false},
		{"rejected to accepted", ProposalStatusRejected, ProposalStatusAccepted, false},
		{"withdrawn to pending", ProposalStatusWithdrawn, ProposalStatusPending, false},
		{"pending to pending", ProposalStatusPending, ProposalStatusPending, false},
		{"pending to garbage", ProposalStatusPending, "garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionProposal(tt.from, tt.to))
		})
	}
}

func TestCanTransitionTrade(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"active to in_progress", TradeStatusActive, TradeStatusInProgress, true},
		{"in_progress to completed", TradeStatusInProgress, TradeStatusCompleted, true},
		{"active to completed skips step", TradeStatusActive, TradeStatusCompleted, false},
		{"active to disputed", TradeStatusActive, TradeStatusDisputed, true},
		{"in_progress to disputed", TradeStatusInProgress, TradeStatusDisputed, true},
		{"disputed to cancelled", TradeStatusDisputed, TradeStatusCancelled, true},
		{"active to cancelled", TradeStatusActive, TradeStatusCancelled, true},
		{"completed is terminal", TradeStatusCompleted, TradeStatusDisputed, false},
		{"cancelled is terminal", TradeStatusCancelled, TradeStatusInProgress, false},
		{"in_progress to active backwards", TradeStatusInProgress, TradeStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionTrade(tt.from, tt.to))
		})
	}
}

func TestTradeParticipants(t *testing.T) {
	user1 := uuid.New()
	user2 := uuid.New()
	stranger := uuid.New()

	trade := Trade{User1ID: user1, User2ID: user2}

	assert.True(t, trade.IsParticipant(user1))
	assert.True(t, trade.IsParticipant(user2))
	assert.False(t, trade.IsParticipant(stranger))

	assert.Equal(t, user2, trade.OtherParticipant(user1))
	assert.Equal(t, user1, trade.OtherParticipant(user2))
}
