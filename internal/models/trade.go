package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы предложения обмена
const (
	ProposalStatusPending   = "pending"
	ProposalStatusAccepted  = "accepted"
	ProposalStatusRejected  = "rejected"
	ProposalStatusWithdrawn = "withdrawn"
	ProposalStatusCountered = "countered"
)

// Статусы обмена
const (
	TradeStatusActive     = "active"
	TradeStatusInProgress = "in_progress"
	TradeStatusCompleted  = "completed"
	TradeStatusDisputed   = "disputed"
	TradeStatusCancelled  = "cancelled"
)

// TradeProposal представляет предложение обмена по объявлению
type TradeProposal struct {
	ID                     uuid.UUID `json:"id"`
	ListingID              uuid.UUID `json:"listing_id"`
	ProposerID             uuid.UUID `json:"proposer_id"`
	RecipientID            uuid.UUID `json:"recipient_id"`
	SkillOfferedByProposer uuid.UUID `json:"skill_offered_by_proposer"`
	SkillDesiredByProposer uuid.UUID `json:"skill_desired_by_proposer"`
	Message                string    `json:"message"`
	Status                 string    `json:"status"`
	ProposalDate           time.Time `json:"proposal_date"`
	LastStatusUpdate       time.Time `json:"last_status_update"`

	// Дополнительные поля для API
	Proposer  *User         `json:"proposer,omitempty"`
	Recipient *User         `json:"recipient,omitempty"`
	Listing   *SkillListing `json:"listing,omitempty"`
	TradeID   *uuid.UUID    `json:"trade_id,omitempty"`
}

// Trade представляет состоявшийся обмен, созданный из принятого предложения
type Trade struct {
	ID                     uuid.UUID  `json:"id"`
	ProposalID             *uuid.UUID `json:"proposal_id,omitempty"`
	User1ID                uuid.UUID  `json:"user1_id"`
	User2ID                uuid.UUID  `json:"user2_id"`
	Skill1ID               uuid.UUID  `json:"skill1_id"`
	Skill2ID               uuid.UUID  `json:"skill2_id"`
	Status                 string     `json:"status"`
	StartDate              time.Time  `json:"start_date"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date,omitempty"`
	ActualCompletionDate   *time.Time `json:"actual_completion_date,omitempty"`
	TermsAgreed            string     `json:"terms_agreed"`

	// Дополнительные поля для API
	User1  *User  `json:"user1,omitempty"`
	User2  *User  `json:"user2,omitempty"`
	Skill1 *Skill `json:"skill1,omitempty"`
	Skill2 *Skill `json:"skill2,omitempty"`
}

// IsParticipant сообщает, участвует ли пользователь в обмене
func (t *Trade) IsParticipant(userID uuid.UUID) bool {
	return t.User1ID == userID || t.User2ID == userID
}

// OtherParticipant возвращает второго участника обмена
func (t *Trade) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if t.User1ID == userID {
		return t.User2ID
	}
	return t.User1ID
}

// CanTransitionProposal проверяет допустимость перехода статуса предложения.
// Единственное исходное состояние — pending.
func CanTransitionProposal(from, to string) bool {
	if from != ProposalStatusPending {
		return false
	}
	switch to {
	case ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn, ProposalStatusCountered:
		return true
	}
	return false
}

// IsTerminalTradeStatus сообщает, является ли статус обмена конечным
func IsTerminalTradeStatus(status string) bool {
	return status == TradeStatusCompleted || status == TradeStatusCancelled
}

// CanTransitionTrade проверяет допустимость перехода статуса обмена:
// active → in_progress → completed, disputed и cancelled достижимы
// из любого неконечного состояния.
func CanTransitionTrade(from, to string) bool {
	if IsTerminalTradeStatus(from) {
		return false
	}

	switch to {
	case TradeStatusDisputed, TradeStatusCancelled:
		return true
	case TradeStatusInProgress:
		return from == TradeStatusActive
	case TradeStatusCompleted:
		return from == TradeStatusInProgress
	}
	return false
}
