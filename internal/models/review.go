package models

import (
	"time"

	"github.com/google/uuid"
)

// Review представляет отзыв участника обмена о втором участнике
type Review struct {
	ID              uuid.UUID `json:"id"`
	TradeID         uuid.UUID `json:"trade_id"`
	ReviewerUserID  uuid.UUID `json:"reviewer_user_id"`
	ReviewedUserID  uuid.UUID `json:"reviewed_user_id"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment,omitempty"`
	Criteria1Rating *int      `json:"criteria1_rating,omitempty"`
	Criteria2Rating *int      `json:"criteria2_rating,omitempty"`
	IsAnonymous     bool      `json:"is_anonymous"`
	ReviewDate      time.Time `json:"review_date"`

	// Дополнительные поля для API
	Reviewer *User `json:"reviewer,omitempty"`
}

// IsValidRating проверяет, что оценка находится в допустимом диапазоне
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
