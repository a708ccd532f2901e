package models

import (
	"time"

	"github.com/google/uuid"
)

// UserBlock представляет направленную блокировку одного пользователя другим
type UserBlock struct {
	ID        uuid.UUID `json:"id"`
	BlockerID uuid.UUID `json:"blocker_id"`
	BlockedID uuid.UUID `json:"blocked_id"`
	Reason    string    `json:"reason,omitempty"`
	BlockDate time.Time `json:"block_date"`

	// Дополнительные поля для API
	Blocked *User `json:"blocked_user,omitempty"`
}
