package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Статусы объявления
const (
	ListingStatusActive    = "active"
	ListingStatusInactive  = "inactive"
	ListingStatusPaused    = "paused"
	ListingStatusCompleted = "completed"
)

// Лимиты портфолио различаются по операциям.
// TODO: согласовать лимиты 6 (создание) / 5 (добавление) / 6 (без объявления)
const (
	MaxImagesOnCreate = 6 // при создании объявления
	MaxImagesOnAppend = 5 // итог после добавления к существующему объявлению
	MaxUserImages     = 6 // изображения пользователя, не привязанные к объявлению
)

// SkillListing представляет объявление об обмене навыками
type SkillListing struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	SkillOfferedID     uuid.UUID        `json:"skill_offered"`
	SkillDesiredID     uuid.UUID        `json:"skill_desired"`
	SkillOfferedName   string           `json:"skill_offered_name,omitempty"`
	SkillDesiredName   string           `json:"skill_desired_name,omitempty"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Status             string           `json:"status"`
	LocationPreference string           `json:"location_preference,omitempty"`
	PortfolioLink      string           `json:"portfolio_link,omitempty"`
	CreatedAt          time.Time        `json:"creation_date"`
	UpdatedAt          time.Time        `json:"last_updated"`
	Images             []PortfolioImage `json:"portfolio_images"`

	// Дополнительные поля для API
	User *User `json:"user,omitempty"`
}

// PortfolioImage представляет изображение портфолио пользователя,
// опционально привязанное к объявлению
type PortfolioImage struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ListingID  *uuid.UUID `json:"listing_id,omitempty"`
	ImageURL   string     `json:"image_url"`
	PublicID   string     `json:"public_id,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
}

// IsValidListingStatus проверяет допустимость статуса объявления
func IsValidListingStatus(status string) bool {
	switch status {
	case ListingStatusActive, ListingStatusInactive, ListingStatusPaused, ListingStatusCompleted:
		return true
	}
	return false
}

// CheckImageLimit проверяет, что итоговое число изображений не превышает лимит
func CheckImageLimit(existing, adding, limit int) error {
	if existing+adding > limit {
		return fmt.Errorf("превышен лимит изображений: %d из %d", existing+adding, limit)
	}
	return nil
}
