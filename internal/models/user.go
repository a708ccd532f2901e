package models

import (
	"github.com/google/uuid"
)

// User представляет минимальную информацию о пользователе для API
type User struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	Location          string    `json:"location,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	Rating            *float64  `json:"rating,omitempty"`
	NumReviews        int       `json:"num_reviews,omitempty"`
}
