package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUserNotFound возвращается, когда пользователь не найден в базе
var ErrUserNotFound = errors.New("пользователь не найден")

// User представляет пользователя в системе
type User struct {
	ID                uuid.UUID  `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Bio               string     `json:"bio,omitempty"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	Location          string     `json:"location,omitempty"`
	Rating            *float64   `json:"rating,omitempty"`
	NumReviews        int        `json:"num_reviews"`
	GoogleID          *string    `json:"google_id,omitempty"`
	GithubID          *string    `json:"github_id,omitempty"`
	RegistrationDate  time.Time  `json:"registration_date"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	IsActive          bool       `json:"is_active"`
}

// CreateUser создает нового пользователя с email и хешем пароля
func CreateUser(ctx context.Context, email, username, passwordHash string, bio, location, pictureURL string) (*User, error) {
	user := &User{
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		Bio:               bio,
		Location:          location,
		ProfilePictureURL: pictureURL,
	}

	err := Pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, bio, location, profile_picture_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, registration_date, num_reviews, is_active
	`, email, username, passwordHash, bio, location, pictureURL).Scan(
		&user.ID, &user.RegistrationDate, &user.NumReviews, &user.IsActive)

	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return user, nil
}

// GetUserByEmail возвращает пользователя по email
func GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(Pool.QueryRow(ctx, userSelect+` WHERE email = $1`, email))
}

// GetUserByID возвращает пользователя по ID
func GetUserByID(ctx context.Context, userID uuid.UUID) (*User, error) {
	return scanUser(Pool.QueryRow(ctx, userSelect+` WHERE id = $1`, userID))
}

// UserExists проверяет существование пользователя
func UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке существования пользователя: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin обновляет время последнего входа пользователя
func UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := Pool.Exec(ctx, `
		UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении времени входа: %w", err)
	}
	return nil
}

const userSelect = `
	SELECT id, email, username, password_hash, bio, profile_picture_url, location,
	       rating, num_reviews, google_id, github_id, registration_date, last_login, is_active
	FROM users`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var bio, picture, location *string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&bio,
		&picture,
		&location,
		&user.Rating,
		&user.NumReviews,
		&user.GoogleID,
		&user.GithubID,
		&user.RegistrationDate,
		&user.LastLogin,
		&user.IsActive,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	if bio != nil {
		user.Bio = *bio
	}
	if picture != nil {
		user.ProfilePictureURL = *picture
	}
	if location != nil {
		user.Location = *location
	}

	return &user, nil
}
