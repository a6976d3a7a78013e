package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrInvalidWeekEnds    = errors.New("week_ends_on must be 0-6")
)

// User carries the per-user settings the engine needs. Credentials live in the
// identity service that issues our bearer tokens.
type User struct {
	ID         string       `json:"id"`
	Email      string       `json:"email"`
	WeekEndsOn time.Weekday `json:"week_ends_on"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func NewUser(id, email string, weekEndsOn int) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidUserID
	}

	email = strings.TrimSpace(email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if weekEndsOn < 0 || weekEndsOn > 6 {
		return nil, ErrInvalidWeekEnds
	}

	now := time.Now().UTC()
	return &User{
		ID:         id,
		Email:      strings.ToLower(email),
		WeekEndsOn: time.Weekday(weekEndsOn),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
