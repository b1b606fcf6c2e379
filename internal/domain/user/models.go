package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"findash/internal/shared/apperr"
)

var (
	ErrUserNotFound = apperr.NotFound("user not found")
	// ErrEmailTaken is returned by repositories on a unique email violation.
	ErrEmailTaken = errors.New("email already in use")
)

const DefaultProfile = "default-avatar.png"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Profile      string    `json:"profile"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateUserParams struct {
	Email        string
	Name         string
	Profile      string
	PasswordHash string
}

type RegisterParams struct {
	Email    string
	Password string
	Name     string
}

func (p RegisterParams) Normalize() RegisterParams {
	p.Email = NormalizeEmail(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	return p
}

func (p RegisterParams) Validate() error {
	var fe apperr.FieldErrors
	validateEmail(&fe, p.Email)
	if p.Name == "" {
		fe.Add("name", "is required")
	}
	if p.Password == "" {
		fe.Add("password", "is required")
	}
	return fe.Err()
}

// UpdateProfileParams changes the name and email; the password changes only
// when both CurrentPassword and NewPassword are set.
type UpdateProfileParams struct {
	Name            *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(fe *apperr.FieldErrors, email string) {
	if email == "" {
		fe.Add("email", "is required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fe.Add("email", "must be a valid email address")
	}
}
