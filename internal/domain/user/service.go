package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"findash/internal/shared/apperr"
	"findash/internal/shared/auth"
)

type TokenIssuer interface {
	Generate(userID int64, email string) (string, error)
}

// CategorySeeder gives a new user their starting categories.
type CategorySeeder interface {
	SeedDefaults(ctx context.Context, userID int64) error
}

// DataPurger deletes everything a user owns in one collection.
type DataPurger interface {
	DeleteByUser(ctx context.Context, userID int64) error
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type Service struct {
	repo    Repository
	tokens  TokenIssuer
	seeder  CategorySeeder
	purgers []DataPurger
}

func NewService(repo Repository, tokens TokenIssuer, seeder CategorySeeder, purgers ...DataPurger) *Service {
	return &Service{repo: repo, tokens: tokens, seeder: seeder, purgers: purgers}
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, apperr.Validation(apperr.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, CreateUserParams{
		Email:        params.Email,
		Name:         params.Name,
		Profile:      DefaultProfile,
		PasswordHash: hash,
	})
	if errors.Is(err, ErrEmailTaken) {
		return nil, apperr.Validation(apperr.FieldError{Field: "email", Message: "user already exists"})
	}
	if err != nil {
		return nil, err
	}

	if s.seeder != nil {
		if err := s.seeder.SeedDefaults(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	ok, err := auth.PasswordMatches(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, apperr.Unauthenticated("invalid credentials")
	}

	return s.issue(u)
}

func (s *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, params UpdateProfileParams) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var fe apperr.FieldErrors
	if params.Email != nil {
		email := NormalizeEmail(*params.Email)
		validateEmail(&fe, email)
		u.Email = email
	}
	if params.Name != nil {
		if name := strings.TrimSpace(*params.Name); name != "" {
			u.Name = name
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	if params.CurrentPassword != "" && params.NewPassword != "" {
		ok, err := auth.PasswordMatches(u.PasswordHash, params.CurrentPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to verify password: %w", err)
		}
		if !ok {
			return nil, apperr.Validation(apperr.FieldError{Field: "currentPassword", Message: "is incorrect"})
		}
		hash, err := auth.HashPassword(params.NewPassword)
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperr.Validation(apperr.FieldError{Field: "newPassword", Message: "must be at least 6 characters"})
		}
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	updated, err := s.repo.Update(ctx, u)
	if errors.Is(err, ErrEmailTaken) {
		return nil, apperr.Validation(apperr.FieldError{Field: "email", Message: "already in use"})
	}
	return updated, err
}

// DeleteAccount removes the user and all of their data after confirming the
// password.
func (s *Service) DeleteAccount(ctx context.Context, userID int64, password string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := auth.PasswordMatches(u.PasswordHash, password)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return apperr.Validation(apperr.FieldError{Field: "password", Message: "is incorrect"})
	}

	for _, p := range s.purgers {
		if err := p.DeleteByUser(ctx, userID); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, userID)
}

func (s *Service) issue(u *User) (*AuthResult, error) {
	token, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}
