package category

import (
	"context"
	"errors"

	"findash/internal/domain/transaction"
	"findash/internal/shared/apperr"
	"findash/internal/shared/logger"
)

// TransactionDetacher clears category references on a user's transactions.
type TransactionDetacher interface {
	ClearCategory(ctx context.Context, userID int64, categoryID string) (int64, error)
}

type Service struct {
	repo         Repository
	transactions TransactionDetacher
}

func NewService(repo Repository, transactions TransactionDetacher) *Service {
	return &Service{repo: repo, transactions: transactions}
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Category, error) {
	cats, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []*Category{}
	}
	return cats, nil
}

func (s *Service) Create(ctx context.Context, userID int64, params CreateParams) (*Category, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, userID, params)
	if errors.Is(err, ErrDuplicateCategory) {
		return nil, duplicateError()
	}
	return c, err
}

func (s *Service) Update(ctx context.Context, userID int64, id string, params UpdateParams) (*Category, error) {
	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	c.Apply(params)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, c)
	if errors.Is(err, ErrDuplicateCategory) {
		return nil, duplicateError()
	}
	return updated, err
}

// Delete removes the category and clears it from every transaction that
// referenced it. The transactions themselves are kept.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	if _, err := s.repo.GetByID(ctx, userID, id); err != nil {
		return err
	}

	n, err := s.transactions.ClearCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("category_id", id).Int64("detached", n).Msg("category deleted")
	return nil
}

// SeedDefaults creates the default categories, skipping any the user
// already has.
func (s *Service) SeedDefaults(ctx context.Context, userID int64) error {
	for _, p := range Defaults() {
		if _, err := s.repo.Create(ctx, userID, p.Normalize()); err != nil && !errors.Is(err, ErrDuplicateCategory) {
			return err
		}
	}
	return nil
}

// CategoryType implements transaction.CategoryResolver.
func (s *Service) CategoryType(ctx context.Context, userID int64, id string) (transaction.Category, error) {
	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	return c.Type, nil
}

func duplicateError() error {
	return apperr.Validation(apperr.FieldError{Field: "name", Message: "a category with this name and type already exists"})
}
