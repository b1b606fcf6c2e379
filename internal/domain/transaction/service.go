package transaction

import (
	"context"
	"errors"
	"math"
	"time"

	"findash/internal/shared/apperr"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// CategoryResolver looks up the Revenue/Expense type of a user's category.
// It returns an apperr not-found error when the category is not the user's.
type CategoryResolver interface {
	CategoryType(ctx context.Context, userID int64, categoryID string) (Category, error)
}

type ListParams struct {
	Page      int
	Limit     int
	Category  Category
	Status    Status
	StartDate *time.Time
	EndDate   *time.Time
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type ListResult struct {
	Transactions []*Transaction `json:"transactions"`
	Pagination   Pagination     `json:"pagination"`
}

// Service contains the business logic for transaction operations
type Service struct {
	repo       Repository
	categories CategoryResolver
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryResolver) *Service {
	return &Service{repo: repo, categories: categories, now: time.Now}
}

func (s *Service) List(ctx context.Context, userID int64, params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = DefaultPageLimit
	}
	if params.Limit > MaxPageLimit {
		params.Limit = MaxPageLimit
	}

	var fe apperr.FieldErrors
	if params.Page > math.MaxInt/params.Limit {
		fe.Add("page", "is too large")
	}
	if params.Category != "" && !params.Category.Valid() {
		fe.Add("category", "must be Revenue or Expense")
	}
	if params.Status != "" && !params.Status.Valid() {
		fe.Add("status", "must be Paid or Pending")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	filter := Filter{Category: params.Category, Status: params.Status}
	// A date range applies only when both ends are given.
	if params.StartDate != nil && params.EndDate != nil {
		filter.From = params.StartDate
		filter.To = params.EndDate
	}

	txs, err := s.repo.FindByUser(ctx, userID, filter, Page{
		Limit:  params.Limit,
		Offset: (params.Page - 1) * params.Limit,
	})
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*Transaction{}
	}

	limit := int64(params.Limit)
	return &ListResult{
		Transactions: txs,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

func (s *Service) Get(ctx context.Context, userID int64, id string) (*Transaction, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if params.Date.IsZero() {
		params.Date = s.now()
	}
	if params.UserProfile == "" {
		params.UserProfile = DefaultUserProfile
	}
	params = params.Normalize()

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, params.UserID, params.CategoryID, params.Category); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// Update applies a partial update. The amount sign is normalized against the
// resulting category, so changing only the category flips the stored sign.
func (s *Service) Update(ctx context.Context, userID int64, id string, params UpdateParams) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	t.Apply(params)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, userID, t.CategoryID, t.Category); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) checkCategory(ctx context.Context, userID int64, categoryID *string, want Category) error {
	if categoryID == nil || s.categories == nil {
		return nil
	}
	got, err := s.categories.CategoryType(ctx, userID, *categoryID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation(apperr.FieldError{Field: "categoryId", Message: "does not reference one of your categories"})
		}
		return err
	}
	if got != want {
		return apperr.Validation(apperr.FieldError{Field: "categoryId", Message: "category type must match the transaction category"})
	}
	return nil
}
