package category

import "context"

type Repository interface {
	// Create returns ErrDuplicateCategory when the user already has a
	// category with the same name and type.
	Create(ctx context.Context, userID int64, params CreateParams) (*Category, error)
	GetByID(ctx context.Context, userID int64, id string) (*Category, error)
	// ListByUserID orders by name.
	ListByUserID(ctx context.Context, userID int64) ([]*Category, error)
	Update(ctx context.Context, c *Category) (*Category, error)
	Delete(ctx context.Context, userID int64, id string) error
	DeleteByUser(ctx context.Context, userID int64) error
}
