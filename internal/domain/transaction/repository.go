package transaction

import (
	"context"
	"time"

	"findash/internal/shared/apperr"
)

var ErrTransactionNotFound = apperr.NotFound("transaction not found")

// Filter narrows a user's transactions. Zero fields match everything; all set
// fields combine with AND. Search is a case-insensitive substring match
// against category OR status. From and To are inclusive.
type Filter struct {
	Category Category
	Status   Status
	Search   string
	From     *time.Time
	To       *time.Time
}

// Page bounds a listing. A zero Limit returns every row.
type Page struct {
	Limit  int
	Offset int
}

// GroupKey selects the grouping dimensions of an aggregation.
type GroupKey uint8

const (
	GroupByCategory GroupKey = 1 << iota
	GroupByYear
	GroupByMonth
)

func (k GroupKey) Has(dim GroupKey) bool {
	return k&dim != 0
}

// Group is one aggregation bucket. Dimensions not in the GroupKey are left
// at their zero value. Year and Month are calendar values in the store's
// configured time zone.
type Group struct {
	Category Category
	Year     int
	Month    int
	Total    float64
	Count    int64
}

// Store is the read side used by the metrics, reporting and export engines.
// Every call is scoped to exactly one user.
type Store interface {
	// FindByUser orders by date descending; equal dates keep insertion order.
	FindByUser(ctx context.Context, userID int64, f Filter, p Page) ([]*Transaction, error)
	CountByUser(ctx context.Context, userID int64, f Filter) (int64, error)
	// AggregateByUser sums amount and counts rows per group. Groups with no
	// rows are not returned.
	AggregateByUser(ctx context.Context, userID int64, f Filter, key GroupKey) ([]Group, error)
}

// Repository defines the interface for transaction data access
type Repository interface {
	Store
	Create(ctx context.Context, params CreateParams) (*Transaction, error)
	GetByID(ctx context.Context, userID int64, id string) (*Transaction, error)
	// Update persists the mutable fields of t; the owner never changes.
	Update(ctx context.Context, t *Transaction) (*Transaction, error)
	Delete(ctx context.Context, userID int64, id string) error
	// ClearCategory detaches every transaction of the user from categoryID
	// and reports how many were changed.
	ClearCategory(ctx context.Context, userID int64, categoryID string) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) error
}
