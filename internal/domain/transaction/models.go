package transaction

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"findash/internal/shared/apperr"
)

// Category is the Revenue/Expense classification carried by every transaction.
type Category string

const (
	Revenue Category = "Revenue"
	Expense Category = "Expense"
)

func (c Category) Valid() bool {
	return c == Revenue || c == Expense
}

type Status string

const (
	Paid    Status = "Paid"
	Pending Status = "Pending"
)

func (s Status) Valid() bool {
	return s == Paid || s == Pending
}

const (
	DefaultUserProfile = "default-avatar.png"
	MaxFromToLength    = 100

	// MaxAmount bounds the magnitude of a single amount so it fits the
	// NUMERIC(14,2) column.
	MaxAmount = 1e12
)

type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Status      Status    `json:"status"`
	UserID      int64     `json:"user_id"`
	UserProfile string    `json:"user_profile"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	FromTo      string    `json:"fromTo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateParams struct {
	Date        time.Time
	Amount      float64
	Category    Category
	Status      Status
	UserID      int64
	UserProfile string
	CategoryID  *string
	FromTo      string
}

// UpdateParams holds a partial update. Nil fields are left unchanged; an
// empty CategoryID detaches the transaction from its category.
type UpdateParams struct {
	Date       *time.Time
	Amount     *float64
	Category   *Category
	Status     *Status
	CategoryID *string
	FromTo     *string
}

// NormalizeAmount forces the sign of amount to agree with category:
// Revenue is stored as +|amount| and Expense as -|amount|. Finite amounts
// are rounded half away from zero to whole cents.
func NormalizeAmount(category Category, amount float64) float64 {
	switch category {
	case Expense:
		amount = -math.Abs(amount)
	case Revenue:
		amount = math.Abs(amount)
	}
	return roundCents(amount)
}

func roundCents(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// Normalize returns a copy of p with its amount sign normalized and the
// free-text fields trimmed.
func (p CreateParams) Normalize() CreateParams {
	p.Amount = NormalizeAmount(p.Category, p.Amount)
	p.FromTo = strings.TrimSpace(p.FromTo)
	p.UserProfile = strings.TrimSpace(p.UserProfile)
	if p.CategoryID != nil && *p.CategoryID == "" {
		p.CategoryID = nil
	}
	return p
}

func (p CreateParams) Validate() error {
	return validate(p.Date, p.Amount, p.Category, p.Status, p.UserProfile, p.FromTo, p.UserID)
}

// Apply merges a partial update into t and renormalizes the amount.
func (t *Transaction) Apply(p UpdateParams) {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CategoryID != nil {
		if *p.CategoryID == "" {
			t.CategoryID = nil
		} else {
			id := *p.CategoryID
			t.CategoryID = &id
		}
	}
	if p.FromTo != nil {
		t.FromTo = strings.TrimSpace(*p.FromTo)
	}
	t.Amount = NormalizeAmount(t.Category, t.Amount)
}

func (t *Transaction) Validate() error {
	return validate(t.Date, t.Amount, t.Category, t.Status, t.UserProfile, t.FromTo, t.UserID)
}

func validate(date time.Time, amount float64, category Category, status Status, profile, fromTo string, userID int64) error {
	var fe apperr.FieldErrors
	if date.IsZero() {
		fe.Add("date", "is required")
	}
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		fe.Add("amount", "must be a finite number")
	case math.Abs(amount) >= MaxAmount:
		fe.Add("amount", "must be less than 1000000000000 in magnitude")
	case amount == 0:
		fe.Add("amount", "must not be zero")
	}
	if !category.Valid() {
		fe.Add("category", "must be Revenue or Expense")
	}
	if !status.Valid() {
		fe.Add("status", "must be Paid or Pending")
	}
	if profile == "" {
		fe.Add("user_profile", "is required")
	}
	if utf8.RuneCountInString(fromTo) > MaxFromToLength {
		fe.Add("fromTo", "must be at most 100 characters")
	}
	if userID <= 0 {
		fe.Add("user_id", "is required")
	}
	return fe.Err()
}

// ParseDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date, which
// is read as midnight in loc. dateOnly reports which form matched.
func ParseDate(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err = time.ParseInLocation(time.DateOnly, s, loc)
	return t, err == nil, err
}
