package category

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"findash/internal/domain/transaction"
	"findash/internal/shared/apperr"
)

var (
	ErrCategoryNotFound = apperr.NotFound("category not found")
	// ErrDuplicateCategory is returned by repositories when (name, user, type)
	// already exists.
	ErrDuplicateCategory = errors.New("category already exists")
)

const (
	DefaultColor      = "#000000"
	MinNameLength     = 2
	MaxNameLength     = 50
	MaxDescriptionLen = 200
)

var colorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

type Category struct {
	ID          string               `json:"id"`
	UserID      int64                `json:"user_id"`
	Name        string               `json:"name"`
	Type        transaction.Category `json:"type"`
	Description string               `json:"description,omitempty"`
	Color       string               `json:"color"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type CreateParams struct {
	Name        string
	Type        transaction.Category
	Description string
	Color       string
}

type UpdateParams struct {
	Name        *string
	Type        *transaction.Category
	Description *string
	Color       *string
}

// Normalize trims the text fields, capitalizes the first letter of the name
// and fills in the default color.
func (p CreateParams) Normalize() CreateParams {
	p.Name = capitalize(strings.TrimSpace(p.Name))
	p.Description = strings.TrimSpace(p.Description)
	p.Color = strings.TrimSpace(p.Color)
	if p.Color == "" {
		p.Color = DefaultColor
	}
	return p
}

func (p CreateParams) Validate() error {
	return validate(p.Name, p.Type, p.Description, p.Color)
}

// Apply merges a partial update into c, normalizing like Create does.
func (c *Category) Apply(p UpdateParams) {
	if p.Name != nil {
		c.Name = capitalize(strings.TrimSpace(*p.Name))
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Color != nil {
		c.Color = strings.TrimSpace(*p.Color)
		if c.Color == "" {
			c.Color = DefaultColor
		}
	}
}

func (c *Category) Validate() error {
	return validate(c.Name, c.Type, c.Description, c.Color)
}

func validate(name string, typ transaction.Category, description, color string) error {
	var fe apperr.FieldErrors
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		fe.Add("name", "is required")
	case n < MinNameLength:
		fe.Add("name", "must be at least 2 characters long")
	case n > MaxNameLength:
		fe.Add("name", "cannot exceed 50 characters")
	}
	if !typ.Valid() {
		fe.Add("type", "must be Revenue or Expense")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		fe.Add("description", "cannot exceed 200 characters")
	}
	if !colorPattern.MatchString(color) {
		fe.Add("color", "must be a hex color code such as #4CAF50")
	}
	return fe.Err()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Defaults is the category set every new user starts with.
func Defaults() []CreateParams {
	return []CreateParams{
		{Name: "Salary", Type: transaction.Revenue, Color: "#4CAF50"},
		{Name: "Investments", Type: transaction.Revenue, Color: "#2196F3"},
		{Name: "Rent", Type: transaction.Expense, Color: "#f44336"},
		{Name: "Utilities", Type: transaction.Expense, Color: "#FF9800"},
		{Name: "Groceries", Type: transaction.Expense, Color: "#9C27B0"},
	}
}
