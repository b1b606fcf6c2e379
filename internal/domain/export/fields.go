package export

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/domain/transaction"
)

// Field names one exportable transaction attribute.
type Field string

const (
	FieldDate        Field = "date"
	FieldAmount      Field = "amount"
	FieldCategory    Field = "category"
	FieldStatus      Field = "status"
	FieldUserID      Field = "user_id"
	FieldUserProfile Field = "user_profile"
	FieldID          Field = "id"
)

// FieldInfo describes a field in the export catalog.
type FieldInfo struct {
	Key             Field  `json:"key"`
	Label           string `json:"label"`
	Description     string `json:"description"`
	DefaultSelected bool   `json:"defaultSelected"`
}

var catalog = []FieldInfo{
	{Key: FieldDate, Label: "Date", Description: "Transaction date", DefaultSelected: true},
	{Key: FieldAmount, Label: "Amount", Description: "Transaction amount", DefaultSelected: true},
	{Key: FieldCategory, Label: "Category", Description: "Revenue or Expense", DefaultSelected: true},
	{Key: FieldStatus, Label: "Status", Description: "Paid or Pending", DefaultSelected: true},
	{Key: FieldUserID, Label: "User ID", Description: "Associated user identifier"},
	{Key: FieldUserProfile, Label: "User Profile", Description: "User profile image"},
	{Key: FieldID, Label: "Transaction ID", Description: "Unique transaction identifier"},
}

// Fields returns the export catalog in display order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, len(catalog))
	copy(out, catalog)
	return out
}

// DefaultFields returns the keys selected when the caller picks none.
func DefaultFields() []Field {
	var out []Field
	for _, f := range catalog {
		if f.DefaultSelected {
			out = append(out, f.Key)
		}
	}
	return out
}

func (f Field) info() (FieldInfo, bool) {
	for _, fi := range catalog {
		if fi.Key == f {
			return fi, true
		}
	}
	return FieldInfo{}, false
}

// formatter renders one field of a transaction as a cell.
type formatter func(t *transaction.Transaction) string

func (p *Projector) formatter(f Field) formatter {
	switch f {
	case FieldDate:
		return func(t *transaction.Transaction) string {
			return t.Date.In(p.loc).Format(p.dateLayout)
		}
	case FieldAmount:
		return func(t *transaction.Transaction) string {
			return decimal.NewFromFloat(t.Amount).StringFixed(2)
		}
	case FieldCategory:
		return func(t *transaction.Transaction) string { return string(t.Category) }
	case FieldStatus:
		return func(t *transaction.Transaction) string { return string(t.Status) }
	case FieldUserID:
		return func(t *transaction.Transaction) string { return strconv.FormatInt(t.UserID, 10) }
	case FieldUserProfile:
		return func(t *transaction.Transaction) string { return t.UserProfile }
	case FieldID:
		return func(t *transaction.Transaction) string { return t.ID }
	}
	return nil
}

// parseBound reads a date range bound. A plain date used as the upper bound
// covers the whole day.
func parseBound(s string, loc *time.Location, upper bool) (time.Time, error) {
	t, dateOnly, err := transaction.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if upper && dateOnly {
		t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return t, nil
}
