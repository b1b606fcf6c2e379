package transaction

import (
	"errors"
	"math"
	"testing"
	"time"

	"findash/internal/shared/apperr"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		amount   float64
		want     float64
	}{
		{"expense positive", Expense, 120, -120},
		{"expense negative", Expense, -120, -120},
		{"revenue negative", Revenue, -500, 500},
		{"revenue positive", Revenue, 500, 500},
		{"unknown category keeps sign", Category("Other"), -3, -3},
		{"revenue rounds half up to cents", Revenue, 12.345, 12.35},
		{"expense rounds to cents", Expense, 19.999, -20},
		{"sub-cent rounds to zero", Revenue, 0.004, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAmount(tt.category, tt.amount); got != tt.want {
				t.Errorf("NormalizeAmount(%s, %v) = %v, want %v", tt.category, tt.amount, got, tt.want)
			}
		})
	}
}

func TestNormalizeAmount_SignInvariant(t *testing.T) {
	amounts := []float64{-1000.5, -1, -0.01, 0.01, 1, 42.42, 1e9}
	for _, a := range amounts {
		if got := NormalizeAmount(Expense, a); got > 0 {
			t.Errorf("Expense amount %v normalized to %v, want <= 0", a, got)
		}
		if got := NormalizeAmount(Revenue, a); got < 0 {
			t.Errorf("Revenue amount %v normalized to %v, want >= 0", a, got)
		}
	}
}

func TestCreateParams_Normalize(t *testing.T) {
	empty := ""
	p := CreateParams{
		Amount:      75,
		Category:    Expense,
		FromTo:      "  Landlord  ",
		UserProfile: " avatar.png ",
		CategoryID:  &empty,
	}.Normalize()

	if p.Amount != -75 {
		t.Errorf("Amount = %v, want -75", p.Amount)
	}
	if p.FromTo != "Landlord" {
		t.Errorf("FromTo = %q, want %q", p.FromTo, "Landlord")
	}
	if p.UserProfile != "avatar.png" {
		t.Errorf("UserProfile = %q, want %q", p.UserProfile, "avatar.png")
	}
	if p.CategoryID != nil {
		t.Errorf("CategoryID = %q, want nil", *p.CategoryID)
	}
}

func TestCreateParams_Validate(t *testing.T) {
	valid := CreateParams{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:      500,
		Category:    Revenue,
		Status:      Paid,
		UserID:      1,
		UserProfile: DefaultUserProfile,
	}

	long := make([]byte, MaxFromToLength+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name       string
		mutate     func(p *CreateParams)
		wantFields []string
	}{
		{"valid", func(p *CreateParams) {}, nil},
		{"zero amount", func(p *CreateParams) { p.Amount = 0 }, []string{"amount"}},
		{"NaN amount", func(p *CreateParams) { p.Amount = math.NaN() }, []string{"amount"}},
		{"infinite amount", func(p *CreateParams) { p.Amount = math.Inf(1) }, []string{"amount"}},
		{"amount at bound", func(p *CreateParams) { p.Amount = MaxAmount }, []string{"amount"}},
		{"negative amount over bound", func(p *CreateParams) { p.Amount = -1e13 }, []string{"amount"}},
		{"amount just under bound", func(p *CreateParams) { p.Amount = 999_999_999_999.99 }, nil},
		{"bad category", func(p *CreateParams) { p.Category = "Income" }, []string{"category"}},
		{"bad status", func(p *CreateParams) { p.Status = "Done" }, []string{"status"}},
		{"missing date", func(p *CreateParams) { p.Date = time.Time{} }, []string{"date"}},
		{"missing profile", func(p *CreateParams) { p.UserProfile = "" }, []string{"user_profile"}},
		{"long fromTo", func(p *CreateParams) { p.FromTo = string(long) }, []string{"fromTo"}},
		{
			"several fields",
			func(p *CreateParams) { p.Amount = 0; p.Status = "" },
			[]string{"amount", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()

			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("Validate() error = %v, want validation error", err)
			}
			if len(appErr.Fields) != len(tt.wantFields) {
				t.Fatalf("Fields = %+v, want %v", appErr.Fields, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if appErr.Fields[i].Field != f {
					t.Errorf("Fields[%d] = %q, want %q", i, appErr.Fields[i].Field, f)
				}
			}
		})
	}
}

func TestTransaction_Apply(t *testing.T) {
	catID := "cat-1"
	tx := &Transaction{
		Amount:     500,
		Category:   Revenue,
		Status:     Pending,
		CategoryID: &catID,
	}

	expense := Expense
	paid := Paid
	clear := ""
	tx.Apply(UpdateParams{Category: &expense, Status: &paid, CategoryID: &clear})

	if tx.Amount != -500 {
		t.Errorf("Amount = %v, want -500 after switching to Expense", tx.Amount)
	}
	if tx.Status != Paid {
		t.Errorf("Status = %q, want Paid", tx.Status)
	}
	if tx.CategoryID != nil {
		t.Errorf("CategoryID = %q, want nil", *tx.CategoryID)
	}

	amount := 80.0
	tx.Apply(UpdateParams{Amount: &amount})
	if tx.Amount != -80 {
		t.Errorf("Amount = %v, want -80", tx.Amount)
	}
}

func TestGroupKey_Has(t *testing.T) {
	key := GroupByYear | GroupByMonth
	if !key.Has(GroupByMonth) || !key.Has(GroupByYear) {
		t.Error("expected year and month dimensions")
	}
	if key.Has(GroupByCategory) {
		t.Error("unexpected category dimension")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in           string
		want         time.Time
		wantDateOnly bool
		wantErr      bool
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true, false},
		{" 2024-03-05 ", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true, false},
		{"2024-03-05T10:30:00Z", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), false, false},
		{"2024-03-05T10:30:00+02:00", time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC), false, false},
		{"03/05/2024", time.Time{}, false, true},
		{"", time.Time{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, dateOnly, err := ParseDate(tt.in, time.UTC)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !got.Equal(tt.want) || dateOnly != tt.wantDateOnly {
				t.Errorf("ParseDate(%q) = %v, %v; want %v, %v", tt.in, got, dateOnly, tt.want, tt.wantDateOnly)
			}
		})
	}
}
