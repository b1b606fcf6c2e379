// Package reporting builds the monthly, yearly, trend and income/expense
// reports for one user.
package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"findash/internal/domain/transaction"
	"findash/internal/shared/apperr"
)

const (
	DefaultTrendMonths         = 6
	DefaultIncomeExpenseMonths = 12
	MaxMonths                  = 1200
)

var tracer = otel.Tracer("findash/reporting")

type CategoryGroup struct {
	Category     transaction.Category       `json:"category"`
	Total        float64                    `json:"total"`
	Count        int64                      `json:"count"`
	Transactions []*transaction.Transaction `json:"transactions"`
}

type CategoryTotal struct {
	Category transaction.Category `json:"category"`
	Total    float64              `json:"total"`
}

type MonthSummary struct {
	Month       int             `json:"month"`
	Categories  []CategoryTotal `json:"categories"`
	TotalAmount float64         `json:"totalAmount"`
}

type Trend struct {
	Year     int                  `json:"year"`
	Month    int                  `json:"month"`
	Category transaction.Category `json:"category"`
	Total    float64              `json:"total"`
}

// IncomeExpense is one month of the income/expense analysis. Expenses is the
// signed Expense total (<= 0). SavingsRate is nil when Income is zero.
type IncomeExpense struct {
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	Income      float64  `json:"income"`
	Expenses    float64  `json:"expenses"`
	NetIncome   float64  `json:"netIncome"`
	SavingsRate *float64 `json:"savingsRate"`
}

type Engine struct {
	store transaction.Store
	loc   *time.Location
	now   func() time.Time
}

// NewEngine creates a reporting engine. Calendar boundaries are cut in loc,
// which must match the zone the store groups by.
func NewEngine(store transaction.Store, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{store: store, loc: loc, now: time.Now}
}

// Monthly groups the month's transactions by category, ordered by category
// name. Transactions inside a group are newest first.
func (e *Engine) Monthly(ctx context.Context, userID int64, year, month int) ([]CategoryGroup, error) {
	var fe apperr.FieldErrors
	checkYear(&fe, year)
	if month < 1 || month > 12 {
		fe.Add("month", "must be between 1 and 12")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	ctx, span := e.start(ctx, "reporting.Monthly", userID)
	defer span.End()

	filter := windowFilter(monthWindow(year, time.Month(month), e.loc))

	var (
		groups []transaction.Group
		txs    []*transaction.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = e.store.AggregateByUser(gctx, userID, filter, transaction.GroupByCategory)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = e.store.FindByUser(gctx, userID, filter, transaction.Page{})
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	byCategory := make(map[transaction.Category][]*transaction.Transaction)
	for _, tx := range txs {
		byCategory[tx.Category] = append(byCategory[tx.Category], tx)
	}

	out := make([]CategoryGroup, 0, len(groups))
	for _, grp := range groups {
		if grp.Count == 0 {
			continue
		}
		list := byCategory[grp.Category]
		if list == nil {
			list = []*transaction.Transaction{}
		}
		out = append(out, CategoryGroup{
			Category:     grp.Category,
			Total:        grp.Total,
			Count:        grp.Count,
			Transactions: list,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// Yearly sums the year by month and category. Months without transactions
// are omitted; months ascend and categories are ordered by name.
func (e *Engine) Yearly(ctx context.Context, userID int64, year int) ([]MonthSummary, error) {
	var fe apperr.FieldErrors
	checkYear(&fe, year)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	ctx, span := e.start(ctx, "reporting.Yearly", userID)
	defer span.End()

	groups, err := e.store.AggregateByUser(ctx, userID, windowFilter(yearWindow(year, e.loc)),
		transaction.GroupByYear|transaction.GroupByMonth|transaction.GroupByCategory)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	type monthAcc struct {
		categories []CategoryTotal
		total      decimal.Decimal
	}
	months := make(map[int]*monthAcc)
	for _, grp := range groups {
		if grp.Count == 0 || grp.Year != year {
			continue
		}
		acc, ok := months[grp.Month]
		if !ok {
			acc = &monthAcc{}
			months[grp.Month] = acc
		}
		acc.categories = append(acc.categories, CategoryTotal{Category: grp.Category, Total: grp.Total})
		acc.total = acc.total.Add(decimal.NewFromFloat(grp.Total))
	}

	out := make([]MonthSummary, 0, len(months))
	for m, acc := range months {
		sort.Slice(acc.categories, func(i, j int) bool { return acc.categories[i].Category < acc.categories[j].Category })
		out = append(out, MonthSummary{
			Month:       m,
			Categories:  acc.categories,
			TotalAmount: acc.total.InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// Trends sums the trailing window by (year, month, category), ascending by
// year and month, then category.
func (e *Engine) Trends(ctx context.Context, userID int64, months int) ([]Trend, error) {
	if err := checkMonths(months); err != nil {
		return nil, err
	}

	ctx, span := e.start(ctx, "reporting.Trends", userID)
	defer span.End()

	groups, err := e.trailingGroups(ctx, userID, months)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := make([]Trend, 0, len(groups))
	for _, grp := range groups {
		if grp.Count == 0 {
			continue
		}
		out = append(out, Trend{Year: grp.Year, Month: grp.Month, Category: grp.Category, Total: grp.Total})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Category < b.Category
	})
	return out, nil
}

// IncomeExpense reports, per month of the trailing window, income, expenses,
// NetIncome = Income - Expenses and SavingsRate = NetIncome / Income * 100.
func (e *Engine) IncomeExpense(ctx context.Context, userID int64, months int) ([]IncomeExpense, error) {
	if err := checkMonths(months); err != nil {
		return nil, err
	}

	ctx, span := e.start(ctx, "reporting.IncomeExpense", userID)
	defer span.End()

	groups, err := e.trailingGroups(ctx, userID, months)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	type ym struct{ year, month int }
	type acc struct{ income, expenses decimal.Decimal }
	buckets := make(map[ym]*acc)
	for _, grp := range groups {
		if grp.Count == 0 {
			continue
		}
		k := ym{grp.Year, grp.Month}
		a, ok := buckets[k]
		if !ok {
			a = &acc{}
			buckets[k] = a
		}
		switch grp.Category {
		case transaction.Revenue:
			a.income = a.income.Add(decimal.NewFromFloat(grp.Total))
		case transaction.Expense:
			a.expenses = a.expenses.Add(decimal.NewFromFloat(grp.Total))
		}
	}

	out := make([]IncomeExpense, 0, len(buckets))
	for k, a := range buckets {
		out = append(out, analyse(k.year, k.month, a.income, a.expenses))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func analyse(year, month int, income, expenses decimal.Decimal) IncomeExpense {
	net := income.Sub(expenses)
	row := IncomeExpense{
		Year:      year,
		Month:     month,
		Income:    income.InexactFloat64(),
		Expenses:  expenses.InexactFloat64(),
		NetIncome: net.InexactFloat64(),
	}
	if !income.IsZero() {
		rate := net.Div(income).Mul(decimal.NewFromInt(100)).InexactFloat64()
		row.SavingsRate = &rate
	}
	return row
}

func (e *Engine) trailingGroups(ctx context.Context, userID int64, months int) ([]transaction.Group, error) {
	w := trailingWindow(e.now().In(e.loc), months)
	return e.store.AggregateByUser(ctx, userID, windowFilter(w),
		transaction.GroupByYear|transaction.GroupByMonth|transaction.GroupByCategory)
}

func (e *Engine) start(ctx context.Context, name string, userID int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("user.id", userID)))
}

func windowFilter(w Window) transaction.Filter {
	start, end := w.Start, w.End
	return transaction.Filter{From: &start, To: &end}
}

func checkYear(fe *apperr.FieldErrors, year int) {
	if year < 1 || year > 9999 {
		fe.Add("year", "must be between 1 and 9999")
	}
}

func checkMonths(months int) error {
	if months < 1 || months > MaxMonths {
		return apperr.Validation(apperr.FieldError{Field: "months", Message: "must be between 1 and 1200"})
	}
	return nil
}
