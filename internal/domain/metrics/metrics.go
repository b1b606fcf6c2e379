// Package metrics computes the dashboard snapshot for one user.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"findash/internal/domain/transaction"
)

// RecentLimit is how many transactions the dashboard lists.
const RecentLimit = 5

var tracer = otel.Tracer("findash/metrics")

type DashboardMetrics struct {
	TotalRevenue        float64                    `json:"totalRevenue"`
	TotalExpenses       float64                    `json:"totalExpenses"`
	NetIncome           float64                    `json:"netIncome"`
	PendingTransactions int64                      `json:"pendingTransactions"`
	RecentTransactions  []*transaction.Transaction `json:"recentTransactions"`
}

type Engine struct {
	store transaction.Store
}

func NewEngine(store transaction.Store) *Engine {
	return &Engine{store: store}
}

// Compute reads totals, the pending count and the recent list concurrently.
// TotalExpenses is the signed Expense sum (<= 0), so NetIncome is
// TotalRevenue - TotalExpenses.
func (e *Engine) Compute(ctx context.Context, userID int64) (*DashboardMetrics, error) {
	ctx, span := tracer.Start(ctx, "metrics.Compute")
	span.SetAttributes(attribute.Int64("user.id", userID))
	defer span.End()

	var (
		groups  []transaction.Group
		pending int64
		recent  []*transaction.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = e.store.AggregateByUser(gctx, userID, transaction.Filter{}, transaction.GroupByCategory)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = e.store.CountByUser(gctx, userID, transaction.Filter{Status: transaction.Pending})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = e.store.FindByUser(gctx, userID, transaction.Filter{}, transaction.Page{Limit: RecentLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	m := &DashboardMetrics{
		PendingTransactions: pending,
		RecentTransactions:  recent,
	}
	for _, grp := range groups {
		switch grp.Category {
		case transaction.Revenue:
			m.TotalRevenue += grp.Total
		case transaction.Expense:
			m.TotalExpenses += grp.Total
		}
	}
	m.NetIncome = m.TotalRevenue - m.TotalExpenses
	if m.RecentTransactions == nil {
		m.RecentTransactions = []*transaction.Transaction{}
	}
	if len(m.RecentTransactions) > RecentLimit {
		m.RecentTransactions = m.RecentTransactions[:RecentLimit]
	}
	return m, nil
}
