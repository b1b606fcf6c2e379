package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"findash/internal/domain/transaction"
)

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	r.db.seq++
	rec := &txRecord{
		seq: r.db.seq,
		tx: transaction.Transaction{
			ID:          uuid.NewString(),
			Date:        params.Date,
			Amount:      params.Amount,
			Category:    params.Category,
			Status:      params.Status,
			UserID:      params.UserID,
			UserProfile: params.UserProfile,
			CategoryID:  copyString(params.CategoryID),
			FromTo:      params.FromTo,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	r.db.transactions[rec.tx.ID] = rec
	return cloneTx(&rec.tx), nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID int64, id string) (*transaction.Transaction, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rec, ok := r.db.transactions[id]
	if !ok || rec.tx.UserID != userID {
		return nil, transaction.ErrTransactionNotFound
	}
	return cloneTx(&rec.tx), nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) (*transaction.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.transactions[t.ID]
	if !ok || rec.tx.UserID != t.UserID {
		return nil, transaction.ErrTransactionNotFound
	}
	rec.tx.Date = t.Date
	rec.tx.Amount = t.Amount
	rec.tx.Category = t.Category
	rec.tx.Status = t.Status
	rec.tx.CategoryID = copyString(t.CategoryID)
	rec.tx.FromTo = t.FromTo
	rec.tx.UpdatedAt = r.db.now()
	return cloneTx(&rec.tx), nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID int64, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.transactions[id]
	if !ok || rec.tx.UserID != userID {
		return transaction.ErrTransactionNotFound
	}
	delete(r.db.transactions, id)
	return nil
}

func (r *TransactionRepository) ClearCategory(ctx context.Context, userID int64, categoryID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for _, rec := range r.db.transactions {
		if rec.tx.UserID == userID && rec.tx.CategoryID != nil && *rec.tx.CategoryID == categoryID {
			rec.tx.CategoryID = nil
			rec.tx.UpdatedAt = r.db.now()
			n++
		}
	}
	return n, nil
}

func (r *TransactionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, rec := range r.db.transactions {
		if rec.tx.UserID == userID {
			delete(r.db.transactions, id)
		}
	}
	return nil
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID int64, f transaction.Filter, p transaction.Page) ([]*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs := r.matching(userID, f)

	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].tx.Date.Equal(recs[j].tx.Date) {
			return recs[i].tx.Date.After(recs[j].tx.Date)
		}
		return recs[i].seq < recs[j].seq
	})

	if p.Offset > 0 {
		if p.Offset >= len(recs) {
			recs = nil
		} else {
			recs = recs[p.Offset:]
		}
	}
	if p.Limit > 0 && len(recs) > p.Limit {
		recs = recs[:p.Limit]
	}

	out := make([]*transaction.Transaction, 0, len(recs))
	for i := range recs {
		out = append(out, &recs[i].tx)
	}
	return out, nil
}

func (r *TransactionRepository) CountByUser(ctx context.Context, userID int64, f transaction.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(r.matching(userID, f))), nil
}

type groupKey struct {
	category transaction.Category
	year     int
	month    int
}

func (r *TransactionRepository) AggregateByUser(ctx context.Context, userID int64, f transaction.Filter, key transaction.GroupKey) ([]transaction.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type acc struct {
		total decimal.Decimal
		count int64
	}
	buckets := make(map[groupKey]*acc)

	for _, rec := range r.matching(userID, f) {
		var k groupKey
		local := rec.tx.Date.In(r.db.loc)
		if key.Has(transaction.GroupByCategory) {
			k.category = rec.tx.Category
		}
		if key.Has(transaction.GroupByYear) {
			k.year = local.Year()
		}
		if key.Has(transaction.GroupByMonth) {
			k.month = int(local.Month())
		}
		a, ok := buckets[k]
		if !ok {
			a = &acc{}
			buckets[k] = a
		}
		a.total = a.total.Add(decimal.NewFromFloat(rec.tx.Amount))
		a.count++
	}

	groups := make([]transaction.Group, 0, len(buckets))
	for k, a := range buckets {
		groups = append(groups, transaction.Group{
			Category: k.category,
			Year:     k.year,
			Month:    k.month,
			Total:    a.total.InexactFloat64(),
			Count:    a.count,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Category < b.Category
	})
	return groups, nil
}

// matching returns copies so callers can work on them without the lock.
func (r *TransactionRepository) matching(userID int64, f transaction.Filter) []txRecord {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var out []txRecord
	for _, rec := range r.db.transactions {
		t := &rec.tx
		if t.UserID != userID {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(string(t.Category)), search) &&
			!strings.Contains(strings.ToLower(string(t.Status)), search) {
			continue
		}
		if f.From != nil && t.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && t.Date.After(*f.To) {
			continue
		}
		out = append(out, txRecord{seq: rec.seq, tx: *cloneTx(t)})
	}
	return out
}

func cloneTx(t *transaction.Transaction) *transaction.Transaction {
	cp := *t
	cp.CategoryID = copyString(t.CategoryID)
	return &cp
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
