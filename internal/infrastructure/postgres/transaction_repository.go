package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"findash/internal/domain/transaction"
)

const transactionColumns = `id, date, amount, category, status, user_id, user_profile,
	category_id, from_to, created_at, updated_at`

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var categoryID sql.NullString
	err := row.Scan(
		&t.ID, &t.Date, &t.Amount, &t.Category, &t.Status, &t.UserID, &t.UserProfile,
		&categoryID, &t.FromTo, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.String
	}
	return &t, nil
}

func nullableUUID(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO transactions (id, date, amount, category, status, user_id, user_profile, category_id, from_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + transactionColumns

	t, err := scanTransaction(r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.Date, params.Amount, params.Category, params.Status,
		params.UserID, params.UserProfile, nullableUUID(params.CategoryID), params.FromTo,
	))
	if err != nil {
		return nil, classify("failed to create transaction", err)
	}
	return t, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID int64, id string) (*transaction.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, transaction.ErrTransactionNotFound
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, classify("failed to get transaction", err)
	}
	return t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions
		SET date = $1,
		    amount = $2,
		    category = $3,
		    status = $4,
		    category_id = $5,
		    from_to = $6,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $7 AND user_id = $8
		RETURNING ` + transactionColumns

	updated, err := scanTransaction(r.db.QueryRowContext(
		ctx, query,
		t.Date, t.Amount, t.Category, t.Status, nullableUUID(t.CategoryID), t.FromTo,
		t.ID, t.UserID,
	))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, classify("failed to update transaction", err)
	}
	return updated, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID int64, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return transaction.ErrTransactionNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return classify("failed to delete transaction", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return transaction.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) ClearCategory(ctx context.Context, userID int64, categoryID string) (int64, error) {
	if _, err := uuid.Parse(categoryID); err != nil {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND category_id = $2
	`, userID, categoryID)
	if err != nil {
		return 0, classify("failed to clear transaction category", err)
	}
	return result.RowsAffected()
}

func (r *TransactionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
		return classify("failed to delete user transactions", err)
	}
	return nil
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID int64, f transaction.Filter, p transaction.Page) ([]*transaction.Transaction, error) {
	where, args := filterClause(userID, f)
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + where + ` ORDER BY date DESC, seq ASC`
	if p.Limit > 0 {
		args = append(args, p.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if p.Offset > 0 {
		args = append(args, p.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to list transactions", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("error iterating transactions", err)
	}
	return txs, nil
}

func (r *TransactionRepository) CountByUser(ctx context.Context, userID int64, f transaction.Filter) (int64, error) {
	where, args := filterClause(userID, f)

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&n); err != nil {
		return 0, classify("failed to count transactions", err)
	}
	return n, nil
}

func (r *TransactionRepository) AggregateByUser(ctx context.Context, userID int64, f transaction.Filter, key transaction.GroupKey) ([]transaction.Group, error) {
	where, args := filterClause(userID, f)
	query, args := aggregateQuery(where, args, key, r.db.zone)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to aggregate transactions", err)
	}
	defer rows.Close()

	groups := []transaction.Group{}
	for rows.Next() {
		var g transaction.Group
		if err := rows.Scan(&g.Category, &g.Year, &g.Month, &g.Total, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("error iterating groups", err)
	}
	return groups, nil
}

// aggregateQuery selects (category, year, month, total, count) for every
// key. Dimensions outside key are constant so the scan shape never changes.
func aggregateQuery(where string, args []any, key transaction.GroupKey, zone string) (string, []any) {
	category, year, month := "''", "0", "0"
	var groupBy []string

	if key.Has(transaction.GroupByCategory) {
		category = "category"
		groupBy = append(groupBy, "1")
	}
	if key.Has(transaction.GroupByYear) || key.Has(transaction.GroupByMonth) {
		args = append(args, zone)
		local := fmt.Sprintf("(date AT TIME ZONE $%d)", len(args))
		if key.Has(transaction.GroupByYear) {
			year = "EXTRACT(YEAR FROM " + local + ")::int"
			groupBy = append(groupBy, "2")
		}
		if key.Has(transaction.GroupByMonth) {
			month = "EXTRACT(MONTH FROM " + local + ")::int"
			groupBy = append(groupBy, "3")
		}
	}

	query := `SELECT ` + category + `, ` + year + `, ` + month + `, COALESCE(SUM(amount), 0), COUNT(*)
		FROM transactions
		WHERE ` + where
	if len(groupBy) > 0 {
		query += ` GROUP BY ` + strings.Join(groupBy, ", ")
		query += ` ORDER BY 2, 3, 1`
	} else {
		query += ` HAVING COUNT(*) > 0`
	}
	return query, args
}

// filterClause renders f as a WHERE predicate with positional arguments,
// always scoped to userID.
func filterClause(userID int64, f transaction.Filter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(category ILIKE $%d OR status ILIKE $%d)", n, n))
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date <= $%d", *f.To)
	}
	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
