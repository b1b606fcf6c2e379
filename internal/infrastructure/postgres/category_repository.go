package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"findash/internal/domain/category"
)

const categoryColumns = `id, user_id, name, type, description, color, created_at, updated_at`

type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row rowScanner) (*category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Description, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, userID int64, params category.CreateParams) (*category.Category, error) {
	query := `
		INSERT INTO categories (id, user_id, name, type, description, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), userID, params.Name, params.Type, params.Description, params.Color,
	))
	if isUniqueViolation(err) {
		return nil, category.ErrDuplicateCategory
	}
	if err != nil {
		return nil, classify("failed to create category", err)
	}
	return c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID int64, id string) (*category.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, category.ErrCategoryNotFound
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND user_id = $2`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, category.ErrCategoryNotFound
	}
	if err != nil {
		return nil, classify("failed to get category", err)
	}
	return c, nil
}

func (r *CategoryRepository) ListByUserID(ctx context.Context, userID int64) ([]*category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 ORDER BY name ASC, type ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, classify("failed to list categories", err)
	}
	defer rows.Close()

	categories := []*category.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("error iterating categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) (*category.Category, error) {
	query := `
		UPDATE categories
		SET name = $1,
		    type = $2,
		    description = $3,
		    color = $4,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $5 AND user_id = $6
		RETURNING ` + categoryColumns

	updated, err := scanCategory(r.db.QueryRowContext(
		ctx, query,
		c.Name, c.Type, c.Description, c.Color, c.ID, c.UserID,
	))
	if err == sql.ErrNoRows {
		return nil, category.ErrCategoryNotFound
	}
	if isUniqueViolation(err) {
		return nil, category.ErrDuplicateCategory
	}
	if err != nil {
		return nil, classify("failed to update category", err)
	}
	return updated, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID int64, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return category.ErrCategoryNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return classify("failed to delete category", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE user_id = $1`, userID); err != nil {
		return classify("failed to delete user categories", err)
	}
	return nil
}
