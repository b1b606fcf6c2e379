package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"findash/internal/domain/category"
)

type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, userID int64, params category.CreateParams) (*category.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.duplicate(userID, "", params.Name, string(params.Type)) {
		return nil, category.ErrDuplicateCategory
	}

	now := r.db.now()
	c := &category.Category{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        params.Name,
		Type:        params.Type,
		Description: params.Description,
		Color:       params.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.db.categories[c.ID] = c
	cp := *c
	return &cp, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID int64, id string) (*category.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.categories[id]
	if !ok || c.UserID != userID {
		return nil, category.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepository) ListByUserID(ctx context.Context, userID int64) ([]*category.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*category.Category
	for _, c := range r.db.categories {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) (*category.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.categories[c.ID]
	if !ok || existing.UserID != c.UserID {
		return nil, category.ErrCategoryNotFound
	}
	if r.duplicate(c.UserID, c.ID, c.Name, string(c.Type)) {
		return nil, category.ErrDuplicateCategory
	}

	existing.Name = c.Name
	existing.Type = c.Type
	existing.Description = c.Description
	existing.Color = c.Color
	existing.UpdatedAt = r.db.now()
	cp := *existing
	return &cp, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID int64, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.categories[id]
	if !ok || c.UserID != userID {
		return category.ErrCategoryNotFound
	}
	delete(r.db.categories, id)
	return nil
}

func (r *CategoryRepository) DeleteByUser(ctx context.Context, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, c := range r.db.categories {
		if c.UserID == userID {
			delete(r.db.categories, id)
		}
	}
	return nil
}

// duplicate must be called with the lock held.
func (r *CategoryRepository) duplicate(userID int64, exceptID, name, typ string) bool {
	for id, c := range r.db.categories {
		if id != exceptID && c.UserID == userID && c.Name == name && string(c.Type) == typ {
			return true
		}
	}
	return false
}
