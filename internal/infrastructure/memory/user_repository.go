package memory

import (
	"context"
	"sort"

	"findash/internal/domain/user"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.emailTaken(0, params.Email) {
		return nil, user.ErrEmailTaken
	}

	now := r.db.now()
	r.db.lastUserID++
	u := &user.User{
		ID:           r.db.lastUserID,
		Email:        params.Email,
		Name:         params.Name,
		Profile:      params.Profile,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.db.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]*user.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.users[u.ID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if r.emailTaken(u.ID, u.Email) {
		return nil, user.ErrEmailTaken
	}

	existing.Email = u.Email
	existing.Name = u.Name
	existing.Profile = u.Profile
	existing.PasswordHash = u.PasswordHash
	existing.UpdatedAt = r.db.now()
	cp := *existing
	return &cp, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}

func (r *UserRepository) emailTaken(exceptID int64, email string) bool {
	for id, u := range r.db.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}
