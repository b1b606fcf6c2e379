package memory

import (
	"context"
	"testing"
	"time"

	"findash/internal/domain/user"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(NewDB(time.UTC))
	ctx := context.Background()

	a, err := repo.Create(ctx, user.CreateUserParams{Email: "a@example.com", Name: "A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	b, _ := repo.Create(ctx, user.CreateUserParams{Email: "b@example.com", Name: "B"})
	if a.ID == b.ID {
		t.Fatal("Create() reused an id")
	}

	if _, err := repo.Create(ctx, user.CreateUserParams{Email: "a@example.com"}); err != user.ErrEmailTaken {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}

	b.Email = "a@example.com"
	if _, err := repo.Update(ctx, b); err != user.ErrEmailTaken {
		t.Errorf("Update() to taken email error = %v, want ErrEmailTaken", err)
	}

	got, err := repo.GetByEmail(ctx, "a@example.com")
	if err != nil || got.ID != a.ID {
		t.Errorf("GetByEmail() = %v, %v", got, err)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, a.ID); err != user.ErrUserNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrUserNotFound", err)
	}

	users, _ := repo.List(ctx)
	if len(users) != 1 {
		t.Errorf("List() len = %d, want 1", len(users))
	}
}
