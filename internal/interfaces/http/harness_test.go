package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"findash/internal/domain/category"
	"findash/internal/domain/export"
	"findash/internal/domain/metrics"
	"findash/internal/domain/reporting"
	"findash/internal/domain/transaction"
	"findash/internal/domain/user"
	"findash/internal/infrastructure/memory"
	"findash/internal/shared/auth"
	"findash/internal/shared/middleware"
)

const ownerProfile = "owner-avatar.png"

// testApp wires every handler to one in-memory store.
type testApp struct {
	txRepo       *memory.TransactionRepository
	users        *user.Service
	transactions *TransactionHandler
	categories   *CategoryHandler
	profile      *ProfileHandler
	auth         *AuthHandler
	dashboard    *DashboardHandler
	reports      *ReportHandler
	export       *ExportHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := memory.NewDB(time.UTC)
	txRepo := memory.NewTransactionRepository(db)
	catRepo := memory.NewCategoryRepository(db)
	userRepo := memory.NewUserRepository(db)

	categories := category.NewService(catRepo, txRepo)
	transactions := transaction.NewService(txRepo, categories)
	users := user.NewService(userRepo, auth.NewJWT("test-secret-key-123456", time.Hour), categories, txRepo, catRepo)

	// User 1 owns the seeded data; registered users start at 2.
	owner, err := userRepo.Create(context.Background(), user.CreateUserParams{
		Email: "owner@example.com", Name: "Owner", Profile: ownerProfile, PasswordHash: "unused",
	})
	if err != nil || owner.ID != 1 {
		t.Fatalf("create owner: id %v, err %v", owner, err)
	}

	return &testApp{
		txRepo:       txRepo,
		users:        users,
		transactions: NewTransactionHandler(transactions, users, time.UTC),
		categories:   NewCategoryHandler(categories),
		profile:      NewProfileHandler(users),
		auth:         NewAuthHandler(users, time.Hour),
		dashboard:    NewDashboardHandler(metrics.NewEngine(txRepo)),
		reports:      NewReportHandler(reporting.NewEngine(txRepo, time.UTC)),
		export:       NewExportHandler(export.NewProjector(txRepo, time.UTC, "")),
	}
}

func (a *testApp) seed(t *testing.T, userID int64, params ...transaction.CreateParams) {
	t.Helper()
	for _, p := range params {
		p.UserID = userID
		p.UserProfile = transaction.DefaultUserProfile
		if _, err := a.txRepo.Create(context.Background(), p.Normalize()); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scenario() []transaction.CreateParams {
	return []transaction.CreateParams{
		{Date: day(2024, 1, 15), Amount: 500, Category: transaction.Revenue, Status: transaction.Paid},
		{Date: day(2024, 1, 20), Amount: 120, Category: transaction.Expense, Status: transaction.Pending},
		{Date: day(2024, 2, 1), Amount: 300, Category: transaction.Revenue, Status: transaction.Paid},
	}
}

// newRequest builds a request as middleware.Auth would hand it over. A zero
// userID leaves the request anonymous.
func newRequest(t *testing.T, method, target string, userID int64, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if userID != 0 {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	}
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}
