package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"findash/internal/domain/transaction"
)

func TestHandleTransactions_List(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, 1, scenario()...)
	app.seed(t, 2, transaction.CreateParams{Date: day(2024, 1, 1), Amount: 1, Category: transaction.Revenue, Status: transaction.Paid})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  int
		wantTotal  int64
		wantPages  int64
	}{
		{"all", "", http.StatusOK, 3, 3, 1},
		{"paged", "?page=2&limit=2", http.StatusOK, 1, 3, 2},
		{"category filter", "?category=Revenue", http.StatusOK, 2, 2, 1},
		{"date range", "?startDate=2024-01-16&endDate=2024-01-31", http.StatusOK, 1, 1, 1},
		{"bad page", "?page=abc", http.StatusBadRequest, 0, 0, 0},
		{"bad status", "?status=Late", http.StatusBadRequest, 0, 0, 0},
		{"bad date", "?startDate=yesterday&endDate=2024-01-01", http.StatusBadRequest, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			app.transactions.HandleTransactions(rr, newRequest(t, http.MethodGet, "/api/transactions/"+tt.query, 1, nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			res := decode[transaction.ListResult](t, rr)
			if len(res.Transactions) != tt.wantCount {
				t.Errorf("got %d transactions, want %d", len(res.Transactions), tt.wantCount)
			}
			if res.Pagination.Total != tt.wantTotal || res.Pagination.Pages != tt.wantPages {
				t.Errorf("pagination = %+v, want total %d pages %d", res.Pagination, tt.wantTotal, tt.wantPages)
			}
		})
	}
}

func TestHandleTransactions_CreateNormalizesSign(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodPost, "/api/transactions/", 1, map[string]any{
		"date":     "2024-03-01",
		"amount":   75.5,
		"category": "Expense",
		"status":   "Paid",
	}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	tx := decode[transaction.Transaction](t, rr)
	if tx.Amount != -75.5 {
		t.Errorf("Amount = %v, want -75.5", tx.Amount)
	}
	if tx.UserID != 1 || tx.UserProfile != ownerProfile {
		t.Errorf("owner = %d/%q", tx.UserID, tx.UserProfile)
	}
}

func TestHandleTransactions_CreateValidation(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodPost, "/api/transactions/", 1, map[string]any{
		"amount":   10,
		"category": "Gift",
		"status":   "Paid",
	}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	body := decode[ErrorResponse](t, rr)
	if body.Kind != "validation" || len(body.Details) == 0 {
		t.Errorf("body = %+v, want validation details", body)
	}
}

func TestHandleTransactionByID(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, 1, scenario()[0])
	txs, _ := app.txRepo.FindByUser(t.Context(), 1, transaction.Filter{}, transaction.Page{})
	id := txs[0].ID

	get := func(userID int64) *httptest.ResponseRecorder {
		req := newRequest(t, http.MethodGet, "/api/transactions/"+id, userID, nil)
		req.SetPathValue("id", id)
		rr := httptest.NewRecorder()
		app.transactions.HandleTransactionByID(rr, req)
		return rr
	}

	if rr := get(1); rr.Code != http.StatusOK {
		t.Fatalf("owner GET status = %d", rr.Code)
	}
	if rr := get(2); rr.Code != http.StatusNotFound {
		t.Errorf("other user GET status = %d, want 404", rr.Code)
	}

	req := newRequest(t, http.MethodPut, "/api/transactions/"+id, 1, map[string]any{"category": "Expense"})
	req.SetPathValue("id", id)
	rr := httptest.NewRecorder()
	app.transactions.HandleTransactionByID(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rr.Code, rr.Body.String())
	}
	if tx := decode[transaction.Transaction](t, rr); tx.Amount != -500 {
		t.Errorf("Amount after category change = %v, want -500", tx.Amount)
	}

	req = newRequest(t, http.MethodDelete, "/api/transactions/"+id, 1, nil)
	req.SetPathValue("id", id)
	rr = httptest.NewRecorder()
	app.transactions.HandleTransactionByID(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rr.Code)
	}
	if rr := get(1); rr.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rr.Code)
	}
}

func TestHandleTransactions_Unauthenticated(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodGet, "/api/transactions/", 0, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestHandleTransactions_MethodNotAllowed(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodPatch, "/api/transactions/", 1, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestHandleTransactions_CreateUsesCallerProfile(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodPost, "/api/transactions/", 1, map[string]any{
		"amount":       10,
		"category":     "Revenue",
		"status":       "Paid",
		"user_profile": "someone-elses-avatar.png",
	}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if tx := decode[transaction.Transaction](t, rr); tx.UserProfile != ownerProfile {
		t.Errorf("UserProfile = %q, want the caller's %q", tx.UserProfile, ownerProfile)
	}
}

func TestHandleTransactions_CreateUnknownCaller(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodPost, "/api/transactions/", 99, map[string]any{
		"amount": 10, "category": "Revenue", "status": "Paid",
	}))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHandleTransactions_AmountRules(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		wantStatus int
		wantAmount float64
	}{
		{"rounded to cents", 12.345, http.StatusCreated, 12.35},
		{"too large", 1e13, http.StatusBadRequest, 0},
		{"rounds to zero", 0.004, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			rr := httptest.NewRecorder()
			app.transactions.HandleTransactions(rr, newRequest(t, http.MethodPost, "/api/transactions/", 1, map[string]any{
				"amount": tt.amount, "category": "Revenue", "status": "Paid",
			}))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				body := decode[ErrorResponse](t, rr)
				if len(body.Details) != 1 || body.Details[0].Field != "amount" {
					t.Errorf("details = %+v, want amount", body.Details)
				}
				return
			}
			if tx := decode[transaction.Transaction](t, rr); tx.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", tx.Amount, tt.wantAmount)
			}
		})
	}
}

func TestHandleTransactions_ListPageTooLarge(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodGet, "/api/transactions/?page=9223372036854775807&limit=100", 1, nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body.String())
	}
	if body := decode[ErrorResponse](t, rr); len(body.Details) != 1 || body.Details[0].Field != "page" {
		t.Errorf("details = %+v, want page", body.Details)
	}
}
