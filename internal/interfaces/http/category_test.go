package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"findash/internal/domain/category"
	"findash/internal/domain/transaction"
)

func TestCategories_CRUDAndCascade(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.categories.HandleCategories(rr, newRequest(t, http.MethodPost, "/api/categories/", 1, map[string]any{
		"name": "groceries", "type": "Expense", "color": "#00ff00",
	}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	c := decode[category.Category](t, rr)

	rr = httptest.NewRecorder()
	app.categories.HandleCategories(rr, newRequest(t, http.MethodPost, "/api/categories/", 1, map[string]any{
		"name": "Groceries", "type": "Expense",
	}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("duplicate status = %d, want 400", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodPost, "/api/transactions/", 1, map[string]any{
		"amount": 20, "category": "Expense", "status": "Paid", "categoryId": c.ID,
	}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("linked transaction status = %d: %s", rr.Code, rr.Body.String())
	}
	tx := decode[transaction.Transaction](t, rr)

	rr = httptest.NewRecorder()
	app.transactions.HandleTransactions(rr, newRequest(t, http.MethodPost, "/api/transactions/", 1, map[string]any{
		"amount": 20, "category": "Revenue", "status": "Paid", "categoryId": c.ID,
	}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("type mismatch status = %d, want 400", rr.Code)
	}

	req := newRequest(t, http.MethodDelete, "/api/categories/"+c.ID, 1, nil)
	req.SetPathValue("id", c.ID)
	rr = httptest.NewRecorder()
	app.categories.HandleCategoryByID(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}

	got, err := app.txRepo.GetByID(t.Context(), 1, tx.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.CategoryID != nil {
		t.Errorf("CategoryID = %v, want nil after category delete", *got.CategoryID)
	}
}

func TestCategories_UpdateNotFound(t *testing.T) {
	app := newTestApp(t)

	req := newRequest(t, http.MethodPut, "/api/categories/missing", 1, map[string]any{"name": "Other"})
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()
	app.categories.HandleCategoryByID(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
