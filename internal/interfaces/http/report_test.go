package http

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"findash/internal/domain/export"
	"findash/internal/domain/metrics"
	"findash/internal/domain/reporting"
	"findash/internal/domain/transaction"
)

func TestHandleMetrics(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, 1, scenario()...)

	rr := httptest.NewRecorder()
	app.dashboard.HandleMetrics(rr, newRequest(t, http.MethodGet, "/api/dashboard/metrics", 1, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	m := decode[metrics.DashboardMetrics](t, rr)
	if m.TotalRevenue != 800 || m.TotalExpenses != -120 || m.NetIncome != 920 || m.PendingTransactions != 1 {
		t.Errorf("metrics = %+v", m)
	}
	if len(m.RecentTransactions) != 3 {
		t.Errorf("recent = %d, want 3", len(m.RecentTransactions))
	}
}

func TestHandleMonthly(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, 1, scenario()...)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantGroups int
	}{
		{"january", "?year=2024&month=1", http.StatusOK, 2},
		{"empty month", "?year=2023&month=1", http.StatusOK, 0},
		{"missing month", "?year=2024", http.StatusBadRequest, 0},
		{"non numeric", "?year=abc&month=1", http.StatusBadRequest, 0},
		{"out of range", "?year=2024&month=13", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			app.reports.HandleMonthly(rr, newRequest(t, http.MethodGet, "/api/reports/monthly"+tt.query, 1, nil))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			groups := decode[[]reporting.CategoryGroup](t, rr)
			if len(groups) != tt.wantGroups {
				t.Errorf("got %d groups, want %d", len(groups), tt.wantGroups)
			}
		})
	}
}

func TestHandleYearly_DefaultsToCurrentYear(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, 1, scenario()...)
	app.reports.now = func() time.Time { return day(2024, 6, 1) }

	rr := httptest.NewRecorder()
	app.reports.HandleYearly(rr, newRequest(t, http.MethodGet, "/api/reports/yearly", 1, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	months := decode[[]reporting.MonthSummary](t, rr)
	if len(months) != 2 || months[0].TotalAmount != 380 || months[1].TotalAmount != 300 {
		t.Errorf("months = %+v", months)
	}
}

func TestHandleIncomeExpense_NullSavingsRate(t *testing.T) {
	app := newTestApp(t)
	now := time.Now().UTC()
	app.seed(t, 1, transaction.CreateParams{Date: now.Add(-time.Hour), Amount: 40, Category: transaction.Expense, Status: transaction.Paid})

	rr := httptest.NewRecorder()
	app.reports.HandleIncomeExpense(rr, newRequest(t, http.MethodGet, "/api/reports/income-expense?months=1", 1, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"savingsRate":null`) {
		t.Errorf("body = %s, want savingsRate null", rr.Body.String())
	}
}

func TestHandleTrends_BadMonths(t *testing.T) {
	app := newTestApp(t)

	for _, q := range []string{"?months=x", "?months=0"} {
		rr := httptest.NewRecorder()
		app.reports.HandleTrends(rr, newRequest(t, http.MethodGet, "/api/reports/trends"+q, 1, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rr.Code)
		}
	}
}

func TestHandleExport(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, 1, scenario()...)
	app.export.now = func() time.Time { return day(2024, 5, 7) }

	rr := httptest.NewRecorder()
	app.export.HandleExport(rr, newRequest(t, http.MethodPost, "/api/export/transactions", 1, map[string]any{
		"selectedFields": []string{"date", "amount", "category", "status"},
		"filters":        map[string]string{"category": "Revenue"},
		"filename":       "revenue",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="revenue-2024-05-07.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(rr.Body.String(), "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("read CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	if records[1][0] != "2/1/2024" || records[2][0] != "1/15/2024" {
		t.Errorf("rows not sorted by date descending: %v", records[1:])
	}
}

func TestHandleExport_NoMatches(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, 1, scenario()...)

	rr := httptest.NewRecorder()
	app.export.HandleExport(rr, newRequest(t, http.MethodPost, "/api/export/transactions", 1, map[string]any{
		"selectedFields": []string{"date"},
		"dateRange":      map[string]string{"start": "2020-01-01", "end": "2020-12-31"},
	}))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	body := decode[noMatchResponse](t, rr)
	if body.Success || body.Kind != "no_matching_records" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleExport_UnknownField(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.export.HandleExport(rr, newRequest(t, http.MethodPost, "/api/export/transactions", 1, map[string]any{
		"selectedFields": []string{"password_hash"},
	}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleFields(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.export.HandleFields(rr, newRequest(t, http.MethodGet, "/api/export/fields", 1, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decode[map[string][]export.FieldInfo](t, rr)
	if len(body["fields"]) != 7 {
		t.Errorf("fields = %v", body["fields"])
	}
}
