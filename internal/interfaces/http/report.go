package http

import (
	"net/http"
	"time"

	"findash/internal/domain/reporting"
	"findash/internal/shared/apperr"
)

type ReportHandler struct {
	engine *reporting.Engine
	now    func() time.Time
}

func NewReportHandler(engine *reporting.Engine) *ReportHandler {
	return &ReportHandler{engine: engine, now: time.Now}
}

// HandleMonthly requires both year and month.
func (h *ReportHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(userID int64, fe *apperr.FieldErrors) (any, error) {
		q := r.URL.Query()
		if q.Get("year") == "" {
			fe.Add("year", "is required")
		}
		if q.Get("month") == "" {
			fe.Add("month", "is required")
		}
		year := intParam(r, fe, "year", 0)
		month := intParam(r, fe, "month", 0)
		if err := fe.Err(); err != nil {
			return nil, err
		}
		return h.engine.Monthly(r.Context(), userID, year, month)
	})
}

// HandleYearly defaults to the current year.
func (h *ReportHandler) HandleYearly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(userID int64, fe *apperr.FieldErrors) (any, error) {
		year := intParam(r, fe, "year", h.now().Year())
		if err := fe.Err(); err != nil {
			return nil, err
		}
		return h.engine.Yearly(r.Context(), userID, year)
	})
}

func (h *ReportHandler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(userID int64, fe *apperr.FieldErrors) (any, error) {
		months := intParam(r, fe, "months", reporting.DefaultTrendMonths)
		if err := fe.Err(); err != nil {
			return nil, err
		}
		return h.engine.Trends(r.Context(), userID, months)
	})
}

func (h *ReportHandler) HandleIncomeExpense(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(userID int64, fe *apperr.FieldErrors) (any, error) {
		months := intParam(r, fe, "months", reporting.DefaultIncomeExpenseMonths)
		if err := fe.Err(); err != nil {
			return nil, err
		}
		return h.engine.IncomeExpense(r.Context(), userID, months)
	})
}

func (h *ReportHandler) serve(w http.ResponseWriter, r *http.Request, build func(userID int64, fe *apperr.FieldErrors) (any, error)) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var fe apperr.FieldErrors
	report, err := build(userID, &fe)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
