package http

import (
	"context"
	"net/http"
	"time"

	"findash/internal/domain/transaction"
	"findash/internal/domain/user"
	"findash/internal/shared/apperr"
)

// UserLookup resolves the caller whose profile is stamped on new transactions.
type UserLookup interface {
	Get(ctx context.Context, userID int64) (*user.User, error)
}

type TransactionHandler struct {
	transactions *transaction.Service
	users        UserLookup
	loc          *time.Location
}

func NewTransactionHandler(transactions *transaction.Service, users UserLookup, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionHandler{transactions: transactions, users: users, loc: loc}
}

type CreateTransactionRequest struct {
	Date        string               `json:"date,omitempty"`
	Amount      float64              `json:"amount"`
	Category    transaction.Category `json:"category"`
	Status      transaction.Status   `json:"status"`
	CategoryID  *string              `json:"categoryId,omitempty"`
	FromTo      string               `json:"fromTo,omitempty"`
}

type UpdateTransactionRequest struct {
	Date       *string               `json:"date,omitempty"`
	Amount     *float64              `json:"amount,omitempty"`
	Category   *transaction.Category `json:"category,omitempty"`
	Status     *transaction.Status   `json:"status,omitempty"`
	CategoryID *string               `json:"categoryId,omitempty"`
	FromTo     *string               `json:"fromTo,omitempty"`
}

// HandleTransactions serves the collection: GET lists, POST creates.
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListTransactions(w, r)
	case http.MethodPost:
		h.handleCreateTransaction(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// HandleTransactionByID serves a single transaction.
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetTransaction(w, r)
	case http.MethodPut:
		h.handleUpdateTransaction(w, r)
	case http.MethodDelete:
		h.handleDeleteTransaction(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (h *TransactionHandler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var fe apperr.FieldErrors
	params := transaction.ListParams{
		Page:     intParam(r, &fe, "page", 1),
		Limit:    intParam(r, &fe, "limit", transaction.DefaultPageLimit),
		Category: transaction.Category(q.Get("category")),
		Status:   transaction.Status(q.Get("status")),
	}
	params.StartDate = h.dateParam(&fe, "startDate", q.Get("startDate"), false)
	params.EndDate = h.dateParam(&fe, "endDate", q.Get("endDate"), true)
	if err := fe.Err(); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.transactions.List(r.Context(), userID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TransactionHandler) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	owner, err := h.users.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var fe apperr.FieldErrors
	params := transaction.CreateParams{
		Amount:      req.Amount,
		Category:    req.Category,
		Status:      req.Status,
		UserID:      userID,
		UserProfile: owner.Profile,
		CategoryID:  req.CategoryID,
		FromTo:      req.FromTo,
	}
	if req.Date != "" {
		if d := h.dateParam(&fe, "date", req.Date, false); d != nil {
			params.Date = *d
		}
	}
	if err := fe.Err(); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.transactions.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TransactionHandler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	t, err := h.transactions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var fe apperr.FieldErrors
	params := transaction.UpdateParams{
		Amount:     req.Amount,
		Category:   req.Category,
		Status:     req.Status,
		CategoryID: req.CategoryID,
		FromTo:     req.FromTo,
	}
	if req.Date != nil {
		params.Date = h.dateParam(&fe, "date", *req.Date, false)
	}
	if err := fe.Err(); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.transactions.Update(r.Context(), userID, r.PathValue("id"), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.transactions.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

// dateParam parses an optional date. A date-only upper bound is extended to
// the end of that day.
func (h *TransactionHandler) dateParam(fe *apperr.FieldErrors, field, raw string, upper bool) *time.Time {
	if raw == "" {
		return nil
	}
	t, dateOnly, err := transaction.ParseDate(raw, h.loc)
	if err != nil {
		fe.Add(field, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
		return nil
	}
	if upper && dateOnly {
		t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return &t
}
