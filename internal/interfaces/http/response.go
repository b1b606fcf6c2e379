package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"findash/internal/shared/apperr"
	"findash/internal/shared/logger"
	"findash/internal/shared/middleware"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Kind    apperr.Kind         `json:"kind"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code by its apperr kind. Unclassified
// errors are logged and reported as 500 without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Kind: apperr.KindInternal})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindUnavailable:
		status = http.StatusServiceUnavailable
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("data store unavailable")
	case apperr.KindUnauthenticated:
		status = http.StatusUnauthorized
	}

	writeJSON(w, status, ErrorResponse{Error: appErr.Message, Kind: appErr.Kind, Details: appErr.Fields})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Kind: "method_not_allowed"})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation(apperr.FieldError{Field: "body", Message: "invalid JSON: " + err.Error()})
	}
	return nil
}

// currentUser returns the authenticated user id. Handlers mounted behind
// middleware.Auth always have one.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthenticated("authentication required"))
	}
	return userID, ok
}

// intParam parses an optional integer query parameter. A present but
// non-numeric value is recorded on fe.
func intParam(r *http.Request, fe *apperr.FieldErrors, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fe.Add(name, "must be an integer")
		return def
	}
	return n
}
