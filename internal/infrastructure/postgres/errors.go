package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/lib/pq"

	"findash/internal/shared/apperr"
)

// classify wraps err with msg and marks connectivity failures as
// unavailable so the HTTP layer can answer 503.
func classify(msg string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s: %w", msg, err)
	if isUnavailable(err) {
		return apperr.Unavailable(wrapped)
	}
	return wrapped
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		// Class 08 is connection exception; 57P01-57P03 are shutdown and
		// cannot-connect-now.
		return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "57P0")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
