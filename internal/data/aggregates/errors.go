package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
)

// MapError maps store failures onto the apperr taxonomy. Errors that already
// carry a kind pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &apperr.Error{Kind: apperr.KindNotFound, Code: "not_found", Message: op, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &apperr.Error{Kind: apperr.KindConflict, Code: "duplicate", Message: op, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &apperr.Error{Kind: apperr.KindInternal, Code: "canceled", Message: op, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return &apperr.Error{Kind: apperr.KindConflict, Code: "duplicate", Message: op, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"), strings.Contains(msg, "duplicate key"):
		return &apperr.Error{Kind: apperr.KindConflict, Code: "duplicate", Message: op, Err: err}
	case IsRetryable(err):
		return &apperr.Error{Kind: apperr.KindInternal, Code: "store_busy", Message: op, Err: err}
	}
	return &apperr.Error{Kind: apperr.KindInternal, Code: "store", Message: op, Err: err}
}

// IsRetryable reports transient lock or serialization failures. The whole
// transaction can be replayed when this is true.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "40001", "40P01", "55P03":
			return true // serialization/deadlock/lock_not_available
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "deadlock")
}
