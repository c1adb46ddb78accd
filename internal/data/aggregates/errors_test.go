package aggregates

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
)

func TestMapError_NotFound(t *testing.T) {
	if !apperr.IsNotFound(MapError("op", gorm.ErrRecordNotFound)) {
		t.Fatalf("expected not_found")
	}
}

func TestMapError_UniqueViolation(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: actions.name"))
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMapError_PassthroughAppError(t *testing.T) {
	in := apperr.Validation("plan_name", "Plan name is required.")
	if out := MapError("other", in); out != error(in) {
		t.Fatalf("expected passthrough")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Fatalf("expected sqlite busy to be retryable")
	}
	if IsRetryable(apperr.Conflict("x", "y")) {
		t.Fatalf("domain errors are never retryable")
	}
	if IsRetryable(nil) {
		t.Fatalf("nil is not retryable")
	}
}
