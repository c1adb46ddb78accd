package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfSurvivesWrapping(t *testing.T) {
	base := Conflict("execution_open", "Execution is already open.")
	wrapped := fmt.Errorf("reopen: %w", base)
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("kind: want=%v got=%v", KindConflict, KindOf(wrapped))
	}
	var ae *Error
	if !errors.As(wrapped, &ae) || ae.Code != "execution_open" {
		t.Fatalf("errors.As: %v", ae)
	}
}

func TestInternalKeepsTypedErrors(t *testing.T) {
	nf := NotFound("plan_not_found", "No action plan exists for id: %s", "x")
	if got := Internal("load_plan_failed", nf); !IsNotFound(got) {
		t.Fatalf("want NotFound preserved, got %v", got)
	}
	if Internal("x", nil) != nil {
		t.Fatalf("nil in must be nil out")
	}
	plain := errors.New("disk full")
	got := Internal("store_failed", plain)
	if KindOf(got) != KindInternal || !errors.Is(got, plain) {
		t.Fatalf("unexpected: %v", got)
	}
}

func TestErrorMessage(t *testing.T) {
	e := &Error{Kind: KindValidation, Message: "Unsupported backup version: 2"}
	if e.Error() != "Unsupported backup version: 2" {
		t.Fatalf("message: %q", e.Error())
	}
	if (&Error{Kind: KindNotFound}).Error() != "not_found" {
		t.Fatalf("fallback to kind")
	}
}
