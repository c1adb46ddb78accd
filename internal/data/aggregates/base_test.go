package aggregates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
)

type spyTxRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	mu        sync.Mutex
	statuses  []string
	conflicts int
	retries   int
}

func (h *spyHooks) ObserveOperation(_ string, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}
func (h *spyHooks) IncConflict(string) { h.mu.Lock(); h.conflicts++; h.mu.Unlock() }
func (h *spyHooks) IncRetry(string)    { h.mu.Lock(); h.retries++; h.mu.Unlock() }

func fastBackoff() retry.Backoff {
	return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
}

func TestWriteObservesSuccess(t *testing.T) {
	hooks := &spyHooks{}
	runner := &spyTxRunner{}
	w := NewWriter(Deps{Runner: runner, Hooks: hooks, Backoff: fastBackoff})

	if err := w.Write(context.Background(), "plans.create", func(dbctx.Context) error { return nil }); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("runner calls: want=1 got=%d", runner.calls)
	}
	if len(hooks.statuses) != 1 || hooks.statuses[0] != "success" {
		t.Fatalf("statuses: %v", hooks.statuses)
	}
}

func TestWritePassesDomainErrorsThrough(t *testing.T) {
	hooks := &spyHooks{}
	w := NewWriter(Deps{Runner: &spyTxRunner{}, Hooks: hooks, Backoff: fastBackoff})

	in := apperr.Conflict("execution_open", "Execution is already open.")
	err := w.Write(context.Background(), "executions.reopen", func(dbctx.Context) error { return in })
	if !errors.Is(err, in) {
		t.Fatalf("expected passthrough, got %v", err)
	}
	if hooks.conflicts != 1 {
		t.Fatalf("conflicts: want=1 got=%d", hooks.conflicts)
	}
	if hooks.statuses[0] != "conflict" {
		t.Fatalf("status: want=conflict got=%s", hooks.statuses[0])
	}
}

func TestWriteRetriesLockedStore(t *testing.T) {
	hooks := &spyHooks{}
	runner := &spyTxRunner{}
	w := NewWriter(Deps{Runner: runner, Hooks: hooks, Backoff: fastBackoff})

	attempts := 0
	err := w.Write(context.Background(), "plans.edit", func(dbctx.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if attempts != 2 || hooks.retries != 1 {
		t.Fatalf("attempts=%d retries=%d", attempts, hooks.retries)
	}
}

func TestWriteGivesUpAfterMaxRetries(t *testing.T) {
	runner := &spyTxRunner{}
	w := NewWriter(Deps{Runner: runner, Hooks: &spyHooks{}, Backoff: fastBackoff})

	err := w.Write(context.Background(), "plans.edit", func(dbctx.Context) error {
		return errors.New("database is locked")
	})
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Fatalf("kind: want=internal got=%v", apperr.KindOf(err))
	}
	if runner.calls != 3 {
		t.Fatalf("runner calls: want=3 got=%d", runner.calls)
	}
}
