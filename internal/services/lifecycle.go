package services

import (
	"context"
	"time"

	"github.com/qmuntal/stateless"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
)

// ReopenWindow is how long after completion an execution may be reopened.
const ReopenWindow = 24 * time.Hour

type executionState string

const (
	stateOpen      executionState = "open"
	stateCompleted executionState = "completed"
)

type executionTrigger string

const (
	triggerComplete executionTrigger = "complete"
	triggerReopen   executionTrigger = "reopen"
	triggerDelete   executionTrigger = "delete"
)

const (
	msgItemsUnfinished = "All items must be checked before completing this execution."
	msgAlreadyOpen     = "Execution is already open."
	msgReopenWindow    = "Execution can only be reopened within 24 hours of completion."
	msgDeleteCompleted = "Only open executions can be deleted."
)

// executionLifecycle decides which transitions an execution may take right now.
// It is rebuilt from stored facts for every request and never persisted.
type executionLifecycle struct {
	sm         *stateless.StateMachine
	finished   *int64
	unfinished int64
	now        int64
}

func newExecutionLifecycle(exec *types.Execution, unfinished int64, now time.Time) *executionLifecycle {
	l := &executionLifecycle{
		finished:   exec.Finished,
		unfinished: unfinished,
		now:        now.Unix(),
	}
	initial := stateOpen
	if exec.IsCompleted() {
		initial = stateCompleted
	}
	l.sm = stateless.NewStateMachine(initial)

	l.sm.Configure(stateOpen).
		Permit(triggerComplete, stateCompleted, l.allItemsFinished).
		Ignore(triggerDelete)

	// Completing twice is a no-op, but the item check still applies.
	l.sm.Configure(stateCompleted).
		Ignore(triggerComplete, l.allItemsFinished).
		Permit(triggerReopen, stateOpen, l.withinReopenWindow)

	return l
}

func (l *executionLifecycle) allItemsFinished(_ context.Context, _ ...any) bool {
	return l.unfinished == 0
}

func (l *executionLifecycle) withinReopenWindow(_ context.Context, _ ...any) bool {
	if l.finished == nil || *l.finished <= 0 {
		return false
	}
	return l.now-*l.finished <= int64(ReopenWindow/time.Second)
}

func (l *executionLifecycle) state() executionState {
	return l.sm.MustState().(executionState)
}

func (l *executionLifecycle) canFire(ctx context.Context, trigger executionTrigger) bool {
	ok, err := l.sm.CanFireCtx(ctx, trigger)
	return err == nil && ok
}

// fire applies trigger or returns a Conflict naming why it was refused.
func (l *executionLifecycle) fire(ctx context.Context, trigger executionTrigger) error {
	if !l.canFire(ctx, trigger) {
		return l.refusal(trigger)
	}
	if err := l.sm.FireCtx(ctx, trigger); err != nil {
		return apperr.Internal("execution_transition", err)
	}
	return nil
}

func (l *executionLifecycle) refusal(trigger executionTrigger) error {
	switch trigger {
	case triggerComplete:
		return apperr.Conflict("execution_items_unfinished", msgItemsUnfinished)
	case triggerReopen:
		if l.state() == stateOpen {
			return apperr.Conflict("execution_open", msgAlreadyOpen)
		}
		return apperr.Conflict("execution_reopen_window", msgReopenWindow)
	case triggerDelete:
		return apperr.Conflict("execution_completed", msgDeleteCompleted)
	}
	return apperr.Conflict("execution_transition", "Transition %q is not allowed.", string(trigger))
}
