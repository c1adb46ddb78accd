package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/maintenance-planner/internal/data/aggregates"
	"github.com/yungbote/maintenance-planner/internal/data/repos"
	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
	"github.com/yungbote/maintenance-planner/internal/pkg/pointers"
)

type ExecutionService interface {
	// Create starts a new run of the plan with every item unchecked. Soft-deleted
	// plans may still be run.
	Create(ctx context.Context, planID uuid.UUID) (uuid.UUID, error)
	// SetItemFinished checks or unchecks one item and returns the stored time.
	SetItemFinished(ctx context.Context, itemID uuid.UUID, finished bool) (*int64, error)
	Complete(ctx context.Context, id uuid.UUID) error
	Reopen(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*types.ExecutionDetail, error)
	List(ctx context.Context) (*types.ExecutionIndex, error)
}

type executionService struct {
	writer *aggregates.Writer
	log    *logger.Logger
	repos  repos.Set
	clock  Clock
}

func NewExecutionService(writer *aggregates.Writer, baseLog *logger.Logger, set repos.Set, clock Clock) ExecutionService {
	return &executionService{
		writer: writer,
		log:    baseLog.With("service", "ExecutionService"),
		repos:  set,
		clock:  clock.orDefault(),
	}
}

func executionNotFound(id uuid.UUID) error {
	return apperr.NotFound("execution_not_found", "No todo list exists for execution id: %s", id)
}

func (s *executionService) Create(ctx context.Context, planID uuid.UUID) (uuid.UUID, error) {
	now := s.clock().Unix()
	var id uuid.UUID
	err := s.writer.Write(ctx, "executions.create", func(dbc dbctx.Context) error {
		plan, err := s.repos.Plan.GetByID(dbc, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return apperr.NotFound("plan_not_found", "No action plan exists for id: %s", planID)
		}
		items, err := s.repos.PlanItem.ListByPlanID(dbc, plan.ID)
		if err != nil {
			return err
		}
		rows, err := s.repos.Execution.Create(dbc, []*types.Execution{{PlanID: plan.ID, Started: now}})
		if err != nil {
			return err
		}
		id = rows[0].ID

		execItems := make([]*types.ExecutionItem, 0, len(items))
		for _, it := range items {
			execItems = append(execItems, &types.ExecutionItem{
				ActionID:    it.ActionID,
				OrderIndex:  it.OrderIndex,
				ExecutionID: id,
			})
		}
		_, err = s.repos.ExecutionItem.Create(dbc, execItems)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("execution started", "execution_id", id, "plan_id", planID)
	return id, nil
}

func (s *executionService) SetItemFinished(ctx context.Context, itemID uuid.UUID, finished bool) (*int64, error) {
	var at *int64
	if finished {
		at = pointers.Int64(s.clock().Unix())
	}
	err := s.writer.Write(ctx, "executions.set_item", func(dbc dbctx.Context) error {
		n, err := s.repos.ExecutionItem.SetFinished(dbc, itemID, at)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("execution_item_not_found", "No execution item exists for id: %s", itemID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return at, nil
}

func (s *executionService) Complete(ctx context.Context, id uuid.UUID) error {
	now := s.clock()
	return s.writer.Write(ctx, "executions.complete", func(dbc dbctx.Context) error {
		exec, err := s.repos.Execution.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if exec == nil {
			return executionNotFound(id)
		}
		unfinished, err := s.repos.ExecutionItem.CountUnfinished(dbc, id)
		if err != nil {
			return err
		}
		lc := newExecutionLifecycle(exec, unfinished, now)
		if err := lc.fire(dbc.Ctx, triggerComplete); err != nil {
			return err
		}
		if exec.IsCompleted() {
			return nil
		}
		// Zero rows means a concurrent request completed it first, which is fine.
		_, err = s.repos.Execution.MarkFinished(dbc, id, now.Unix())
		return err
	})
}

func (s *executionService) Reopen(ctx context.Context, id uuid.UUID) error {
	now := s.clock()
	return s.writer.Write(ctx, "executions.reopen", func(dbc dbctx.Context) error {
		exec, err := s.repos.Execution.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if exec == nil {
			return executionNotFound(id)
		}
		lc := newExecutionLifecycle(exec, 0, now)
		if err := lc.fire(dbc.Ctx, triggerReopen); err != nil {
			return err
		}
		notBefore := now.Add(-ReopenWindow).Unix()
		n, err := s.repos.Execution.Reopen(dbc, id, notBefore)
		if err != nil {
			return err
		}
		if n == 0 {
			return lc.refusal(triggerReopen)
		}
		return nil
	})
}

func (s *executionService) Delete(ctx context.Context, id uuid.UUID) error {
	now := s.clock()
	return s.writer.Write(ctx, "executions.delete", func(dbc dbctx.Context) error {
		exec, err := s.repos.Execution.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if exec == nil {
			return executionNotFound(id)
		}
		lc := newExecutionLifecycle(exec, 0, now)
		if err := lc.fire(dbc.Ctx, triggerDelete); err != nil {
			return err
		}
		if err := s.repos.ExecutionItem.DeleteByExecutionID(dbc, id); err != nil {
			return err
		}
		n, err := s.repos.Execution.DeleteOpen(dbc, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.Conflict("execution_completed", msgDeleteCompleted)
		}
		return nil
	})
}

func (s *executionService) Get(ctx context.Context, id uuid.UUID) (*types.ExecutionDetail, error) {
	now := s.clock()
	var out *types.ExecutionDetail
	err := s.writer.Read(ctx, "executions.get", func(dbc dbctx.Context) error {
		exec, err := s.repos.Execution.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if exec == nil {
			return executionNotFound(id)
		}
		plan, err := s.repos.Plan.GetByID(dbc, exec.PlanID)
		if err != nil {
			return err
		}
		items, err := s.repos.ExecutionItem.ListViewsByExecutionID(dbc, id)
		if err != nil {
			return err
		}

		var unfinished int64
		for _, it := range items {
			if !it.IsFinished() {
				unfinished++
			}
		}
		lc := newExecutionLifecycle(exec, unfinished, now)

		detail := &types.ExecutionDetail{
			ID:          exec.ID,
			PlanID:      exec.PlanID,
			Items:       items,
			StartedAt:   exec.Started,
			FinishedAt:  pointers.Unix(exec.Finished),
			IsCompleted: exec.IsCompleted(),
			CanComplete: !exec.IsCompleted() && len(items) > 0 && lc.canFire(dbc.Ctx, triggerComplete),
			CanReopen:   lc.canFire(dbc.Ctx, triggerReopen),
		}
		if plan != nil {
			detail.PlanName = plan.Name
		}
		out = detail
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *executionService) List(ctx context.Context) (*types.ExecutionIndex, error) {
	out := &types.ExecutionIndex{}
	err := s.writer.Read(ctx, "executions.list", func(dbc dbctx.Context) error {
		var err error
		if out.Open, err = s.repos.Execution.ListWithPlanNames(dbc, false); err != nil {
			return err
		}
		out.Finished, err = s.repos.Execution.ListWithPlanNames(dbc, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
