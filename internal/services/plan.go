package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/maintenance-planner/internal/data/aggregates"
	"github.com/yungbote/maintenance-planner/internal/data/repos"
	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
	"github.com/yungbote/maintenance-planner/internal/pkg/pointers"
)

type PlanSort string

const (
	PlanSortName   PlanSort = "name"
	PlanSortRecent PlanSort = "recent"
)

// ParsePlanSort maps a query value to a sort key, defaulting to name.
func ParsePlanSort(raw string) (PlanSort, bool) {
	switch PlanSort(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PlanSortName:
		return PlanSortName, true
	case PlanSortRecent:
		return PlanSortRecent, true
	}
	return PlanSortName, false
}

type ListPlansParams struct {
	Sort    PlanSort
	Deleted types.DeletedFilter
}

type EditPlanInput struct {
	ID        uuid.UUID
	Name      string
	ItemNames []string
	// ExecutionID, when set, names an execution of this plan whose checklist is
	// rebuilt from the new template with progress kept by action name.
	ExecutionID *uuid.UUID
}

type PlanService interface {
	Create(ctx context.Context, name string, itemNames []string) (uuid.UUID, error)
	Edit(ctx context.Context, in EditPlanInput) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Undelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListPlansParams) ([]types.PlanSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*types.PlanDetail, error)
}

type planService struct {
	writer *aggregates.Writer
	log    *logger.Logger
	repos  repos.Set
	items  PlanItemList
	clock  Clock
}

func NewPlanService(writer *aggregates.Writer, baseLog *logger.Logger, set repos.Set, items PlanItemList, clock Clock) PlanService {
	return &planService{
		writer: writer,
		log:    baseLog.With("service", "PlanService"),
		repos:  set,
		items:  items,
		clock:  clock.orDefault(),
	}
}

func normalizePlanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("plan_name", "Plan name is required.")
	}
	return name, nil
}

func (s *planService) Create(ctx context.Context, name string, itemNames []string) (uuid.UUID, error) {
	name, err := normalizePlanName(name)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = s.writer.Write(ctx, "plans.create", func(dbc dbctx.Context) error {
		rows, err := s.repos.Plan.Create(dbc, []*types.Plan{{Name: name}})
		if err != nil {
			return err
		}
		id = rows[0].ID
		return s.items.ReplaceItems(dbc, id, itemNames)
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("plan created", "plan_id", id)
	return id, nil
}

func (s *planService) Edit(ctx context.Context, in EditPlanInput) error {
	name, err := normalizePlanName(in.Name)
	if err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "plans.edit")
	defer span.End()
	span.SetAttributes(attribute.String("plan.id", in.ID.String()), attribute.Bool("plan.reconcile", in.ExecutionID != nil))

	err = s.writer.Write(ctx, "plans.edit", func(dbc dbctx.Context) error {
		plan, err := s.repos.Plan.GetActiveByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if plan == nil {
			return apperr.NotFound("plan_not_found", "No action plan exists for id: %s", in.ID)
		}

		var exec *types.Execution
		var progress progressSnapshot
		if in.ExecutionID != nil {
			exec, err = s.repos.Execution.GetByID(dbc, *in.ExecutionID)
			if err != nil {
				return err
			}
			if exec == nil || exec.PlanID != plan.ID {
				return apperr.NotFound("execution_not_found", "No execution %s exists for action plan %s", *in.ExecutionID, plan.ID)
			}
			views, err := s.repos.ExecutionItem.ListViewsByExecutionID(dbc, exec.ID)
			if err != nil {
				return err
			}
			progress = buildProgressSnapshot(views)
			if err := s.repos.ExecutionItem.DeleteByExecutionID(dbc, exec.ID); err != nil {
				return err
			}
		}

		n, err := s.repos.Plan.RenameActive(dbc, plan.ID, name)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("plan_not_found", "No action plan exists for id: %s", in.ID)
		}
		if err := s.items.ReplaceItems(dbc, plan.ID, in.ItemNames); err != nil {
			return err
		}

		if exec == nil {
			return nil
		}
		planItems, err := s.repos.PlanItem.ListViewsByPlanID(dbc, plan.ID)
		if err != nil {
			return err
		}
		_, err = s.repos.ExecutionItem.Create(dbc, rebuildExecutionItems(exec.ID, planItems, progress))
		return err
	})
	if err != nil {
		recordSpanError(span, err)
		return err
	}
	return nil
}

func (s *planService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := s.clock().Unix()
	return s.writer.Write(ctx, "plans.soft_delete", func(dbc dbctx.Context) error {
		n, err := s.repos.Plan.SoftDelete(dbc, id, now)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		return s.explainPlanGuard(dbc, id, apperr.Conflict("plan_deleted", "Action plan is already deleted."))
	})
}

func (s *planService) Undelete(ctx context.Context, id uuid.UUID) error {
	return s.writer.Write(ctx, "plans.undelete", func(dbc dbctx.Context) error {
		n, err := s.repos.Plan.Undelete(dbc, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		return s.explainPlanGuard(dbc, id, apperr.Conflict("plan_not_deleted", "Action plan is not deleted."))
	})
}

// explainPlanGuard turns a guarded update that touched nothing into NotFound
// when the row is missing, and into conflict otherwise.
func (s *planService) explainPlanGuard(dbc dbctx.Context, id uuid.UUID, conflict error) error {
	plan, err := s.repos.Plan.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if plan == nil {
		return apperr.NotFound("plan_not_found", "No action plan exists for id: %s", id)
	}
	return conflict
}

func (s *planService) List(ctx context.Context, params ListPlansParams) ([]types.PlanSummary, error) {
	var (
		plans []*types.Plan
		stats []types.PlanExecutionStats
		open  []*types.Execution
	)
	err := s.writer.Read(ctx, "plans.list", func(dbc dbctx.Context) error {
		var err error
		if plans, err = s.repos.Plan.List(dbc, params.Deleted); err != nil {
			return err
		}
		if stats, err = s.repos.Execution.PlanStats(dbc); err != nil {
			return err
		}
		open, err = s.repos.Execution.ListOpen(dbc)
		return err
	})
	if err != nil {
		return nil, err
	}

	statsByPlan := make(map[uuid.UUID]types.PlanExecutionStats, len(stats))
	for _, st := range stats {
		statsByPlan[st.PlanID] = st
	}
	// ListOpen is newest first, so the first hit per plan wins.
	activeByPlan := make(map[uuid.UUID]uuid.UUID, len(open))
	for _, e := range open {
		if _, ok := activeByPlan[e.PlanID]; !ok {
			activeByPlan[e.PlanID] = e.ID
		}
	}

	out := make([]types.PlanSummary, 0, len(plans))
	for _, p := range plans {
		sum := types.PlanSummary{ID: p.ID, Name: p.Name, Deleted: p.IsDeleted()}
		if active, ok := activeByPlan[p.ID]; ok {
			sum.ActiveExecutionID = pointers.Ptr(active)
		}
		if st, ok := statsByPlan[p.ID]; ok {
			sum.LastStartedAt = pointers.Unix(st.LastStarted)
			sum.LastFinishedAt = pointers.Unix(st.LastFinished)
		}
		out = append(out, sum)
	}
	sortPlanSummaries(out, params.Sort)
	return out, nil
}

func sortPlanSummaries(rows []types.PlanSummary, by PlanSort) {
	byName := func(a, b types.PlanSummary) bool {
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.ID.String() < b.ID.String()
	}
	if by != PlanSortRecent {
		sort.SliceStable(rows, func(i, j int) bool { return byName(rows[i], rows[j]) })
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := lastActivity(rows[i]), lastActivity(rows[j])
		switch {
		case ri == nil && rj == nil:
			return byName(rows[i], rows[j])
		case ri == nil:
			return false
		case rj == nil:
			return true
		case *ri != *rj:
			return *ri > *rj
		}
		return byName(rows[i], rows[j])
	})
}

// lastActivity is the later of the last start and the last finish.
func lastActivity(p types.PlanSummary) *int64 {
	switch {
	case p.LastStartedAt == nil:
		return p.LastFinishedAt
	case p.LastFinishedAt == nil:
		return p.LastStartedAt
	case *p.LastFinishedAt > *p.LastStartedAt:
		return p.LastFinishedAt
	}
	return p.LastStartedAt
}

func (s *planService) Get(ctx context.Context, id uuid.UUID) (*types.PlanDetail, error) {
	var out *types.PlanDetail
	err := s.writer.Read(ctx, "plans.get", func(dbc dbctx.Context) error {
		plan, err := s.repos.Plan.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if plan == nil {
			return apperr.NotFound("plan_not_found", "No action plan exists for id: %s", id)
		}
		items, err := s.repos.PlanItem.ListViewsByPlanID(dbc, plan.ID)
		if err != nil {
			return err
		}
		execs, err := s.repos.Execution.ListByPlanID(dbc, plan.ID)
		if err != nil {
			return err
		}

		detail := &types.PlanDetail{
			ID:                 plan.ID,
			Name:               plan.Name,
			Deleted:            plan.IsDeleted(),
			DeletedAt:          pointers.Unix(plan.DeletedAt),
			Items:              items,
			ActiveExecutions:   []types.ExecutionListItem{},
			FinishedExecutions: []types.ExecutionListItem{},
		}
		for _, e := range execs {
			row := types.ExecutionListItem{
				ID:         e.ID,
				PlanID:     plan.ID,
				PlanName:   plan.Name,
				StartedAt:  e.Started,
				FinishedAt: pointers.Unix(e.Finished),
			}
			if e.IsCompleted() {
				detail.FinishedExecutions = append(detail.FinishedExecutions, row)
			} else {
				detail.ActiveExecutions = append(detail.ActiveExecutions, row)
			}
		}
		sort.SliceStable(detail.FinishedExecutions, func(i, j int) bool {
			return *detail.FinishedExecutions[i].FinishedAt > *detail.FinishedExecutions[j].FinishedAt
		})
		out = detail
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
