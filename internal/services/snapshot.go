package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
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

type ImportResult struct {
	PlansRestored      int `json:"plans_restored"`
	ExecutionsRestored int `json:"executions_restored"`
}

type SnapshotService interface {
	Export(ctx context.Context) (*types.Snapshot, error)
	Decode(r io.Reader) (*types.Snapshot, error)
	Validate(doc *types.Snapshot) error
	// Import replaces the whole store with doc. Nothing is touched unless doc
	// validates, and the replacement commits as one transaction.
	Import(ctx context.Context, doc *types.Snapshot) (ImportResult, error)
}

type snapshotService struct {
	writer *aggregates.Writer
	log    *logger.Logger
	repos  repos.Set
	clock  Clock
}

func NewSnapshotService(writer *aggregates.Writer, baseLog *logger.Logger, set repos.Set, clock Clock) SnapshotService {
	return &snapshotService{
		writer: writer,
		log:    baseLog.With("service", "SnapshotService"),
		repos:  set,
		clock:  clock.orDefault(),
	}
}

func (s *snapshotService) Export(ctx context.Context) (*types.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "snapshot.export")
	defer span.End()

	doc := &types.Snapshot{
		Version:        types.SnapshotVersion,
		ExportedAtUnix: s.clock().Unix(),
	}
	err := s.writer.Read(ctx, "snapshot.export", func(dbc dbctx.Context) error {
		plans, err := s.repos.Plan.ListAll(dbc)
		if err != nil {
			return err
		}
		doc.Plans = make([]types.SnapshotPlan, 0, len(plans))
		for _, p := range plans {
			views, err := s.repos.PlanItem.ListViewsByPlanID(dbc, p.ID)
			if err != nil {
				return err
			}
			items := make([]types.SnapshotPlanItem, 0, len(views))
			for _, v := range views {
				items = append(items, types.SnapshotPlanItem{OrderIndex: int64(v.OrderIndex), ActionName: v.Name})
			}
			doc.Plans = append(doc.Plans, types.SnapshotPlan{
				ID:        p.ID,
				Name:      p.Name,
				DeletedAt: pointers.Unix(p.DeletedAt),
				Items:     items,
			})
		}

		execs, err := s.repos.Execution.ListAll(dbc)
		if err != nil {
			return err
		}
		doc.Executions = make([]types.SnapshotExecution, 0, len(execs))
		for _, e := range execs {
			views, err := s.repos.ExecutionItem.ListViewsByExecutionID(dbc, e.ID)
			if err != nil {
				return err
			}
			items := make([]types.SnapshotExecutionItem, 0, len(views))
			for _, v := range views {
				items = append(items, types.SnapshotExecutionItem{
					OrderIndex: int64(v.OrderIndex),
					ActionName: v.Name,
					Finished:   pointers.Unix(v.FinishedAt),
				})
			}
			doc.Executions = append(doc.Executions, types.SnapshotExecution{
				ID:       e.ID,
				PlanID:   e.PlanID,
				Started:  e.Started,
				Finished: pointers.Unix(e.Finished),
				Items:    items,
			})
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("snapshot.plans", len(doc.Plans)), attribute.Int("snapshot.executions", len(doc.Executions)))
	return doc, nil
}

func (s *snapshotService) Decode(r io.Reader) (*types.Snapshot, error) {
	var doc types.Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Code: "snapshot_malformed", Message: "Backup file is not valid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperr.Validation("snapshot_malformed", "Backup file has trailing content.")
	}
	return &doc, nil
}

func (s *snapshotService) Validate(doc *types.Snapshot) error {
	if doc == nil {
		return apperr.Validation("snapshot_empty", "Backup document is empty.")
	}
	if doc.Version != types.SnapshotVersion {
		return apperr.Validation("snapshot_version", "Unsupported backup version %d.", doc.Version)
	}

	planIDs := make(map[uuid.UUID]struct{}, len(doc.Plans))
	for i, p := range doc.Plans {
		if p.ID == uuid.Nil {
			return apperr.Validation("snapshot_plan_id", "Action plan #%d has no id.", i+1)
		}
		if _, dup := planIDs[p.ID]; dup {
			return apperr.Validation("snapshot_duplicate_plan", "Duplicate action plan id %s in backup.", p.ID)
		}
		planIDs[p.ID] = struct{}{}
		if strings.TrimSpace(p.Name) == "" {
			return apperr.Validation("snapshot_plan_name", "Action plan %s has no name.", p.ID)
		}
		for _, it := range p.Items {
			if strings.TrimSpace(it.ActionName) == "" {
				return apperr.Validation("snapshot_action_name", "Action plan %s has an item without a name.", p.ID)
			}
		}
	}

	execIDs := make(map[uuid.UUID]struct{}, len(doc.Executions))
	for i, e := range doc.Executions {
		if e.ID == uuid.Nil {
			return apperr.Validation("snapshot_execution_id", "Execution #%d has no id.", i+1)
		}
		if _, dup := execIDs[e.ID]; dup {
			return apperr.Validation("snapshot_duplicate_execution", "Duplicate execution id %s in backup.", e.ID)
		}
		execIDs[e.ID] = struct{}{}
		if _, ok := planIDs[e.PlanID]; !ok {
			return apperr.Validation("snapshot_unknown_plan", "Execution %s references unknown action plan %s.", e.ID, e.PlanID)
		}
		for _, it := range e.Items {
			if strings.TrimSpace(it.ActionName) == "" {
				return apperr.Validation("snapshot_action_name", "Execution %s has an item without a name.", e.ID)
			}
		}
	}
	return nil
}

func (s *snapshotService) Import(ctx context.Context, doc *types.Snapshot) (ImportResult, error) {
	ctx, span := tracer.Start(ctx, "snapshot.import")
	defer span.End()

	if err := s.Validate(doc); err != nil {
		recordSpanError(span, err)
		return ImportResult{}, err
	}

	err := s.writer.Write(ctx, "snapshot.import", func(dbc dbctx.Context) error {
		if err := s.wipe(dbc); err != nil {
			return err
		}
		actions := newActionIndex(s.repos.Action)

		for _, p := range doc.Plans {
			if _, err := s.repos.Plan.Create(dbc, []*types.Plan{{
				ID:        p.ID,
				Name:      p.Name,
				DeletedAt: pointers.Unix(p.DeletedAt),
			}}); err != nil {
				return err
			}
			items := append([]types.SnapshotPlanItem(nil), p.Items...)
			sort.SliceStable(items, func(i, j int) bool { return items[i].OrderIndex < items[j].OrderIndex })
			rows := make([]*types.PlanItem, 0, len(items))
			for i, it := range items {
				actionID, err := actions.ensure(dbc, it.ActionName)
				if err != nil {
					return err
				}
				rows = append(rows, &types.PlanItem{OrderIndex: i, PlanID: p.ID, ActionID: actionID})
			}
			if _, err := s.repos.PlanItem.Create(dbc, rows); err != nil {
				return err
			}
		}

		for _, e := range doc.Executions {
			if _, err := s.repos.Execution.Create(dbc, []*types.Execution{{
				ID:       e.ID,
				PlanID:   e.PlanID,
				Started:  e.Started,
				Finished: pointers.Unix(e.Finished),
			}}); err != nil {
				return err
			}
			items := append([]types.SnapshotExecutionItem(nil), e.Items...)
			sort.SliceStable(items, func(i, j int) bool { return items[i].OrderIndex < items[j].OrderIndex })
			rows := make([]*types.ExecutionItem, 0, len(items))
			for i, it := range items {
				actionID, err := actions.ensure(dbc, it.ActionName)
				if err != nil {
					return err
				}
				rows = append(rows, &types.ExecutionItem{
					ActionID:    actionID,
					OrderIndex:  i,
					ExecutionID: e.ID,
					Finished:    pointers.Unix(it.Finished),
				})
			}
			if _, err := s.repos.ExecutionItem.Create(dbc, rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return ImportResult{}, err
	}

	res := ImportResult{PlansRestored: len(doc.Plans), ExecutionsRestored: len(doc.Executions)}
	span.SetAttributes(attribute.Int("snapshot.plans", res.PlansRestored), attribute.Int("snapshot.executions", res.ExecutionsRestored))
	s.log.Info("snapshot imported", "plans", res.PlansRestored, "executions", res.ExecutionsRestored)
	return res, nil
}

// wipe deletes every row, children first.
func (s *snapshotService) wipe(dbc dbctx.Context) error {
	steps := []func(dbctx.Context) error{
		s.repos.ExecutionItem.DeleteAll,
		s.repos.Execution.DeleteAll,
		s.repos.PlanItem.DeleteAll,
		s.repos.Plan.DeleteAll,
		s.repos.Action.DeleteAll,
	}
	for _, step := range steps {
		if err := step(dbc); err != nil {
			return err
		}
	}
	return nil
}

// actionIndex creates actions on first use of a name during an import.
type actionIndex struct {
	repo repos.ActionRepo
	ids  map[string]uuid.UUID
}

func newActionIndex(repo repos.ActionRepo) *actionIndex {
	return &actionIndex{repo: repo, ids: map[string]uuid.UUID{}}
}

func (a *actionIndex) ensure(dbc dbctx.Context, name string) (uuid.UUID, error) {
	if id, ok := a.ids[name]; ok {
		return id, nil
	}
	rows, err := a.repo.Create(dbc, []*types.Action{{Name: name}})
	if err != nil {
		return uuid.Nil, err
	}
	a.ids[name] = rows[0].ID
	return rows[0].ID, nil
}
