package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

const (
	executionOpenClause     = "(finished IS NULL OR finished <= 0)"
	executionFinishedClause = "finished > 0"
)

type ExecutionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Execution) ([]*types.Execution, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Execution, error)
	ListAll(dbc dbctx.Context) ([]*types.Execution, error)
	ListByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]*types.Execution, error)
	// ListOpen returns open executions, most recently started first.
	ListOpen(dbc dbctx.Context) ([]*types.Execution, error)
	ListWithPlanNames(dbc dbctx.Context, finished bool) ([]types.ExecutionListItem, error)
	PlanStats(dbc dbctx.Context) ([]types.PlanExecutionStats, error)

	// MarkFinished only touches open executions.
	MarkFinished(dbc dbctx.Context, id uuid.UUID, at int64) (int64, error)
	// Reopen only touches executions finished at or after notBefore.
	Reopen(dbc dbctx.Context, id uuid.UUID, notBefore int64) (int64, error)
	// DeleteOpen only removes the row while it is open.
	DeleteOpen(dbc dbctx.Context, id uuid.UUID) (int64, error)
	DeleteAll(dbc dbctx.Context) error
}

type executionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExecutionRepo(db *gorm.DB, baseLog *logger.Logger) ExecutionRepo {
	return &executionRepo{db: db, log: baseLog.With("repo", "ExecutionRepo")}
}

func (r *executionRepo) Create(dbc dbctx.Context, rows []*types.Execution) ([]*types.Execution, error) {
	if len(rows) == 0 {
		return []*types.Execution{}, nil
	}
	for _, row := range rows {
		if row != nil && row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *executionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Execution, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Execution
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *executionRepo) ListAll(dbc dbctx.Context) ([]*types.Execution, error) {
	var out []*types.Execution
	if err := dbc.DB(r.db).Order("started DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *executionRepo) ListByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]*types.Execution, error) {
	var out []*types.Execution
	if planID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("action_plan_id = ?", planID).
		Order("started DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *executionRepo) ListOpen(dbc dbctx.Context) ([]*types.Execution, error) {
	var out []*types.Execution
	if err := dbc.DB(r.db).
		Where(executionOpenClause).
		Order("started DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *executionRepo) ListWithPlanNames(dbc dbctx.Context, finished bool) ([]types.ExecutionListItem, error) {
	out := []types.ExecutionListItem{}
	q := dbc.DB(r.db).
		Table("action_plan_executions").
		Select("action_plan_executions.id AS id, action_plans.id AS plan_id, action_plans.name AS plan_name, " +
			"action_plan_executions.started AS started_at, action_plan_executions.finished AS finished_at").
		Joins("INNER JOIN action_plans ON action_plans.id = action_plan_executions.action_plan_id")
	if finished {
		q = q.Where("action_plan_executions.finished > 0").Order("action_plan_executions.finished DESC")
	} else {
		q = q.Where("(action_plan_executions.finished IS NULL OR action_plan_executions.finished <= 0)").
			Order("action_plan_executions.started DESC")
	}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *executionRepo) PlanStats(dbc dbctx.Context) ([]types.PlanExecutionStats, error) {
	out := []types.PlanExecutionStats{}
	if err := dbc.DB(r.db).
		Table("action_plan_executions").
		Select("action_plan_id AS plan_id, MAX(started) AS last_started, " +
			"MAX(CASE WHEN finished > 0 THEN finished END) AS last_finished").
		Group("action_plan_id").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *executionRepo) MarkFinished(dbc dbctx.Context, id uuid.UUID, at int64) (int64, error) {
	res := dbc.DB(r.db).Model(&types.Execution{}).
		Where("id = ?", id).
		Where(executionOpenClause).
		Update("finished", at)
	return res.RowsAffected, res.Error
}

func (r *executionRepo) Reopen(dbc dbctx.Context, id uuid.UUID, notBefore int64) (int64, error) {
	res := dbc.DB(r.db).Model(&types.Execution{}).
		Where("id = ?", id).
		Where(executionFinishedClause).
		Where("finished >= ?", notBefore).
		Update("finished", nil)
	return res.RowsAffected, res.Error
}

func (r *executionRepo) DeleteOpen(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).
		Where("id = ?", id).
		Where(executionOpenClause).
		Delete(&types.Execution{})
	return res.RowsAffected, res.Error
}

func (r *executionRepo) DeleteAll(dbc dbctx.Context) error {
	return dbc.DB(r.db).Where("1 = 1").Delete(&types.Execution{}).Error
}
