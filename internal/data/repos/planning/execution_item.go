package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

type ExecutionItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.ExecutionItem) ([]*types.ExecutionItem, error)

	ListViewsByExecutionID(dbc dbctx.Context, executionID uuid.UUID) ([]types.ExecutionItemView, error)
	CountUnfinished(dbc dbctx.Context, executionID uuid.UUID) (int64, error)

	// SetFinished writes finished (nil clears it) and returns the affected row count.
	SetFinished(dbc dbctx.Context, id uuid.UUID, finished *int64) (int64, error)

	DeleteByExecutionID(dbc dbctx.Context, executionID uuid.UUID) error
	DeleteAll(dbc dbctx.Context) error
}

type executionItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExecutionItemRepo(db *gorm.DB, baseLog *logger.Logger) ExecutionItemRepo {
	return &executionItemRepo{db: db, log: baseLog.With("repo", "ExecutionItemRepo")}
}

func (r *executionItemRepo) Create(dbc dbctx.Context, rows []*types.ExecutionItem) ([]*types.ExecutionItem, error) {
	if len(rows) == 0 {
		return []*types.ExecutionItem{}, nil
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

func (r *executionItemRepo) ListViewsByExecutionID(dbc dbctx.Context, executionID uuid.UUID) ([]types.ExecutionItemView, error) {
	out := []types.ExecutionItemView{}
	if executionID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Table("action_item_executions").
		Select("action_item_executions.id AS id, action_item_executions.action_id AS action_id, " +
			"action_item_executions.order_index AS order_index, actions.name AS name, " +
			"action_item_executions.finished AS finished_at").
		Joins("INNER JOIN actions ON actions.id = action_item_executions.action_id").
		Where("action_item_executions.action_plan_execution_id = ?", executionID).
		Order("action_item_executions.order_index ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *executionItemRepo) CountUnfinished(dbc dbctx.Context, executionID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.ExecutionItem{}).
		Where("action_plan_execution_id = ?", executionID).
		Where("(finished IS NULL OR finished <= 0)").
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *executionItemRepo) SetFinished(dbc dbctx.Context, id uuid.UUID, finished *int64) (int64, error) {
	var value interface{}
	if finished != nil {
		value = *finished
	}
	res := dbc.DB(r.db).Model(&types.ExecutionItem{}).
		Where("id = ?", id).
		Update("finished", value)
	return res.RowsAffected, res.Error
}

func (r *executionItemRepo) DeleteByExecutionID(dbc dbctx.Context, executionID uuid.UUID) error {
	return dbc.DB(r.db).Where("action_plan_execution_id = ?", executionID).Delete(&types.ExecutionItem{}).Error
}

func (r *executionItemRepo) DeleteAll(dbc dbctx.Context) error {
	return dbc.DB(r.db).Where("1 = 1").Delete(&types.ExecutionItem{}).Error
}
