package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

type PlanItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.PlanItem) ([]*types.PlanItem, error)

	ListByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]*types.PlanItem, error)
	// ListViewsByPlanID returns the plan's items in order, joined to action names.
	ListViewsByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]types.PlanItemView, error)

	DeleteByPlanID(dbc dbctx.Context, planID uuid.UUID) error
	DeleteAll(dbc dbctx.Context) error
}

type planItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanItemRepo(db *gorm.DB, baseLog *logger.Logger) PlanItemRepo {
	return &planItemRepo{db: db, log: baseLog.With("repo", "PlanItemRepo")}
}

func (r *planItemRepo) Create(dbc dbctx.Context, rows []*types.PlanItem) ([]*types.PlanItem, error) {
	if len(rows) == 0 {
		return []*types.PlanItem{}, nil
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

func (r *planItemRepo) ListByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]*types.PlanItem, error) {
	var out []*types.PlanItem
	if planID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("action_plan_id = ?", planID).
		Order("order_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planItemRepo) ListViewsByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]types.PlanItemView, error) {
	out := []types.PlanItemView{}
	if planID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Table("action_items").
		Select("action_items.id AS id, action_items.order_index AS order_index, action_items.action_id AS action_id, actions.name AS name").
		Joins("INNER JOIN actions ON actions.id = action_items.action_id").
		Where("action_items.action_plan_id = ?", planID).
		Order("action_items.order_index ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planItemRepo) DeleteByPlanID(dbc dbctx.Context, planID uuid.UUID) error {
	return dbc.DB(r.db).Where("action_plan_id = ?", planID).Delete(&types.PlanItem{}).Error
}

func (r *planItemRepo) DeleteAll(dbc dbctx.Context) error {
	return dbc.DB(r.db).Where("1 = 1").Delete(&types.PlanItem{}).Error
}
