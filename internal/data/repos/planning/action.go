package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

const unreferencedActionClause = "NOT EXISTS (SELECT 1 FROM action_items WHERE action_items.action_id = actions.id) " +
	"AND NOT EXISTS (SELECT 1 FROM action_item_executions WHERE action_item_executions.action_id = actions.id)"

type ActionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Action) ([]*types.Action, error)

	GetByName(dbc dbctx.Context, name string) (*types.Action, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Action, error)
	ListAll(dbc dbctx.Context) ([]*types.Action, error)
	ListUnreferenced(dbc dbctx.Context) ([]*types.Action, error)

	// DeleteUnreferencedByIDs only removes ids that are still unreferenced at delete time.
	DeleteUnreferencedByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	DeleteAll(dbc dbctx.Context) error
}

type actionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionRepo(db *gorm.DB, baseLog *logger.Logger) ActionRepo {
	return &actionRepo{db: db, log: baseLog.With("repo", "ActionRepo")}
}

func (r *actionRepo) Create(dbc dbctx.Context, rows []*types.Action) ([]*types.Action, error) {
	if len(rows) == 0 {
		return []*types.Action{}, nil
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

func (r *actionRepo) GetByName(dbc dbctx.Context, name string) (*types.Action, error) {
	var out []*types.Action
	if err := dbc.DB(r.db).Where("name = ?", name).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *actionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Action, error) {
	var out []*types.Action
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionRepo) ListAll(dbc dbctx.Context) ([]*types.Action, error) {
	var out []*types.Action
	if err := dbc.DB(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionRepo) ListUnreferenced(dbc dbctx.Context) ([]*types.Action, error) {
	var out []*types.Action
	if err := dbc.DB(r.db).
		Where(unreferencedActionClause).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionRepo) DeleteUnreferencedByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("id IN ?", ids).
		Where(unreferencedActionClause).
		Delete(&types.Action{})
	return res.RowsAffected, res.Error
}

func (r *actionRepo) DeleteAll(dbc dbctx.Context) error {
	return dbc.DB(r.db).Where("1 = 1").Delete(&types.Action{}).Error
}
