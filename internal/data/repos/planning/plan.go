package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

const (
	planActiveClause  = "(deleted_at IS NULL OR deleted_at <= 0)"
	planDeletedClause = "deleted_at > 0"
)

type PlanRepo interface {
	Create(dbc dbctx.Context, rows []*types.Plan) ([]*types.Plan, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error)
	GetActiveByID(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error)
	List(dbc dbctx.Context, filter types.DeletedFilter) ([]*types.Plan, error)
	ListAll(dbc dbctx.Context) ([]*types.Plan, error)

	// Guarded updates return the affected row count; zero means the guard did not hold.
	RenameActive(dbc dbctx.Context, id uuid.UUID, name string) (int64, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID, at int64) (int64, error)
	Undelete(dbc dbctx.Context, id uuid.UUID) (int64, error)

	DeleteAll(dbc dbctx.Context) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) Create(dbc dbctx.Context, rows []*types.Plan) ([]*types.Plan, error) {
	if len(rows) == 0 {
		return []*types.Plan{}, nil
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

func (r *planRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Plan
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *planRepo) GetActiveByID(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Plan
	if err := dbc.DB(r.db).Where("id = ?", id).Where(planActiveClause).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *planRepo) List(dbc dbctx.Context, filter types.DeletedFilter) ([]*types.Plan, error) {
	q := dbc.DB(r.db)
	switch filter {
	case types.DeletedFilterDeleted:
		q = q.Where(planDeletedClause)
	case types.DeletedFilterAll:
	default:
		q = q.Where(planActiveClause)
	}
	var out []*types.Plan
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepo) ListAll(dbc dbctx.Context) ([]*types.Plan, error) {
	return r.List(dbc, types.DeletedFilterAll)
}

func (r *planRepo) RenameActive(dbc dbctx.Context, id uuid.UUID, name string) (int64, error) {
	res := dbc.DB(r.db).Model(&types.Plan{}).
		Where("id = ?", id).
		Where(planActiveClause).
		Update("name", name)
	return res.RowsAffected, res.Error
}

func (r *planRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID, at int64) (int64, error) {
	res := dbc.DB(r.db).Model(&types.Plan{}).
		Where("id = ?", id).
		Where(planActiveClause).
		Update("deleted_at", at)
	return res.RowsAffected, res.Error
}

func (r *planRepo) Undelete(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Model(&types.Plan{}).
		Where("id = ?", id).
		Where(planDeletedClause).
		Update("deleted_at", nil)
	return res.RowsAffected, res.Error
}

func (r *planRepo) DeleteAll(dbc dbctx.Context) error {
	return dbc.DB(r.db).Where("1 = 1").Delete(&types.Plan{}).Error
}
