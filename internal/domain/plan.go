package domain

import "github.com/google/uuid"

// Plan is a named, ordered template of actions. DeletedAt > 0 marks it soft-deleted.
type Plan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	DeletedAt *int64    `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (Plan) TableName() string { return "action_plans" }

func (p *Plan) IsDeleted() bool {
	return p != nil && p.DeletedAt != nil && *p.DeletedAt > 0
}

// PlanItem is one ordered slot of a plan's template. Rows are replaced wholesale
// on every edit, so nothing may hold on to a PlanItem id.
type PlanItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderIndex int       `gorm:"column:order_index;not null;index:idx_action_items_plan_order,priority:2" json:"order_index"`
	PlanID     uuid.UUID `gorm:"type:uuid;column:action_plan_id;not null;index:idx_action_items_plan_order,priority:1" json:"action_plan_id"`
	ActionID   uuid.UUID `gorm:"type:uuid;column:action_id;not null;index" json:"action_id"`
}

func (PlanItem) TableName() string { return "action_items" }

// PlanItemView is a plan item joined to its action name.
type PlanItemView struct {
	ID         uuid.UUID `json:"id"`
	OrderIndex int       `json:"order_index"`
	ActionID   uuid.UUID `json:"action_id"`
	Name       string    `json:"name"`
}

// DeletedFilter selects plans by soft-delete state.
type DeletedFilter string

const (
	DeletedFilterActive  DeletedFilter = "active"
	DeletedFilterDeleted DeletedFilter = "deleted"
	DeletedFilterAll     DeletedFilter = "all"
)

// ParseDeletedFilter maps a query value to a filter, defaulting to active plans.
func ParseDeletedFilter(raw string) (DeletedFilter, bool) {
	switch DeletedFilter(raw) {
	case "", DeletedFilterActive:
		return DeletedFilterActive, true
	case DeletedFilterDeleted:
		return DeletedFilterDeleted, true
	case DeletedFilterAll:
		return DeletedFilterAll, true
	}
	return DeletedFilterActive, false
}

// PlanExecutionStats aggregates a plan's executions for list sorting.
type PlanExecutionStats struct {
	PlanID       uuid.UUID
	LastStarted  *int64
	LastFinished *int64
}
