package domain

import "github.com/google/uuid"

// Execution is one run of a plan's checklist. Finished > 0 means completed.
type Execution struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID   uuid.UUID `gorm:"type:uuid;column:action_plan_id;not null;index" json:"action_plan_id"`
	Started  int64     `gorm:"column:started;not null;index" json:"started"`
	Finished *int64    `gorm:"column:finished;index" json:"finished,omitempty"`
}

func (Execution) TableName() string { return "action_plan_executions" }

func (e *Execution) IsCompleted() bool {
	return e != nil && e.Finished != nil && *e.Finished > 0
}

// ExecutionItem is a checklist line of an execution. It references the action
// directly so it survives plan edits that recreate plan items.
type ExecutionItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActionID    uuid.UUID `gorm:"type:uuid;column:action_id;not null;index" json:"action_id"`
	OrderIndex  int       `gorm:"column:order_index;not null" json:"order_index"`
	ExecutionID uuid.UUID `gorm:"type:uuid;column:action_plan_execution_id;not null;index" json:"action_plan_execution_id"`
	Finished    *int64    `gorm:"column:finished" json:"finished,omitempty"`
}

func (ExecutionItem) TableName() string { return "action_item_executions" }

func (i *ExecutionItem) IsFinished() bool {
	return i != nil && i.Finished != nil && *i.Finished > 0
}

// ExecutionItemView is an execution item joined to its action name.
type ExecutionItemView struct {
	ID         uuid.UUID `json:"id"`
	ActionID   uuid.UUID `json:"action_id"`
	OrderIndex int       `json:"order_index"`
	Name       string    `json:"name"`
	FinishedAt *int64    `json:"finished_at,omitempty"`
}

func (v ExecutionItemView) IsFinished() bool {
	return v.FinishedAt != nil && *v.FinishedAt > 0
}

// ExecutionListItem is an execution joined to its plan name.
type ExecutionListItem struct {
	ID         uuid.UUID `json:"id"`
	PlanID     uuid.UUID `json:"action_plan_id"`
	PlanName   string    `json:"action_plan_name"`
	StartedAt  int64     `json:"started_at"`
	FinishedAt *int64    `json:"finished_at,omitempty"`
}
