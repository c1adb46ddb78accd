package domain

import "github.com/google/uuid"

// PlanSummary is one row of the plan list.
type PlanSummary struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Deleted           bool       `json:"deleted"`
	ActiveExecutionID *uuid.UUID `json:"active_execution_id,omitempty"`
	LastStartedAt     *int64     `json:"last_started_at,omitempty"`
	LastFinishedAt    *int64     `json:"last_finished_at,omitempty"`
}

// PlanDetail is a plan with its template and its executions split by state.
// ActiveExecutions are ordered by start, FinishedExecutions by finish, newest first.
type PlanDetail struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Deleted            bool                `json:"deleted"`
	DeletedAt          *int64              `json:"deleted_at,omitempty"`
	Items              []PlanItemView      `json:"items"`
	ActiveExecutions   []ExecutionListItem `json:"active_executions"`
	FinishedExecutions []ExecutionListItem `json:"finished_executions"`
}

type ExecutionDetail struct {
	ID          uuid.UUID           `json:"id"`
	PlanID      uuid.UUID           `json:"action_plan_id"`
	PlanName    string              `json:"action_plan_name"`
	Items       []ExecutionItemView `json:"items"`
	StartedAt   int64               `json:"started_at"`
	FinishedAt  *int64              `json:"finished_at,omitempty"`
	IsCompleted bool                `json:"is_completed"`
	CanComplete bool                `json:"can_complete"`
	CanReopen   bool                `json:"can_reopen"`
}

// ExecutionIndex lists every execution with its plan name.
type ExecutionIndex struct {
	Open     []ExecutionListItem `json:"open"`
	Finished []ExecutionListItem `json:"finished"`
}
