package domain

import "github.com/google/uuid"

// SnapshotVersion is the only backup document version this build reads and writes.
const SnapshotVersion = 1

// Snapshot is the full-store backup document. Field names match the backup
// files written by earlier releases.
type Snapshot struct {
	Version        int64               `json:"version"`
	ExportedAtUnix int64               `json:"exported_at_unix"`
	Plans          []SnapshotPlan      `json:"action_plans"`
	Executions     []SnapshotExecution `json:"action_plan_executions"`
}

type SnapshotPlan struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	DeletedAt *int64             `json:"deleted_at"`
	Items     []SnapshotPlanItem `json:"items"`
}

type SnapshotPlanItem struct {
	OrderIndex int64  `json:"order_index"`
	ActionName string `json:"action_name"`
}

type SnapshotExecution struct {
	ID       uuid.UUID               `json:"id"`
	PlanID   uuid.UUID               `json:"action_plan"`
	Started  int64                   `json:"started"`
	Finished *int64                  `json:"finished"`
	Items    []SnapshotExecutionItem `json:"items"`
}

type SnapshotExecutionItem struct {
	OrderIndex int64  `json:"order_index"`
	ActionName string `json:"action_name"`
	Finished   *int64 `json:"finished"`
}
