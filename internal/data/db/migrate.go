package db

import (
	"fmt"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Action{},
		&types.Plan{},
		&types.PlanItem{},
		&types.Execution{},
		&types.ExecutionItem{},
	); err != nil {
		return err
	}
	return EnsureIndexes(db)
}

// EnsureIndexes adds the composite indexes the tag-driven migration cannot express.
func EnsureIndexes(db *gorm.DB) error {
	// Execution checklist reads are always ordered within one execution.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_action_item_executions_exec_order
		ON action_item_executions (action_plan_execution_id, order_index);
	`).Error; err != nil {
		return fmt.Errorf("create idx_action_item_executions_exec_order: %w", err)
	}
	return nil
}
