package repos

import (
	"github.com/yungbote/maintenance-planner/internal/data/repos/planning"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
	"gorm.io/gorm"
)

type ActionRepo = planning.ActionRepo
type PlanRepo = planning.PlanRepo
type PlanItemRepo = planning.PlanItemRepo
type ExecutionRepo = planning.ExecutionRepo
type ExecutionItemRepo = planning.ExecutionItemRepo

func NewActionRepo(db *gorm.DB, baseLog *logger.Logger) ActionRepo {
	return planning.NewActionRepo(db, baseLog)
}
func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return planning.NewPlanRepo(db, baseLog)
}
func NewPlanItemRepo(db *gorm.DB, baseLog *logger.Logger) PlanItemRepo {
	return planning.NewPlanItemRepo(db, baseLog)
}
func NewExecutionRepo(db *gorm.DB, baseLog *logger.Logger) ExecutionRepo {
	return planning.NewExecutionRepo(db, baseLog)
}
func NewExecutionItemRepo(db *gorm.DB, baseLog *logger.Logger) ExecutionItemRepo {
	return planning.NewExecutionItemRepo(db, baseLog)
}

// Set bundles every repo the services need.
type Set struct {
	Action        ActionRepo
	Plan          PlanRepo
	PlanItem      PlanItemRepo
	Execution     ExecutionRepo
	ExecutionItem ExecutionItemRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Action:        NewActionRepo(db, baseLog),
		Plan:          NewPlanRepo(db, baseLog),
		PlanItem:      NewPlanItemRepo(db, baseLog),
		Execution:     NewExecutionRepo(db, baseLog),
		ExecutionItem: NewExecutionItemRepo(db, baseLog),
	}
}
