package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	types "github.com/yungbote/maintenance-planner/internal/domain"
	"gorm.io/gorm"
)

func SeedAction(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Action {
	tb.Helper()
	a := &types.Action{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed action: %v", err)
	}
	return a
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, deletedAt *int64) *types.Plan {
	tb.Helper()
	p := &types.Plan{ID: uuid.New(), Name: name, DeletedAt: deletedAt}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}

// SeedPlanItems creates one action per name and links them to the plan in order.
func SeedPlanItems(tb testing.TB, ctx context.Context, tx *gorm.DB, planID uuid.UUID, names ...string) []*types.PlanItem {
	tb.Helper()
	out := make([]*types.PlanItem, 0, len(names))
	for i, name := range names {
		a := SeedAction(tb, ctx, tx, name)
		it := &types.PlanItem{ID: uuid.New(), OrderIndex: i, PlanID: planID, ActionID: a.ID}
		if err := tx.WithContext(ctx).Create(it).Error; err != nil {
			tb.Fatalf("seed plan item: %v", err)
		}
		out = append(out, it)
	}
	return out
}

func SeedExecution(tb testing.TB, ctx context.Context, tx *gorm.DB, planID uuid.UUID, started int64, finished *int64) *types.Execution {
	tb.Helper()
	e := &types.Execution{ID: uuid.New(), PlanID: planID, Started: started, Finished: finished}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed execution: %v", err)
	}
	return e
}

func SeedExecutionItem(tb testing.TB, ctx context.Context, tx *gorm.DB, executionID, actionID uuid.UUID, index int, finished *int64) *types.ExecutionItem {
	tb.Helper()
	it := &types.ExecutionItem{ID: uuid.New(), ActionID: actionID, OrderIndex: index, ExecutionID: executionID, Finished: finished}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed execution item: %v", err)
	}
	return it
}

func PtrInt64(v int64) *int64 { return &v }
