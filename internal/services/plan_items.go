package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/maintenance-planner/internal/data/repos"
	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
)

// NormalizeItemNames trims every name and drops the ones left empty, keeping order.
func NormalizeItemNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

// PlanItemList rewrites a plan's ordered template.
type PlanItemList interface {
	// ReplaceItems deletes the plan's items and writes one per normalized name
	// with order 0..n-1. It must run inside the caller's transaction.
	ReplaceItems(dbc dbctx.Context, planID uuid.UUID, names []string) error
}

type planItemList struct {
	registry ActionRegistry
	items    repos.PlanItemRepo
}

func NewPlanItemList(registry ActionRegistry, items repos.PlanItemRepo) PlanItemList {
	return &planItemList{registry: registry, items: items}
}

func (l *planItemList) ReplaceItems(dbc dbctx.Context, planID uuid.UUID, names []string) error {
	names = NormalizeItemNames(names)
	if err := l.items.DeleteByPlanID(dbc, planID); err != nil {
		return apperr.Internal("plan_items_delete", err)
	}
	if len(names) == 0 {
		return nil
	}
	rows := make([]*types.PlanItem, 0, len(names))
	for i, name := range names {
		actionID, err := l.registry.Ensure(dbc, name)
		if err != nil {
			return err
		}
		rows = append(rows, &types.PlanItem{OrderIndex: i, PlanID: planID, ActionID: actionID})
	}
	if _, err := l.items.Create(dbc, rows); err != nil {
		return apperr.Internal("plan_items_create", err)
	}
	return nil
}
