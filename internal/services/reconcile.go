package services

import (
	"github.com/google/uuid"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/pointers"
)

// progressSnapshot maps an action name to the time its execution item was
// checked. Unchecked names map to nil.
type progressSnapshot map[string]*int64

// buildProgressSnapshot captures an execution's progress keyed by action name.
// A name that appears more than once keeps its latest check.
func buildProgressSnapshot(items []types.ExecutionItemView) progressSnapshot {
	out := make(progressSnapshot, len(items))
	for _, it := range items {
		finished := pointers.Unix(it.FinishedAt)
		if prev, ok := out[it.Name]; ok && prev != nil {
			if finished == nil || *prev > *finished {
				continue
			}
		}
		out[it.Name] = finished
	}
	return out
}

// rebuildExecutionItems lays out one execution item per plan item, in plan
// order, carrying progress over by name. Names absent from the snapshot start
// unchecked.
func rebuildExecutionItems(executionID uuid.UUID, planItems []types.PlanItemView, progress progressSnapshot) []*types.ExecutionItem {
	out := make([]*types.ExecutionItem, 0, len(planItems))
	for i, pi := range planItems {
		var finished *int64
		if at, ok := progress[pi.Name]; ok {
			finished = pointers.Unix(at)
		}
		out = append(out, &types.ExecutionItem{
			ActionID:    pi.ActionID,
			OrderIndex:  i,
			ExecutionID: executionID,
			Finished:    finished,
		})
	}
	return out
}
