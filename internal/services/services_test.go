package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/maintenance-planner/internal/data/aggregates"
	"github.com/yungbote/maintenance-planner/internal/data/repos"
	"github.com/yungbote/maintenance-planner/internal/data/repos/testutil"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	ctx        context.Context
	db         *gorm.DB
	repos      repos.Set
	clock      *fakeClock
	registry   ActionRegistry
	items      PlanItemList
	plans      PlanService
	executions ExecutionService
	snapshots  SnapshotService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	writer := aggregates.NewWriter(aggregates.Deps{DB: db, Log: log})

	registry := NewActionRegistry(writer, log, set.Action)
	items := NewPlanItemList(registry, set.PlanItem)
	return &testEnv{
		ctx:        context.Background(),
		db:         db,
		repos:      set,
		clock:      clock,
		registry:   registry,
		items:      items,
		plans:      NewPlanService(writer, log, set, items, clock.Now),
		executions: NewExecutionService(writer, log, set, clock.Now),
		snapshots:  NewSnapshotService(writer, log, set, clock.Now),
	}
}
