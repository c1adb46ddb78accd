package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/maintenance-planner/internal/data/repos/testutil"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
)

func TestEnsureIsStableWithinOneTransaction(t *testing.T) {
	env := newTestEnv(t)

	var ids []uuid.UUID
	err := env.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: env.ctx, Tx: tx}
		for i := 0; i < 3; i++ {
			id, err := env.registry.Ensure(dbc, "Check oil level")
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[0], ids[2])

	all, err := env.repos.Action.ListAll(dbctx.Context{Ctx: env.ctx})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ids[0], all[0].ID)
}

func TestEnsureIsCaseSensitive(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.Context{Ctx: env.ctx}

	upper, err := env.registry.Ensure(dbc, "Oil Change")
	require.NoError(t, err)
	lower, err := env.registry.Ensure(dbc, "oil change")
	require.NoError(t, err)
	assert.NotEqual(t, upper, lower)
}

func TestSweepUnreferenced(t *testing.T) {
	env := newTestEnv(t)

	plan := testutil.SeedPlan(t, env.ctx, env.db, "Car", nil)
	planItems := testutil.SeedPlanItems(t, env.ctx, env.db, plan.ID, "Tyres")
	exec := testutil.SeedExecution(t, env.ctx, env.db, plan.ID, 100, nil)
	inExecution := testutil.SeedAction(t, env.ctx, env.db, "Wipers")
	testutil.SeedExecutionItem(t, env.ctx, env.db, exec.ID, inExecution.ID, 0, nil)
	orphanA := testutil.SeedAction(t, env.ctx, env.db, "Old A")
	orphanB := testutil.SeedAction(t, env.ctx, env.db, "Old B")

	removed, err := env.registry.SweepUnreferenced(env.ctx)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.ElementsMatch(t, []uuid.UUID{orphanA.ID, orphanB.ID}, []uuid.UUID{removed[0].ID, removed[1].ID})

	left, err := env.repos.Action.ListAll(dbctx.Context{Ctx: env.ctx})
	require.NoError(t, err)
	got := []uuid.UUID{}
	for _, a := range left {
		got = append(got, a.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{planItems[0].ActionID, inExecution.ID}, got)

	again, err := env.registry.SweepUnreferenced(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}
