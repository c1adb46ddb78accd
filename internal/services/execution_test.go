package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/maintenance-planner/internal/data/repos/testutil"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
)

func newCheckedExecution(t *testing.T, env *testEnv, names ...string) (planID, execID uuid.UUID) {
	t.Helper()
	planID, err := env.plans.Create(env.ctx, "Car", names)
	require.NoError(t, err)
	execID, err = env.executions.Create(env.ctx, planID)
	require.NoError(t, err)
	detail, err := env.executions.Get(env.ctx, execID)
	require.NoError(t, err)
	for _, it := range detail.Items {
		_, err := env.executions.SetItemFinished(env.ctx, it.ID, true)
		require.NoError(t, err)
	}
	return planID, execID
}

func TestCreateExecutionCopiesPlanItems(t *testing.T) {
	env := newTestEnv(t)
	planID, err := env.plans.Create(env.ctx, "Car", []string{"Oil", "Tyres", "Wipers"})
	require.NoError(t, err)

	execID, err := env.executions.Create(env.ctx, planID)
	require.NoError(t, err)

	detail, err := env.executions.Get(env.ctx, execID)
	require.NoError(t, err)
	assert.Equal(t, planID, detail.PlanID)
	assert.Equal(t, "Car", detail.PlanName)
	assert.Equal(t, env.clock.now.Unix(), detail.StartedAt)
	assert.Nil(t, detail.FinishedAt)
	assert.False(t, detail.CanComplete)
	assert.False(t, detail.CanReopen)
	require.Len(t, detail.Items, 3)
	for i, name := range []string{"Oil", "Tyres", "Wipers"} {
		assert.Equal(t, name, detail.Items[i].Name)
		assert.Equal(t, i, detail.Items[i].OrderIndex)
		assert.False(t, detail.Items[i].IsFinished())
	}

	_, err = env.executions.Create(env.ctx, uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

// Soft-deleted plans can still be run.
func TestCreateExecutionForDeletedPlan(t *testing.T) {
	env := newTestEnv(t)
	planID, err := env.plans.Create(env.ctx, "Boat", []string{"Hull"})
	require.NoError(t, err)
	require.NoError(t, env.plans.SoftDelete(env.ctx, planID))

	execID, err := env.executions.Create(env.ctx, planID)
	require.NoError(t, err)
	detail, err := env.executions.Get(env.ctx, execID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 1)
}

func TestSetItemFinished(t *testing.T) {
	env := newTestEnv(t)
	planID, err := env.plans.Create(env.ctx, "Car", []string{"Oil"})
	require.NoError(t, err)
	execID, err := env.executions.Create(env.ctx, planID)
	require.NoError(t, err)
	detail, err := env.executions.Get(env.ctx, execID)
	require.NoError(t, err)
	itemID := detail.Items[0].ID

	at, err := env.executions.SetItemFinished(env.ctx, itemID, true)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, env.clock.now.Unix(), *at)

	detail, err = env.executions.Get(env.ctx, execID)
	require.NoError(t, err)
	assert.True(t, detail.CanComplete)

	at, err = env.executions.SetItemFinished(env.ctx, itemID, false)
	require.NoError(t, err)
	assert.Nil(t, at)

	_, err = env.executions.SetItemFinished(env.ctx, uuid.New(), true)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCompleteExecution(t *testing.T) {
	env := newTestEnv(t)
	planID, err := env.plans.Create(env.ctx, "Car", []string{"Oil", "Tyres"})
	require.NoError(t, err)
	execID, err := env.executions.Create(env.ctx, planID)
	require.NoError(t, err)

	err = env.executions.Complete(env.ctx, execID)
	require.True(t, apperr.IsConflict(err), "got %v", err)
	assert.Contains(t, err.Error(), msgItemsUnfinished)

	detail, err := env.executions.Get(env.ctx, execID)
	require.NoError(t, err)
	for _, it := range detail.Items {
		_, err := env.executions.SetItemFinished(env.ctx, it.ID, true)
		require.NoError(t, err)
	}

	require.NoError(t, env.executions.Complete(env.ctx, execID))
	completedAt := env.clock.now.Unix()

	env.clock.Advance(time.Hour)
	require.NoError(t, env.executions.Complete(env.ctx, execID), "completing twice succeeds")

	detail, err = env.executions.Get(env.ctx, execID)
	require.NoError(t, err)
	assert.True(t, detail.IsCompleted)
	require.NotNil(t, detail.FinishedAt)
	assert.Equal(t, completedAt, *detail.FinishedAt, "second complete keeps the first time")
	assert.False(t, detail.CanComplete)
	assert.True(t, detail.CanReopen)

	assert.True(t, apperr.IsNotFound(env.executions.Complete(env.ctx, uuid.New())))
}

func TestCompleteExecutionWithoutItems(t *testing.T) {
	env := newTestEnv(t)
	planID, err := env.plans.Create(env.ctx, "Empty", nil)
	require.NoError(t, err)
	execID, err := env.executions.Create(env.ctx, planID)
	require.NoError(t, err)

	detail, err := env.executions.Get(env.ctx, execID)
	require.NoError(t, err)
	assert.False(t, detail.CanComplete)
	require.NoError(t, env.executions.Complete(env.ctx, execID))
}

func TestReopenWindowBoundary(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		ok      bool
	}{
		{"just inside", ReopenWindow - time.Second, true},
		{"exactly at", ReopenWindow, true},
		{"just outside", ReopenWindow + time.Second, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, execID := newCheckedExecution(t, env, "Oil")
			require.NoError(t, env.executions.Complete(env.ctx, execID))

			env.clock.Advance(tc.elapsed)
			err := env.executions.Reopen(env.ctx, execID)
			if tc.ok {
				require.NoError(t, err)
				detail, err := env.executions.Get(env.ctx, execID)
				require.NoError(t, err)
				assert.False(t, detail.IsCompleted)
				assert.Nil(t, detail.FinishedAt)
				return
			}
			require.True(t, apperr.IsConflict(err), "got %v", err)
			assert.Contains(t, err.Error(), msgReopenWindow)
		})
	}
}

func TestReopenOpenExecution(t *testing.T) {
	env := newTestEnv(t)
	_, execID := newCheckedExecution(t, env, "Oil")

	err := env.executions.Reopen(env.ctx, execID)
	require.True(t, apperr.IsConflict(err))
	assert.Contains(t, err.Error(), msgAlreadyOpen)
	assert.True(t, apperr.IsNotFound(env.executions.Reopen(env.ctx, uuid.New())))
}

func TestDeleteExecution(t *testing.T) {
	env := newTestEnv(t)
	_, execID := newCheckedExecution(t, env, "Oil", "Tyres")
	require.NoError(t, env.executions.Complete(env.ctx, execID))

	err := env.executions.Delete(env.ctx, execID)
	require.True(t, apperr.IsConflict(err))
	assert.Contains(t, err.Error(), msgDeleteCompleted)

	// Still refused after the reopen window has passed.
	env.clock.Advance(48 * time.Hour)
	assert.True(t, apperr.IsConflict(env.executions.Delete(env.ctx, execID)))

	_, openID := newCheckedExecution(t, env, "Brakes")
	require.NoError(t, env.executions.Delete(env.ctx, openID))
	_, err = env.executions.Get(env.ctx, openID)
	assert.True(t, apperr.IsNotFound(err))

	n, err := env.repos.ExecutionItem.CountUnfinished(dbctx.Context{Ctx: env.ctx}, openID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, apperr.IsNotFound(env.executions.Delete(env.ctx, uuid.New())))
}

func TestListExecutions(t *testing.T) {
	env := newTestEnv(t)
	car := testutil.SeedPlan(t, env.ctx, env.db, "Car", nil)
	house := testutil.SeedPlan(t, env.ctx, env.db, "House", nil)
	open := testutil.SeedExecution(t, env.ctx, env.db, car.ID, 100, nil)
	done := testutil.SeedExecution(t, env.ctx, env.db, house.ID, 50, testutil.PtrInt64(75))

	index, err := env.executions.List(env.ctx)
	require.NoError(t, err)
	require.Len(t, index.Open, 1)
	assert.Equal(t, open.ID, index.Open[0].ID)
	assert.Equal(t, "Car", index.Open[0].PlanName)
	require.Len(t, index.Finished, 1)
	assert.Equal(t, done.ID, index.Finished[0].ID)
	assert.Equal(t, "House", index.Finished[0].PlanName)
}
