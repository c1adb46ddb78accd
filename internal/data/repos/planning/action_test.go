package planning

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/maintenance-planner/internal/data/repos/testutil"
	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
)

func TestActionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewActionRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.Action{{Name: "Check oil level"}, {Name: "check oil level"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created[0].ID == uuid.Nil || created[1].ID == uuid.Nil {
		t.Fatalf("Create: ids not assigned")
	}

	got, err := repo.GetByName(dbc, "Check oil level")
	if err != nil || got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByName exact: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByName(dbc, "CHECK OIL LEVEL"); err != nil || got != nil {
		t.Fatalf("GetByName is case-sensitive: got=%v err=%v", got, err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID, created[1].ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	if _, err := repo.Create(dbc, []*types.Action{{Name: "Check oil level"}}); err == nil {
		t.Fatalf("Create duplicate name: expected unique violation")
	}
}

func TestActionRepoUnreferenced(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewActionRepo(db, testutil.Logger(t))

	plan := testutil.SeedPlan(t, ctx, db, "Car", nil)
	items := testutil.SeedPlanItems(t, ctx, db, plan.ID, "Tyres")
	exec := testutil.SeedExecution(t, ctx, db, plan.ID, 100, nil)
	onlyInExec := testutil.SeedAction(t, ctx, db, "Wipers")
	testutil.SeedExecutionItem(t, ctx, db, exec.ID, onlyInExec.ID, 0, nil)
	orphan := testutil.SeedAction(t, ctx, db, "Orphan")

	rows, err := repo.ListUnreferenced(dbc)
	if err != nil {
		t.Fatalf("ListUnreferenced: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != orphan.ID {
		t.Fatalf("ListUnreferenced: want only orphan, got %+v", rows)
	}

	// Referenced ids are skipped even when passed explicitly.
	n, err := repo.DeleteUnreferencedByIDs(dbc, []uuid.UUID{orphan.ID, items[0].ActionID, onlyInExec.ID})
	if err != nil {
		t.Fatalf("DeleteUnreferencedByIDs: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteUnreferencedByIDs: want=1 got=%d", n)
	}
	all, err := repo.ListAll(dbc)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListAll after delete: err=%v len=%d", err, len(all))
	}

	if err := repo.DeleteAll(dbc); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
}
