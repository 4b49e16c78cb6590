package repos_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/modulearn/backend/internal/data/repos"
	"github.com/modulearn/backend/internal/data/repos/testutil"
	types "github.com/modulearn/backend/internal/domain"
)

func TestItemProgressGetOrCreateIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	tenantID := uuid.New()
	user := testutil.SeedUser(t, ctx, tx, tenantID, uuid.New().String()+"@test.local")
	course := testutil.SeedCourse(t, ctx, tx, tenantID)
	module := testutil.SeedModule(t, ctx, tx, course.ID, 0)
	item := testutil.SeedItem(t, ctx, tx, module.ID, types.ItemKindContent, uuid.New(), 0)

	repo := repos.NewItemProgressRepo(db, log)

	first, err := repo.GetOrCreate(ctx, tx, user.ID, item.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first.Status != types.ProgressNotStarted {
		t.Fatalf("fresh row should be not_started, got %s", first.Status)
	}

	second, err := repo.GetOrCreate(ctx, tx, user.ID, item.ID)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("GetOrCreate must return the same row, got %s and %s", first.ID, second.ID)
	}

	rows, err := repo.GetByUserAndItemIDs(ctx, tx, user.ID, []uuid.UUID{item.ID})
	if err != nil {
		t.Fatalf("GetByUserAndItemIDs failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one progress row, got %d", len(rows))
	}
}

func TestItemProgressSaveRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	tenantID := uuid.New()
	user := testutil.SeedUser(t, ctx, tx, tenantID, uuid.New().String()+"@test.local")
	course := testutil.SeedCourse(t, ctx, tx, tenantID)
	module := testutil.SeedModule(t, ctx, tx, course.ID, 0)
	item := testutil.SeedItem(t, ctx, tx, module.ID, types.ItemKindQuiz, uuid.New(), 0)

	repo := repos.NewItemProgressRepo(db, log)

	row, err := repo.GetOrCreate(ctx, tx, user.ID, item.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	score := 85.5
	row.Status = types.ProgressCompleted
	row.ProgressPercentage = 100
	row.Score = &score
	row.BestScore = &score
	row.Attempts = 1
	if err := repo.Save(ctx, tx, row); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := repo.GetByUserAndItemID(ctx, tx, user.ID, item.ID)
	if err != nil {
		t.Fatalf("GetByUserAndItemID failed: %v", err)
	}
	if reloaded.Status != types.ProgressCompleted || reloaded.BestScore == nil || *reloaded.BestScore != 85.5 {
		t.Fatalf("saved state did not round-trip: %+v", reloaded)
	}
}

func TestItemProgressFullDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	tenantID := uuid.New()
	user := testutil.SeedUser(t, ctx, tx, tenantID, uuid.New().String()+"@test.local")
	course := testutil.SeedCourse(t, ctx, tx, tenantID)
	module := testutil.SeedModule(t, ctx, tx, course.ID, 0)
	itemA := testutil.SeedItem(t, ctx, tx, module.ID, types.ItemKindContent, uuid.New(), 0)
	itemB := testutil.SeedItem(t, ctx, tx, module.ID, types.ItemKindContent, uuid.New(), 1)

	repo := repos.NewItemProgressRepo(db, log)
	if _, err := repo.GetOrCreate(ctx, tx, user.ID, itemA.ID); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := repo.GetOrCreate(ctx, tx, user.ID, itemB.ID); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := repo.FullDeleteByUserAndItemIDs(ctx, tx, user.ID, []uuid.UUID{itemA.ID, itemB.ID}); err != nil {
		t.Fatalf("FullDeleteByUserAndItemIDs failed: %v", err)
	}
	rows, err := repo.GetByUserAndItemIDs(ctx, tx, user.ID, []uuid.UUID{itemA.ID, itemB.ID})
	if err != nil {
		t.Fatalf("GetByUserAndItemIDs failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows should be hard-deleted, got %d", len(rows))
	}

	// A fresh GetOrCreate after the wipe starts over at not_started.
	fresh, err := repo.GetOrCreate(ctx, tx, user.ID, itemA.ID)
	if err != nil {
		t.Fatalf("GetOrCreate after delete failed: %v", err)
	}
	if fresh.Status != types.ProgressNotStarted || fresh.Attempts != 0 {
		t.Fatalf("post-reset row should be pristine: %+v", fresh)
	}
}
