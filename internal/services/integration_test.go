package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulearn/backend/internal/content"
	"github.com/modulearn/backend/internal/data/aggregates"
	"github.com/modulearn/backend/internal/data/repos"
	"github.com/modulearn/backend/internal/data/repos/testutil"
	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/logger"
	"github.com/modulearn/backend/internal/services"
)

type stack struct {
	cascade   services.CascadeCoordinator
	assembler services.ViewAssembler
}

// newStack wires the full service graph against the given handle. Tests pass
// the rollback transaction as the handle so nothing leaks.
func newStack(t *testing.T, tx *gorm.DB, log *logger.Logger) *stack {
	t.Helper()
	courseRepo := repos.NewCourseRepo(tx, log)
	moduleRepo := repos.NewCourseModuleRepo(tx, log)
	itemRepo := repos.NewCourseItemRepo(tx, log)
	itemProgRepo := repos.NewItemProgressRepo(tx, log)
	moduleProgRepo := repos.NewModuleProgressRepo(tx, log)
	courseProgRepo := repos.NewCourseProgressRepo(tx, log)
	enrollRepo := repos.NewEnrollmentRepo(tx, log)

	txRunner := aggregates.NewGormTxRunner(tx)
	itemStore := services.NewItemProgressStore(tx, log, itemProgRepo)
	moduleAgg := services.NewModuleAggregator(tx, log, itemRepo, itemProgRepo, moduleProgRepo)
	courseAgg := services.NewCourseAggregator(tx, log, moduleRepo, itemRepo, moduleProgRepo, courseProgRepo)
	resolver := content.NewResolver(log, content.DefaultRegistry(tx, log))

	return &stack{
		cascade: services.NewCascadeCoordinator(
			tx, log, txRunner, itemStore, moduleAgg, courseAgg,
			itemRepo, moduleRepo, itemProgRepo, moduleProgRepo, courseProgRepo,
		),
		assembler: services.NewViewAssembler(
			tx, log, courseRepo, enrollRepo, itemProgRepo, moduleProgRepo, courseProgRepo, resolver,
		),
	}
}

func TestCourseLifecycleEndToEnd(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	tenantID := uuid.New()
	user := testutil.SeedUser(t, ctx, tx, tenantID, uuid.New().String()+"@test.local")
	course := testutil.SeedCourse(t, ctx, tx, tenantID)
	modA := testutil.SeedModule(t, ctx, tx, course.ID, 0)
	modB := testutil.SeedModule(t, ctx, tx, course.ID, 1)

	lesson := testutil.SeedLessonContent(t, ctx, tx, tenantID, "Welcome")
	quiz := testutil.SeedQuiz(t, ctx, tx, tenantID, "Checkpoint")
	itemA1 := testutil.SeedItem(t, ctx, tx, modA.ID, types.ItemKindContent, lesson.ID, 0)
	itemA2 := testutil.SeedItem(t, ctx, tx, modA.ID, types.ItemKindQuiz, quiz.ID, 1)
	itemB1 := testutil.SeedItem(t, ctx, tx, modB.ID, types.ItemKindContent, uuid.New(), 0) // dangling ref

	testutil.SeedEnrollment(t, ctx, tx, user.ID, course.ID)

	s := newStack(t, tx, log)

	// Fresh view: first item active, everything else locked, dangling
	// reference renders as fallback.
	view, err := s.assembler.AssembleCourseView(ctx, user.ID, tenantID, course.ID)
	if err != nil {
		t.Fatalf("AssembleCourseView failed: %v", err)
	}
	if !view.Enrolled {
		t.Fatalf("expected enrolled view")
	}
	if view.ActiveItemID == nil || *view.ActiveItemID != itemA1.ID {
		t.Fatalf("active item should be the first item")
	}
	if view.Modules[0].Items[0].Title != "Welcome" {
		t.Fatalf("resolved title expected Welcome, got %q", view.Modules[0].Items[0].Title)
	}
	if view.Modules[0].Items[1].Locked != true {
		t.Fatalf("second item should be locked")
	}
	if !view.Modules[1].Locked {
		t.Fatalf("second module should be locked until the first hits its threshold")
	}
	if view.Modules[1].Items[0].Title != types.FallbackTitle {
		t.Fatalf("dangling reference should render %q, got %q", types.FallbackTitle, view.Modules[1].Items[0].Title)
	}

	// Complete module A. The cascade keeps item, module and course rows
	// consistent at each step.
	if _, err := s.cascade.CompleteItem(ctx, user.ID, itemA1.ID, services.CompletionData{TimeSpentSeconds: 60}); err != nil {
		t.Fatalf("CompleteItem A1 failed: %v", err)
	}
	score := 88.0
	result, err := s.cascade.CompleteItem(ctx, user.ID, itemA2.ID, services.CompletionData{Score: &score})
	if err != nil {
		t.Fatalf("CompleteItem A2 failed: %v", err)
	}
	if result.Module.Status != types.ProgressCompleted || result.Module.ProgressPercentage != 100 {
		t.Fatalf("module A should be completed, got %s/%v", result.Module.Status, result.Module.ProgressPercentage)
	}
	if result.Course.TotalModulesCompleted != 1 {
		t.Fatalf("course should count one completed module, got %d", result.Course.TotalModulesCompleted)
	}

	// Module B unlocks now that module A is at 100 >= 80.
	view, err = s.assembler.AssembleCourseView(ctx, user.ID, tenantID, course.ID)
	if err != nil {
		t.Fatalf("reassemble failed: %v", err)
	}
	if view.Modules[1].Locked {
		t.Fatalf("module B should be unlocked after module A completion")
	}
	if view.ActiveItemID == nil || *view.ActiveItemID != itemB1.ID {
		t.Fatalf("active item should advance into module B")
	}

	// Finish the course.
	final, err := s.cascade.CompleteItem(ctx, user.ID, itemB1.ID, services.CompletionData{})
	if err != nil {
		t.Fatalf("CompleteItem B1 failed: %v", err)
	}
	if final.Course.Status != types.ProgressCompleted {
		t.Fatalf("course should be completed, got %s", final.Course.Status)
	}

	// Reset wipes all three levels; reassembly starts from scratch.
	if err := s.cascade.ResetCourseProgress(ctx, user.ID, course.ID); err != nil {
		t.Fatalf("ResetCourseProgress failed: %v", err)
	}
	view, err = s.assembler.AssembleCourseView(ctx, user.ID, tenantID, course.ID)
	if err != nil {
		t.Fatalf("post-reset assemble failed: %v", err)
	}
	if view.Progress.Status != types.ProgressNotStarted {
		t.Fatalf("post-reset course should be not_started, got %s", view.Progress.Status)
	}
	if view.ActiveItemID == nil || *view.ActiveItemID != itemA1.ID {
		t.Fatalf("post-reset active item should be back at the start")
	}
	if !view.Modules[1].Locked {
		t.Fatalf("post-reset module B should be locked again")
	}
}

func TestUnenrolledViewIsFullyLocked(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	tenantID := uuid.New()
	user := testutil.SeedUser(t, ctx, tx, tenantID, uuid.New().String()+"@test.local")
	course := testutil.SeedCourse(t, ctx, tx, tenantID)
	mod := testutil.SeedModule(t, ctx, tx, course.ID, 0)
	lesson := testutil.SeedLessonContent(t, ctx, tx, tenantID, "Preview")
	testutil.SeedItem(t, ctx, tx, mod.ID, types.ItemKindContent, lesson.ID, 0)

	s := newStack(t, tx, log)
	view, err := s.assembler.AssembleCourseView(ctx, user.ID, tenantID, course.ID)
	if err != nil {
		t.Fatalf("AssembleCourseView failed: %v", err)
	}
	if view.Enrolled {
		t.Fatalf("user is not enrolled")
	}
	if view.ActiveItemID != nil {
		t.Fatalf("unenrolled view has no active item")
	}
	if !view.Modules[0].Locked || !view.Modules[0].Items[0].Locked {
		t.Fatalf("unenrolled view locks everything")
	}
	// Content still resolves for preview purposes.
	if view.Modules[0].Items[0].Title != "Preview" {
		t.Fatalf("unenrolled view still shows resolved titles, got %q", view.Modules[0].Items[0].Title)
	}
	if view.Progress != nil {
		t.Fatalf("unenrolled view must not materialize progress rows")
	}
}
