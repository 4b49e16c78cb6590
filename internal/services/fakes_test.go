package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/dbctx"
)

// In-memory repo fakes for exercising the progress services without a
// database. Each fake holds rows for a single test user.

type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	f.calls++
	return fn(dbctx.Context{Ctx: ctx})
}

type fakeItemProgressRepo struct {
	rows map[uuid.UUID]*types.ItemProgress // keyed by item id
}

func newFakeItemProgressRepo() *fakeItemProgressRepo {
	return &fakeItemProgressRepo{rows: map[uuid.UUID]*types.ItemProgress{}}
}

func (f *fakeItemProgressRepo) GetByUserAndItemID(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	if row, ok := f.rows[itemID]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeItemProgressRepo) GetByUserAndItemIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemIDs []uuid.UUID) ([]*types.ItemProgress, error) {
	var out []*types.ItemProgress
	for _, id := range itemIDs {
		if row, ok := f.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeItemProgressRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	if row, ok := f.rows[itemID]; ok {
		return row, nil
	}
	row := &types.ItemProgress{
		ID:     uuid.New(),
		UserID: userID,
		ItemID: itemID,
		Status: types.ProgressNotStarted,
	}
	f.rows[itemID] = row
	return row, nil
}

func (f *fakeItemProgressRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ItemProgress) error {
	f.rows[row.ItemID] = row
	return nil
}

func (f *fakeItemProgressRepo) FullDeleteByUserAndItemIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemIDs []uuid.UUID) error {
	for _, id := range itemIDs {
		delete(f.rows, id)
	}
	return nil
}

type fakeModuleProgressRepo struct {
	rows map[uuid.UUID]*types.ModuleProgress // keyed by module id
}

func newFakeModuleProgressRepo() *fakeModuleProgressRepo {
	return &fakeModuleProgressRepo{rows: map[uuid.UUID]*types.ModuleProgress{}}
}

func (f *fakeModuleProgressRepo) GetByUserAndModuleID(ctx context.Context, tx *gorm.DB, userID, moduleID uuid.UUID) (*types.ModuleProgress, error) {
	if row, ok := f.rows[moduleID]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeModuleProgressRepo) GetByUserAndModuleIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, moduleIDs []uuid.UUID) ([]*types.ModuleProgress, error) {
	var out []*types.ModuleProgress
	for _, id := range moduleIDs {
		if row, ok := f.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeModuleProgressRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, moduleID uuid.UUID) (*types.ModuleProgress, error) {
	if row, ok := f.rows[moduleID]; ok {
		return row, nil
	}
	row := &types.ModuleProgress{
		ID:       uuid.New(),
		UserID:   userID,
		ModuleID: moduleID,
		Status:   types.ProgressNotStarted,
	}
	f.rows[moduleID] = row
	return row, nil
}

func (f *fakeModuleProgressRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ModuleProgress) error {
	f.rows[row.ModuleID] = row
	return nil
}

func (f *fakeModuleProgressRepo) FullDeleteByUserAndModuleIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, moduleIDs []uuid.UUID) error {
	for _, id := range moduleIDs {
		delete(f.rows, id)
	}
	return nil
}

type fakeCourseProgressRepo struct {
	rows map[uuid.UUID]*types.CourseProgress // keyed by course id
}

func newFakeCourseProgressRepo() *fakeCourseProgressRepo {
	return &fakeCourseProgressRepo{rows: map[uuid.UUID]*types.CourseProgress{}}
}

func (f *fakeCourseProgressRepo) GetByUserAndCourseID(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.CourseProgress, error) {
	if row, ok := f.rows[courseID]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourseProgressRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.CourseProgress, error) {
	if row, ok := f.rows[courseID]; ok {
		return row, nil
	}
	row := &types.CourseProgress{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		Status:   types.ProgressNotStarted,
	}
	f.rows[courseID] = row
	return row, nil
}

func (f *fakeCourseProgressRepo) Save(ctx context.Context, tx *gorm.DB, row *types.CourseProgress) error {
	f.rows[row.CourseID] = row
	return nil
}

func (f *fakeCourseProgressRepo) FullDeleteByUserAndCourseID(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) error {
	delete(f.rows, courseID)
	return nil
}

type fakeCourseItemRepo struct {
	items []*types.CourseItem

	// Injectable failures for exercising storage error paths.
	parentErr error
	countErr  error
}

func (f *fakeCourseItemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.CourseItem, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range itemIDs {
		want[id] = true
	}
	var out []*types.CourseItem
	for _, item := range f.items {
		if want[item.ID] {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeCourseItemRepo) GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.CourseItem, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range moduleIDs {
		want[id] = true
	}
	var out []*types.CourseItem
	for _, item := range f.items {
		if want[item.ModuleID] {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeCourseItemRepo) GetParentModuleID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (uuid.UUID, error) {
	if f.parentErr != nil {
		return uuid.Nil, f.parentErr
	}
	for _, item := range f.items {
		if item.ID == itemID {
			return item.ModuleID, nil
		}
	}
	return uuid.Nil, gorm.ErrRecordNotFound
}

func (f *fakeCourseItemRepo) CountByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	items, _ := f.GetByModuleIDs(ctx, tx, moduleIDs)
	return int64(len(items)), nil
}

type fakeCourseModuleRepo struct {
	modules []*types.CourseModule
}

func (f *fakeCourseModuleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.CourseModule, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range moduleIDs {
		want[id] = true
	}
	var out []*types.CourseModule
	for _, mod := range f.modules {
		if want[mod.ID] {
			out = append(out, mod)
		}
	}
	return out, nil
}

func (f *fakeCourseModuleRepo) GetActiveByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error) {
	var out []*types.CourseModule
	for _, mod := range f.modules {
		if mod.CourseID == courseID && mod.IsActive {
			out = append(out, mod)
		}
	}
	return out, nil
}

func (f *fakeCourseModuleRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error) {
	var out []*types.CourseModule
	for _, mod := range f.modules {
		if mod.CourseID == courseID {
			out = append(out, mod)
		}
	}
	return out, nil
}
