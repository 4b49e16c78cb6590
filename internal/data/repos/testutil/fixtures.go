package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/modulearn/backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:       uuid.New(),
		TenantID: tenantID,
		Title:    "course",
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, position int) *types.CourseModule {
	tb.Helper()
	m := &types.CourseModule{
		ID:                 uuid.New(),
		CourseID:           courseID,
		Title:              "module",
		Position:           position,
		IsActive:           true,
		ApprovalPercentage: types.DefaultApprovalPercentage,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, kind types.ItemKind, referenceID uuid.UUID, position int) *types.CourseItem {
	tb.Helper()
	it := &types.CourseItem{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		Kind:        kind,
		ReferenceID: referenceID,
		Position:    position,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}

func SeedLessonContent(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, title string) *types.LessonContent {
	tb.Helper()
	lc := &types.LessonContent{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Title:       title,
		ContentType: "article",
	}
	if err := tx.WithContext(ctx).Create(lc).Error; err != nil {
		tb.Fatalf("seed lesson content: %v", err)
	}
	return lc
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, title string) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Title:         title,
		QuestionCount: 5,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		Status:   types.EnrollmentActive,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}
