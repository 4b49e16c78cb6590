package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulearn/backend/internal/data/repos"
	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/logger"
)

// AuthoringService is the read side of the course structure: courses, modules
// and items as authored, without any per-user state.
type AuthoringService interface {
	GetCourseWithTree(ctx context.Context, courseID, tenantID uuid.UUID) (*types.Course, error)
	ListCourses(ctx context.Context, tenantID uuid.UUID) ([]*types.Course, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*types.CourseItem, error)
}

type authoringService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	itemRepo   repos.CourseItemRepo
}

func NewAuthoringService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, itemRepo repos.CourseItemRepo) AuthoringService {
	return &authoringService{
		db:         db,
		log:        baseLog.With("service", "AuthoringService"),
		courseRepo: courseRepo,
		itemRepo:   itemRepo,
	}
}

func (s *authoringService) GetCourseWithTree(ctx context.Context, courseID, tenantID uuid.UUID) (*types.Course, error) {
	course, err := s.courseRepo.GetWithTree(ctx, nil, courseID, tenantID)
	if err != nil {
		return nil, mapStorageError("load course tree", err)
	}
	return course, nil
}

func (s *authoringService) ListCourses(ctx context.Context, tenantID uuid.UUID) ([]*types.Course, error) {
	courses, err := s.courseRepo.GetByTenantID(ctx, nil, tenantID)
	if err != nil {
		return nil, mapStorageError("list courses", err)
	}
	return courses, nil
}

func (s *authoringService) GetItem(ctx context.Context, itemID uuid.UUID) (*types.CourseItem, error) {
	items, err := s.itemRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
	if err != nil {
		return nil, mapStorageError("load item", err)
	}
	if len(items) == 0 {
		return nil, NotFoundError("course item not found")
	}
	return items[0], nil
}
