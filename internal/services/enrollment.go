package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulearn/backend/internal/data/repos"
	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/logger"
)

type EnrollmentService interface {
	// Enroll is idempotent: re-enrolling an already enrolled user returns the
	// existing enrollment untouched.
	Enroll(ctx context.Context, userID, tenantID, courseID uuid.UUID) (*types.Enrollment, error)
	GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
}

type enrollmentService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	enrollRepo repos.EnrollmentRepo
}

func NewEnrollmentService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, enrollRepo repos.EnrollmentRepo) EnrollmentService {
	return &enrollmentService{
		db:         db,
		log:        baseLog.With("service", "EnrollmentService"),
		courseRepo: courseRepo,
		enrollRepo: enrollRepo,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID, tenantID, courseID uuid.UUID) (*types.Enrollment, error) {
	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, mapStorageError("enroll load course", err)
	}
	if len(courses) == 0 || courses[0].TenantID != tenantID {
		return nil, NotFoundError("course not found")
	}
	if !courses[0].IsActive {
		return nil, InvalidStateError("course is not open for enrollment")
	}

	row, err := s.enrollRepo.GetOrCreate(ctx, nil, userID, courseID)
	if err != nil {
		return nil, mapStorageError("enroll", err)
	}
	s.log.Info("User enrolled", "course_id", courseID, "user_id", userID)
	return row, nil
}

func (s *enrollmentService) GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	row, err := s.enrollRepo.GetByUserAndCourseID(ctx, nil, userID, courseID)
	if err != nil {
		return nil, mapStorageError("load enrollment", err)
	}
	return row, nil
}
