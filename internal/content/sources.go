package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/logger"
)

// GORM-backed sources for the content kinds served out of the shared store.
// Each selects display columns only.

func DefaultRegistry(db *gorm.DB, baseLog *logger.Logger) Registry {
	return Registry{
		types.ItemKindContent:  NewLessonContentSource(db, baseLog),
		types.ItemKindForum:    NewForumSource(db, baseLog),
		types.ItemKindTask:     NewTaskSource(db, baseLog),
		types.ItemKindQuiz:     NewQuizSource(db, baseLog),
		types.ItemKindSurvey:   NewSurveySource(db, baseLog),
		types.ItemKindActivity: NewActivitySource(db, baseLog),
	}
}

type lessonContentSource struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonContentSource(db *gorm.DB, baseLog *logger.Logger) Source {
	return &lessonContentSource{db: db, log: baseLog.With("source", "LessonContentSource")}
}

func (s *lessonContentSource) FindDisplayByIDs(ctx context.Context, tenantID uuid.UUID, referenceIDs []uuid.UUID) ([]Display, error) {
	var rows []*types.LessonContent
	if len(referenceIDs) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).
		Select("id", "title", "description", "content_type", "duration_seconds").
		Where("tenant_id = ? AND id IN ?", tenantID, referenceIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Display, 0, len(rows))
	for _, row := range rows {
		out = append(out, Display{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			KindFields: map[string]any{
				"content_type":     row.ContentType,
				"duration_seconds": row.DurationSeconds,
			},
		})
	}
	return out, nil
}

type forumSource struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewForumSource(db *gorm.DB, baseLog *logger.Logger) Source {
	return &forumSource{db: db, log: baseLog.With("source", "ForumSource")}
}

func (s *forumSource) FindDisplayByIDs(ctx context.Context, tenantID uuid.UUID, referenceIDs []uuid.UUID) ([]Display, error) {
	var rows []*types.Forum
	if len(referenceIDs) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).
		Select("id", "title", "description", "thread_count").
		Where("tenant_id = ? AND id IN ?", tenantID, referenceIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Display, 0, len(rows))
	for _, row := range rows {
		out = append(out, Display{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			KindFields: map[string]any{
				"thread_count": row.ThreadCount,
			},
		})
	}
	return out, nil
}

type taskSource struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskSource(db *gorm.DB, baseLog *logger.Logger) Source {
	return &taskSource{db: db, log: baseLog.With("source", "TaskSource")}
}

func (s *taskSource) FindDisplayByIDs(ctx context.Context, tenantID uuid.UUID, referenceIDs []uuid.UUID) ([]Display, error) {
	var rows []*types.CourseTask
	if len(referenceIDs) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).
		Select("id", "title", "description", "due_at", "max_score").
		Where("tenant_id = ? AND id IN ?", tenantID, referenceIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Display, 0, len(rows))
	for _, row := range rows {
		fields := map[string]any{
			"max_score": row.MaxScore,
		}
		if row.DueAt != nil {
			fields["due_at"] = row.DueAt
		}
		out = append(out, Display{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			KindFields:  fields,
		})
	}
	return out, nil
}

type quizSource struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizSource(db *gorm.DB, baseLog *logger.Logger) Source {
	return &quizSource{db: db, log: baseLog.With("source", "QuizSource")}
}

func (s *quizSource) FindDisplayByIDs(ctx context.Context, tenantID uuid.UUID, referenceIDs []uuid.UUID) ([]Display, error) {
	var rows []*types.Quiz
	if len(referenceIDs) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).
		Select("id", "title", "description", "question_count", "pass_score").
		Where("tenant_id = ? AND id IN ?", tenantID, referenceIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Display, 0, len(rows))
	for _, row := range rows {
		out = append(out, Display{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			KindFields: map[string]any{
				"question_count": row.QuestionCount,
				"pass_score":     row.PassScore,
			},
		})
	}
	return out, nil
}

type surveySource struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveySource(db *gorm.DB, baseLog *logger.Logger) Source {
	return &surveySource{db: db, log: baseLog.With("source", "SurveySource")}
}

func (s *surveySource) FindDisplayByIDs(ctx context.Context, tenantID uuid.UUID, referenceIDs []uuid.UUID) ([]Display, error) {
	var rows []*types.Survey
	if len(referenceIDs) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).
		Select("id", "title", "description", "question_count", "anonymous").
		Where("tenant_id = ? AND id IN ?", tenantID, referenceIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Display, 0, len(rows))
	for _, row := range rows {
		out = append(out, Display{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			KindFields: map[string]any{
				"question_count": row.QuestionCount,
				"anonymous":      row.Anonymous,
			},
		})
	}
	return out, nil
}

type activitySource struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivitySource(db *gorm.DB, baseLog *logger.Logger) Source {
	return &activitySource{db: db, log: baseLog.With("source", "ActivitySource")}
}

func (s *activitySource) FindDisplayByIDs(ctx context.Context, tenantID uuid.UUID, referenceIDs []uuid.UUID) ([]Display, error) {
	var rows []*types.CourseActivity
	if len(referenceIDs) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).
		Select("id", "title", "description", "activity_type", "duration_minutes").
		Where("tenant_id = ? AND id IN ?", tenantID, referenceIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Display, 0, len(rows))
	for _, row := range rows {
		out = append(out, Display{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			KindFields: map[string]any{
				"activity_type":    row.ActivityType,
				"duration_minutes": row.DurationMinutes,
			},
		})
	}
	return out, nil
}
