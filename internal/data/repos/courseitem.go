package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/logger"
)

type CourseItemRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.CourseItem, error)
	GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.CourseItem, error)
	// GetParentModuleID resolves the module an item belongs to. An item
	// without a resolvable parent is data corruption, surfaced as not-found.
	GetParentModuleID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (uuid.UUID, error)
	CountByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) (int64, error)
}

type courseItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseItemRepo(db *gorm.DB, baseLog *logger.Logger) CourseItemRepo {
	return &courseItemRepo{db: db, log: baseLog.With("repo", "CourseItemRepo")}
}

func (r *courseItemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.CourseItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseItem
	if len(itemIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", itemIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseItemRepo) GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.CourseItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseItem
	if len(moduleIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("module_id IN ?", moduleIDs).
		Order("module_id, position ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseItemRepo) CountByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(moduleIDs) == 0 {
		return 0, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CourseItem{}).
		Where("module_id IN ?", moduleIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *courseItemRepo) GetParentModuleID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}

	var item types.CourseItem
	if err := transaction.WithContext(ctx).
		Select("id", "module_id").
		Where("id = ?", itemID).
		First(&item).Error; err != nil {
		return uuid.Nil, err
	}
	return item.ModuleID, nil
}
