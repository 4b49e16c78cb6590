package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/logger"
)

type ItemProgressRepo interface {
	GetByUserAndItemID(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) (*types.ItemProgress, error)
	GetByUserAndItemIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemIDs []uuid.UUID) ([]*types.ItemProgress, error)
	// GetOrCreate is the race-safe lazy initializer: insert-or-ignore on the
	// unique (user_id, item_id) pair, then re-read, so concurrent first
	// access by the same user cannot produce duplicate rows.
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) (*types.ItemProgress, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.ItemProgress) error
	FullDeleteByUserAndItemIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemIDs []uuid.UUID) error
}

type itemProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemProgressRepo(db *gorm.DB, baseLog *logger.Logger) ItemProgressRepo {
	return &itemProgressRepo{db: db, log: baseLog.With("repo", "ItemProgressRepo")}
}

func (r *itemProgressRepo) GetByUserAndItemID(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var row types.ItemProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *itemProgressRepo) GetByUserAndItemIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemIDs []uuid.UUID) ([]*types.ItemProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ItemProgress
	if userID == uuid.Nil || len(itemIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemProgressRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	fresh := &types.ItemProgress{
		ID:       uuid.New(),
		UserID:   userID,
		ItemID:   itemID,
		Status:   types.ProgressNotStarted,
		Metadata: datatypes.JSON([]byte("{}")),
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}

	return r.GetByUserAndItemID(ctx, transaction, userID, itemID)
}

func (r *itemProgressRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ItemProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *itemProgressRepo) FullDeleteByUserAndItemIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || len(itemIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Delete(&types.ItemProgress{}).Error; err != nil {
		return err
	}
	return nil
}
