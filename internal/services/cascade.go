package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulearn/backend/internal/data/aggregates"
	"github.com/modulearn/backend/internal/data/repos"
	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/dbctx"
	"github.com/modulearn/backend/internal/platform/logger"
)

// CascadeResult is the state of all three ledger levels after one cascade.
type CascadeResult struct {
	Item   *types.ItemProgress   `json:"item"`
	Module *types.ModuleProgress `json:"module"`
	Course *types.CourseProgress `json:"course"`
}

// CascadeCoordinator orchestrates progress changes: item write, then module
// recompute, then course recompute, all inside one transaction. A failure at
// any step rolls back the whole chain, so a completed item can never coexist
// with stale aggregates.
type CascadeCoordinator interface {
	StartItem(ctx context.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error)
	CompleteItem(ctx context.Context, userID, itemID uuid.UUID, data CompletionData) (*CascadeResult, error)
	UpdateItemPartialProgress(ctx context.Context, userID, itemID uuid.UUID, pct float64, timeDeltaSeconds int) (*CascadeResult, error)
	// ResetCourseProgress deletes every item/module/course progress row for
	// the user+course pair, fully re-initializing state.
	ResetCourseProgress(ctx context.Context, userID, courseID uuid.UUID) error
}

type cascadeCoordinator struct {
	db         *gorm.DB
	log        *logger.Logger
	txRunner   aggregates.TxRunner
	items      ItemProgressStore
	moduleAgg  ModuleAggregator
	courseAgg  CourseAggregator
	itemRepo   repos.CourseItemRepo
	moduleRepo repos.CourseModuleRepo

	itemProgRepo   repos.ItemProgressRepo
	moduleProgRepo repos.ModuleProgressRepo
	courseProgRepo repos.CourseProgressRepo
}

func NewCascadeCoordinator(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRunner aggregates.TxRunner,
	items ItemProgressStore,
	moduleAgg ModuleAggregator,
	courseAgg CourseAggregator,
	itemRepo repos.CourseItemRepo,
	moduleRepo repos.CourseModuleRepo,
	itemProgRepo repos.ItemProgressRepo,
	moduleProgRepo repos.ModuleProgressRepo,
	courseProgRepo repos.CourseProgressRepo,
) CascadeCoordinator {
	return &cascadeCoordinator{
		db:             db,
		log:            baseLog.With("service", "CascadeCoordinator"),
		txRunner:       txRunner,
		items:          items,
		moduleAgg:      moduleAgg,
		courseAgg:      courseAgg,
		itemRepo:       itemRepo,
		moduleRepo:     moduleRepo,
		itemProgRepo:   itemProgRepo,
		moduleProgRepo: moduleProgRepo,
		courseProgRepo: courseProgRepo,
	}
}

func (c *cascadeCoordinator) StartItem(ctx context.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	var row *types.ItemProgress
	err := c.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		row, err = c.items.Start(dbc, userID, itemID)
		return err
	})
	if err != nil {
		return nil, mapStorageError("start item", err)
	}
	return row, nil
}

func (c *cascadeCoordinator) CompleteItem(ctx context.Context, userID, itemID uuid.UUID, data CompletionData) (*CascadeResult, error) {
	return c.cascade(ctx, userID, itemID, func(dbc dbctx.Context) (*types.ItemProgress, error) {
		return c.items.Complete(dbc, userID, itemID, data)
	})
}

func (c *cascadeCoordinator) UpdateItemPartialProgress(ctx context.Context, userID, itemID uuid.UUID, pct float64, timeDeltaSeconds int) (*CascadeResult, error) {
	// Partial progress can flip a module/course from not_started to
	// in_progress, so the aggregators run even when the item stays short of
	// completed.
	return c.cascade(ctx, userID, itemID, func(dbc dbctx.Context) (*types.ItemProgress, error) {
		return c.items.RecordPartialProgress(dbc, userID, itemID, pct, timeDeltaSeconds)
	})
}

func (c *cascadeCoordinator) cascade(ctx context.Context, userID, itemID uuid.UUID, write func(dbc dbctx.Context) (*types.ItemProgress, error)) (*CascadeResult, error) {
	result := &CascadeResult{}
	err := c.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		itemRow, err := write(dbc)
		if err != nil {
			return err
		}
		result.Item = itemRow

		// An absent parent is data corruption; anything else stays unwrapped
		// so the transaction runner can still classify it as retryable.
		moduleID, err := c.itemRepo.GetParentModuleID(dbc.Ctx, dbc.Tx, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvalidStateError("item has no resolvable parent module")
		}
		if err != nil {
			return err
		}

		moduleRow, _, err := c.moduleAgg.Recompute(dbc, userID, moduleID)
		if err != nil {
			return err
		}
		result.Module = moduleRow

		modules, err := c.moduleRepo.GetByIDs(dbc.Ctx, dbc.Tx, []uuid.UUID{moduleID})
		if err != nil {
			return err
		}
		if len(modules) == 0 {
			return InvalidStateError("module has no resolvable parent course")
		}

		courseRow, err := c.courseAgg.Recompute(dbc, userID, modules[0].CourseID)
		if err != nil {
			return err
		}
		result.Course = courseRow
		return nil
	})
	if err != nil {
		c.log.Error("Cascade failed, rolled back", "error", err, "item_id", itemID, "user_id", userID)
		return nil, mapStorageError("progress cascade", err)
	}
	return result, nil
}

func (c *cascadeCoordinator) ResetCourseProgress(ctx context.Context, userID, courseID uuid.UUID) error {
	err := c.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		modules, err := c.moduleRepo.GetByCourseID(dbc.Ctx, dbc.Tx, courseID)
		if err != nil {
			return err
		}
		moduleIDs := make([]uuid.UUID, 0, len(modules))
		for _, m := range modules {
			moduleIDs = append(moduleIDs, m.ID)
		}

		items, err := c.itemRepo.GetByModuleIDs(dbc.Ctx, dbc.Tx, moduleIDs)
		if err != nil {
			return err
		}
		itemIDs := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			itemIDs = append(itemIDs, item.ID)
		}

		if err := c.itemProgRepo.FullDeleteByUserAndItemIDs(dbc.Ctx, dbc.Tx, userID, itemIDs); err != nil {
			return err
		}
		if err := c.moduleProgRepo.FullDeleteByUserAndModuleIDs(dbc.Ctx, dbc.Tx, userID, moduleIDs); err != nil {
			return err
		}
		return c.courseProgRepo.FullDeleteByUserAndCourseID(dbc.Ctx, dbc.Tx, userID, courseID)
	})
	if err != nil {
		return mapStorageError("reset course progress", err)
	}
	c.log.Info("Course progress reset", "course_id", courseID, "user_id", userID)
	return nil
}
