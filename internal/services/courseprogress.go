package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulearn/backend/internal/data/repos"
	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/dbctx"
	"github.com/modulearn/backend/internal/platform/logger"
)

// CourseAggregator recomputes a user's course progress from its modules'
// progress rows, in the same unit of work as the module recompute that
// triggered it. Only active, non-deleted modules contribute.
type CourseAggregator interface {
	Recompute(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.CourseProgress, error)
}

type courseAggregator struct {
	db             *gorm.DB
	log            *logger.Logger
	moduleRepo     repos.CourseModuleRepo
	itemRepo       repos.CourseItemRepo
	moduleProgRepo repos.ModuleProgressRepo
	progRepo       repos.CourseProgressRepo
}

func NewCourseAggregator(
	db *gorm.DB,
	baseLog *logger.Logger,
	moduleRepo repos.CourseModuleRepo,
	itemRepo repos.CourseItemRepo,
	moduleProgRepo repos.ModuleProgressRepo,
	progRepo repos.CourseProgressRepo,
) CourseAggregator {
	return &courseAggregator{
		db:             db,
		log:            baseLog.With("service", "CourseAggregator"),
		moduleRepo:     moduleRepo,
		itemRepo:       itemRepo,
		moduleProgRepo: moduleProgRepo,
		progRepo:       progRepo,
	}
}

func (a *courseAggregator) Recompute(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.CourseProgress, error) {
	modules, err := a.moduleRepo.GetActiveByCourseID(dbc.Ctx, dbc.Tx, courseID)
	if err != nil {
		return nil, mapStorageError("course recompute load modules", err)
	}

	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	progressRows, err := a.moduleProgRepo.GetByUserAndModuleIDs(dbc.Ctx, dbc.Tx, userID, moduleIDs)
	if err != nil {
		return nil, mapStorageError("course recompute load module progress", err)
	}

	row, err := a.progRepo.GetOrCreate(dbc.Ctx, dbc.Tx, userID, courseID)
	if err != nil {
		return nil, mapStorageError("course recompute load course progress", err)
	}

	var (
		modulesCompleted int
		itemsCompleted   int
		totalItems       int
		timeSpent        int
		scoreSum         float64
		scoreCount       int
		anyStarted       bool
	)
	for _, p := range progressRows {
		if p.Status == types.ProgressCompleted {
			modulesCompleted++
		}
		if p.Status != types.ProgressNotStarted {
			anyStarted = true
		}
		itemsCompleted += p.ItemsCompleted
		totalItems += p.TotalItems
		timeSpent += p.TimeSpentSeconds
		// ScoredItems, not the mean itself, decides whether the module has
		// scores. A module whose items all scored zero still counts.
		if p.ScoredItems > 0 {
			scoreSum += p.ScorePercentage
			scoreCount++
		}
	}
	// Modules the user has not touched yet have no progress row but still
	// contribute their item count to the flattened total.
	flat, err := a.itemRepo.CountByModuleIDs(dbc.Ctx, dbc.Tx, moduleIDs)
	if err != nil {
		return nil, mapStorageError("course recompute count items", err)
	}
	if int(flat) > totalItems {
		totalItems = int(flat)
	}

	now := time.Now().UTC()
	totalModules := len(modules)
	row.TotalModulesCompleted = modulesCompleted
	row.TotalModules = totalModules
	row.TotalItemsCompleted = itemsCompleted
	row.TotalItems = totalItems
	row.TimeSpentSeconds = timeSpent
	if totalItems > 0 {
		row.ProgressPercentage = float64(itemsCompleted) / float64(totalItems) * 100
	} else {
		row.ProgressPercentage = 0
	}
	if scoreCount > 0 {
		row.ScorePercentage = scoreSum / float64(scoreCount)
	} else {
		row.ScorePercentage = 0
	}

	switch {
	case totalModules > 0 && modulesCompleted == totalModules:
		row.Status = types.ProgressCompleted
	case modulesCompleted > 0 || anyStarted:
		row.Status = types.ProgressInProgress
	default:
		row.Status = types.ProgressNotStarted
	}

	if row.Status != types.ProgressNotStarted && row.StartedAt == nil {
		row.StartedAt = &now
	}
	if row.Status == types.ProgressCompleted && row.CompletedAt == nil {
		row.CompletedAt = &now
	}
	// Bumped on every recompute, independent of status change.
	row.LastAccessedAt = &now

	if err := a.progRepo.Save(dbc.Ctx, dbc.Tx, row); err != nil {
		return nil, mapStorageError("course recompute save", err)
	}
	return row, nil
}

