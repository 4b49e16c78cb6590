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

// ModuleAggregator recomputes a user's module progress from its items'
// progress rows. Recompute always re-reads every sibling row instead of
// incrementing counters, which makes it idempotent and convergent under
// concurrent completions.
type ModuleAggregator interface {
	// Recompute runs inside the caller's unit of work and reports whether
	// this call transitioned the module into completed.
	Recompute(dbc dbctx.Context, userID, moduleID uuid.UUID) (*types.ModuleProgress, bool, error)
}

type moduleAggregator struct {
	db           *gorm.DB
	log          *logger.Logger
	itemRepo     repos.CourseItemRepo
	itemProgRepo repos.ItemProgressRepo
	progRepo     repos.ModuleProgressRepo
}

func NewModuleAggregator(
	db *gorm.DB,
	baseLog *logger.Logger,
	itemRepo repos.CourseItemRepo,
	itemProgRepo repos.ItemProgressRepo,
	progRepo repos.ModuleProgressRepo,
) ModuleAggregator {
	return &moduleAggregator{
		db:           db,
		log:          baseLog.With("service", "ModuleAggregator"),
		itemRepo:     itemRepo,
		itemProgRepo: itemProgRepo,
		progRepo:     progRepo,
	}
}

func (a *moduleAggregator) Recompute(dbc dbctx.Context, userID, moduleID uuid.UUID) (*types.ModuleProgress, bool, error) {
	items, err := a.itemRepo.GetByModuleIDs(dbc.Ctx, dbc.Tx, []uuid.UUID{moduleID})
	if err != nil {
		return nil, false, mapStorageError("module recompute load items", err)
	}

	itemIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}
	progressRows, err := a.itemProgRepo.GetByUserAndItemIDs(dbc.Ctx, dbc.Tx, userID, itemIDs)
	if err != nil {
		return nil, false, mapStorageError("module recompute load item progress", err)
	}

	row, err := a.progRepo.GetOrCreate(dbc.Ctx, dbc.Tx, userID, moduleID)
	if err != nil {
		return nil, false, mapStorageError("module recompute load module progress", err)
	}

	// Items without a progress row count as not_started.
	var (
		completed  int
		timeSpent  int
		scoreSum   float64
		scoreCount int
		anyStarted bool
	)
	for _, p := range progressRows {
		if p.Status == types.ProgressCompleted {
			completed++
		}
		if p.Status != types.ProgressNotStarted {
			anyStarted = true
		}
		timeSpent += p.TimeSpentSeconds
		if p.Score != nil {
			scoreSum += *p.Score
			scoreCount++
		}
	}

	now := time.Now().UTC()
	total := len(items)
	row.ItemsCompleted = completed
	row.TotalItems = total
	row.TimeSpentSeconds = timeSpent
	if total > 0 {
		row.ProgressPercentage = float64(completed) / float64(total) * 100
	} else {
		row.ProgressPercentage = 0
	}
	row.ScoredItems = scoreCount
	if scoreCount > 0 {
		row.ScorePercentage = scoreSum / float64(scoreCount)
	} else {
		row.ScorePercentage = 0
	}

	prevStatus := row.Status
	switch {
	case total > 0 && completed == total:
		row.Status = types.ProgressCompleted
	case completed > 0 || anyStarted:
		row.Status = types.ProgressInProgress
	default:
		row.Status = types.ProgressNotStarted
	}

	if row.Status != types.ProgressNotStarted && row.StartedAt == nil {
		row.StartedAt = &now
	}
	completedNow := row.Status == types.ProgressCompleted && prevStatus != types.ProgressCompleted
	if row.Status == types.ProgressCompleted && row.CompletedAt == nil {
		row.CompletedAt = &now
	}
	row.LastAccessedAt = &now

	if err := a.progRepo.Save(dbc.Ctx, dbc.Tx, row); err != nil {
		return nil, false, mapStorageError("module recompute save", err)
	}
	if completedNow {
		a.log.Info("Module completed", "module_id", moduleID, "user_id", userID)
	}
	return row, completedNow, nil
}
