package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/modulearn/backend/internal/data/repos"
	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/dbctx"
	"github.com/modulearn/backend/internal/platform/logger"
)

// AutoCompleteThreshold is the reported percentage at which partial progress
// flips an item to completed without an explicit complete call (video players
// rarely report a clean 100).
const AutoCompleteThreshold = 97.0

// CompletionData carries the optional payload of a completion report.
type CompletionData struct {
	Score            *float64       `json:"score,omitempty"`
	TimeSpentSeconds int            `json:"time_spent_seconds,omitempty"`
	Responses        map[string]any `json:"responses,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// ItemProgressStore owns the item-level progress state machine:
// not_started → in_progress → {completed | skipped | failed}. Completed is
// re-enterable (retakes); progress percentage and best score never regress.
type ItemProgressStore interface {
	GetOrInit(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error)
	Start(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error)
	RecordPartialProgress(dbc dbctx.Context, userID, itemID uuid.UUID, pct float64, timeDeltaSeconds int) (*types.ItemProgress, error)
	Complete(dbc dbctx.Context, userID, itemID uuid.UUID, data CompletionData) (*types.ItemProgress, error)
	Skip(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error)
	Fail(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error)
}

type itemProgressStore struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ItemProgressRepo
}

func NewItemProgressStore(db *gorm.DB, baseLog *logger.Logger, repo repos.ItemProgressRepo) ItemProgressStore {
	return &itemProgressStore{
		db:   db,
		log:  baseLog.With("service", "ItemProgressStore"),
		repo: repo,
	}
}

func (s *itemProgressStore) GetOrInit(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	row, err := s.repo.GetOrCreate(dbc.Ctx, dbc.Tx, userID, itemID)
	if err != nil {
		return nil, mapStorageError("item progress get or init", err)
	}
	return row, nil
}

func (s *itemProgressStore) Start(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	row, err := s.GetOrInit(dbc, userID, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if row.Status == types.ProgressNotStarted {
		row.Status = types.ProgressInProgress
	}
	if row.StartedAt == nil {
		row.StartedAt = &now
	}
	row.LastAccessedAt = &now

	if err := s.repo.Save(dbc.Ctx, dbc.Tx, row); err != nil {
		return nil, mapStorageError("item progress start", err)
	}
	return row, nil
}

func (s *itemProgressStore) RecordPartialProgress(dbc dbctx.Context, userID, itemID uuid.UUID, pct float64, timeDeltaSeconds int) (*types.ItemProgress, error) {
	row, err := s.GetOrInit(dbc, userID, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	// A stale client report must never regress completion data.
	if pct > row.ProgressPercentage {
		row.ProgressPercentage = pct
	}
	if timeDeltaSeconds > 0 {
		row.TimeSpentSeconds += timeDeltaSeconds
	}
	if row.StartedAt == nil {
		row.StartedAt = &now
	}
	if row.Status == types.ProgressNotStarted {
		row.Status = types.ProgressInProgress
	}
	if pct >= AutoCompleteThreshold && row.Status != types.ProgressCompleted {
		row.Status = types.ProgressCompleted
		row.Attempts++
		if row.CompletedAt == nil {
			row.CompletedAt = &now
		}
	}
	row.LastAccessedAt = &now

	if err := s.repo.Save(dbc.Ctx, dbc.Tx, row); err != nil {
		return nil, mapStorageError("item progress partial update", err)
	}
	return row, nil
}

func (s *itemProgressStore) Complete(dbc dbctx.Context, userID, itemID uuid.UUID, data CompletionData) (*types.ItemProgress, error) {
	row, err := s.GetOrInit(dbc, userID, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	row.Status = types.ProgressCompleted
	row.ProgressPercentage = 100
	row.Attempts++
	if row.StartedAt == nil {
		row.StartedAt = &now
	}
	if row.CompletedAt == nil {
		row.CompletedAt = &now
	}
	row.LastAccessedAt = &now

	if data.Score != nil {
		score := *data.Score
		row.Score = &score
		if row.BestScore == nil || score > *row.BestScore {
			row.BestScore = &score
		}
	}
	if data.TimeSpentSeconds > 0 {
		row.TimeSpentSeconds += data.TimeSpentSeconds
	}
	if merged := mergeMetadata(row.Metadata, data.Metadata, data.Responses); merged != nil {
		row.Metadata = merged
	}

	if err := s.repo.Save(dbc.Ctx, dbc.Tx, row); err != nil {
		return nil, mapStorageError("item progress complete", err)
	}
	return row, nil
}

func (s *itemProgressStore) Skip(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	return s.terminal(dbc, userID, itemID, types.ProgressSkipped)
}

func (s *itemProgressStore) Fail(dbc dbctx.Context, userID, itemID uuid.UUID) (*types.ItemProgress, error) {
	return s.terminal(dbc, userID, itemID, types.ProgressFailed)
}

func (s *itemProgressStore) terminal(dbc dbctx.Context, userID, itemID uuid.UUID, status types.ProgressStatus) (*types.ItemProgress, error) {
	row, err := s.GetOrInit(dbc, userID, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	row.Status = status
	row.LastAccessedAt = &now
	if row.StartedAt == nil {
		row.StartedAt = &now
	}

	if err := s.repo.Save(dbc.Ctx, dbc.Tx, row); err != nil {
		return nil, mapStorageError("item progress terminal update", err)
	}
	return row, nil
}

func mergeMetadata(existing datatypes.JSON, extra ...map[string]any) datatypes.JSON {
	base := map[string]any{}
	if len(existing) > 0 {
		_ = json.Unmarshal(existing, &base)
	}
	changed := false
	for _, m := range extra {
		for k, v := range m {
			base[k] = v
			changed = true
		}
	}
	if !changed {
		return nil
	}
	raw, err := json.Marshal(base)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
