package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressSkipped    ProgressStatus = "skipped"
	ProgressFailed     ProgressStatus = "failed"
)

// Terminal reports whether the status blocks further forward transitions for
// gating purposes. Completed is not terminal: retakes may re-complete with a
// new score.
func (s ProgressStatus) Terminal() bool {
	return s == ProgressSkipped || s == ProgressFailed
}

type ItemProgress struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_item,unique" json:"user_id"`
	ItemID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_item,unique" json:"item_id"`
	Item               *CourseItem    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`
	Status             ProgressStatus `gorm:"column:status;not null;default:'not_started'" json:"status"`
	ProgressPercentage float64        `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	Score              *float64       `gorm:"column:score" json:"score,omitempty"`
	BestScore          *float64       `gorm:"column:best_score" json:"best_score,omitempty"`
	TimeSpentSeconds   int            `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`
	Attempts           int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	StartedAt          *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastAccessedAt     *time.Time     `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	Metadata           datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ItemProgress) TableName() string { return "item_progress" }
