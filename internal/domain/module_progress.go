package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModuleProgress struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_module,unique" json:"user_id"`
	ModuleID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_module,unique" json:"module_id"`
	Module             *CourseModule  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Status             ProgressStatus `gorm:"column:status;not null;default:'not_started'" json:"status"`
	ProgressPercentage float64        `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	ScorePercentage    float64        `gorm:"column:score_percentage;not null;default:0" json:"score_percentage"`
	// ScoredItems distinguishes "no scored items yet" from a genuine mean
	// score of zero when the course mean is taken over modules.
	ScoredItems        int            `gorm:"column:scored_items;not null;default:0" json:"scored_items"`
	ItemsCompleted     int            `gorm:"column:items_completed;not null;default:0" json:"items_completed"`
	TotalItems         int            `gorm:"column:total_items;not null;default:0" json:"total_items"`
	TimeSpentSeconds   int            `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`
	StartedAt          *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastAccessedAt     *time.Time     `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ModuleProgress) TableName() string { return "module_progress" }
