package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseProgress struct {
	ID                    uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID                uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_course,unique" json:"user_id"`
	CourseID              uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_course,unique" json:"course_id"`
	Course                *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Status                ProgressStatus `gorm:"column:status;not null;default:'not_started'" json:"status"`
	ProgressPercentage    float64        `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	ScorePercentage       float64        `gorm:"column:score_percentage;not null;default:0" json:"score_percentage"`
	TotalModulesCompleted int            `gorm:"column:total_modules_completed;not null;default:0" json:"total_modules_completed"`
	TotalModules          int            `gorm:"column:total_modules;not null;default:0" json:"total_modules"`
	TotalItemsCompleted   int            `gorm:"column:total_items_completed;not null;default:0" json:"total_items_completed"`
	TotalItems            int            `gorm:"column:total_items;not null;default:0" json:"total_items"`
	TimeSpentSeconds      int            `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`
	StartedAt             *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt           *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastAccessedAt        *time.Time     `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	CreatedAt             time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseProgress) TableName() string { return "course_progress" }
