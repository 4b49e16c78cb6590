package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultApprovalPercentage is the completion threshold a module must reach
// before the next module in the course unlocks.
const DefaultApprovalPercentage = 80

type CourseModule struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course             *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title              string         `gorm:"column:title;not null" json:"title"`
	Description        string         `gorm:"column:description" json:"description"`
	Position           int            `gorm:"column:position;not null;default:0" json:"position"`
	IsActive           bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ApprovalPercentage int            `gorm:"column:approval_percentage;not null;default:80" json:"approval_percentage"`
	Metadata           datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Items []*CourseItem `gorm:"foreignKey:ModuleID;references:ID" json:"items,omitempty"`
}

func (CourseModule) TableName() string { return "course_module" }
