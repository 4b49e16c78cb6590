package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemKind is the closed set of content kinds an item can point at. The
// reference id is opaque to this engine; each kind is resolved through its
// owning subsystem's display lookup.
type ItemKind string

const (
	ItemKindContent  ItemKind = "content"
	ItemKindForum    ItemKind = "forum"
	ItemKindTask     ItemKind = "task"
	ItemKindQuiz     ItemKind = "quiz"
	ItemKindSurvey   ItemKind = "survey"
	ItemKindActivity ItemKind = "activity"
)

// Kinds lists every supported kind in registry order.
func Kinds() []ItemKind {
	return []ItemKind{
		ItemKindContent,
		ItemKindForum,
		ItemKindTask,
		ItemKindQuiz,
		ItemKindSurvey,
		ItemKindActivity,
	}
}

func (k ItemKind) Valid() bool {
	switch k {
	case ItemKindContent, ItemKindForum, ItemKindTask, ItemKindQuiz, ItemKindSurvey, ItemKindActivity:
		return true
	default:
		return false
	}
}

type CourseItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ModuleID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"module_id"`
	Module      *CourseModule  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Kind        ItemKind       `gorm:"column:kind;not null" json:"kind"`
	ReferenceID uuid.UUID      `gorm:"type:uuid;not null;index" json:"reference_id"`
	Position    int            `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseItem) TableName() string { return "course_item" }
