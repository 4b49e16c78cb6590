package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentSuspended EnrollmentStatus = "suspended"
)

type Enrollment struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_user_enrollment,unique" json:"user_id"`
	CourseID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_user_enrollment,unique" json:"course_id"`
	Course     *Course          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Status     EnrollmentStatus `gorm:"column:status;not null;default:'active'" json:"status"`
	EnrolledAt time.Time        `gorm:"column:enrolled_at;not null;default:now()" json:"enrolled_at"`
	CreatedAt  time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (Enrollment) TableName() string { return "enrollment" }
