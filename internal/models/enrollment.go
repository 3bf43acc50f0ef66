package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "PENDING"
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment links a learner to a course. The unique index guarantees at
// most one row per (learner, course) pair.
type Enrollment struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	LearnerID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_learner_course" json:"learner_id"`
	Learner   *User            `gorm:"foreignKey:LearnerID" json:"learner,omitempty"`
	CourseID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_learner_course" json:"course_id"`
	Course    *Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Status    EnrollmentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Progress  float64          `gorm:"type:numeric(5,2);not null;default:0" json:"progress"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (enrollment *Enrollment) BeforeCreate(tx *gorm.DB) (err error) {
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	return
}
