package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseReview is limited to one per (learner, course) pair.
type CourseReview struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_reviews_learner_course" json:"learner_id"`
	Learner   *User     `gorm:"foreignKey:LearnerID" json:"learner,omitempty"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_reviews_learner_course" json:"course_id"`
	Course    *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (review *CourseReview) BeforeCreate(tx *gorm.DB) (err error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	return
}

// TeacherReview is limited to one per (learner, teacher) pair.
type TeacherReview struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_teacher_reviews_learner_teacher" json:"learner_id"`
	Learner   *User     `gorm:"foreignKey:LearnerID" json:"learner,omitempty"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_teacher_reviews_learner_teacher" json:"teacher_id"`
	Teacher   *User     `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (review *TeacherReview) BeforeCreate(tx *gorm.DB) (err error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	return
}
