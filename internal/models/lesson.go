package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lesson struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	VideoURL  string         `gorm:"not null" json:"video_url"`
	Position  int            `gorm:"not null;default:1" json:"position"`
	CourseID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course    *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (lesson *Lesson) BeforeCreate(tx *gorm.DB) (err error) {
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	return
}
