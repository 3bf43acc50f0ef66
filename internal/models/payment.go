package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment records a single transaction. Unlike enrollments there is no
// uniqueness on (learner, course); repeat purchases each get their own row.
type Payment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Amount    float64        `gorm:"type:numeric(8,2);not null" json:"amount"`
	Provider  string         `gorm:"not null;default:'mock'" json:"provider"`
	Status    PaymentStatus  `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Reference string         `gorm:"size:64;unique;not null" json:"reference"`
	Metadata  datatypes.JSON `json:"metadata"`
	LearnerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"learner_id"`
	Learner   *User          `gorm:"foreignKey:LearnerID" json:"learner,omitempty"`
	CourseID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course    *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return
}
