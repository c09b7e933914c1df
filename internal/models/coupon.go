package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coupon is a percentage discount bound to exactly one course. It only ever
// discounts that course's contribution inside a multi-item cart.
type Coupon struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Code            string    `gorm:"unique;not null"`
	DiscountPercent int       `gorm:"not null"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Course          *Course   `gorm:"foreignKey:CourseID"`
	InstructorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiryDate      time.Time `gorm:"not null"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (coupon *Coupon) BeforeCreate(tx *gorm.DB) (err error) {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	return
}
