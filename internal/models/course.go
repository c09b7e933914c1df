package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Title         string    `gorm:"not null"`
	Slug          string    `gorm:"unique;not null"`
	Description   string    `gorm:"not null"`
	Price         int64     `gorm:"not null;default:0"`
	InstructorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Instructor    *User     `gorm:"foreignKey:InstructorID"`
	CategoryID    uuid.UUID `gorm:"type:uuid;not null"`
	Category      *Category `gorm:"foreignKey:CategoryID"`
	AverageRating float64   `gorm:"not null;default:0"`
	RatingCount   int       `gorm:"not null;default:0"`
	TotalStudents int       `gorm:"not null;default:0"`
	IsPublished   bool      `gorm:"not null;default:false"`
}

func (course *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	return
}
