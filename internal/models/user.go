package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Name            string    `gorm:"not null"`
	Email           string    `gorm:"unique;not null"`
	Password        string    `gorm:"not null" json:"-"`
	RoleID          uuid.UUID
	Role            Role
	EnrolledCourses []Course `gorm:"many2many:user_courses;"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}
