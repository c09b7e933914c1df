package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Earning is one instructor's cut of one item inside a paid transaction.
// Rows are append-only; balances and dashboard revenue are sums over them.
type Earning struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null"`
	InstructorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount        int64     `gorm:"not null"`
	Month         string    `gorm:"size:7;not null;index"`
	CreatedAt     time.Time
}

func (e *Earning) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
