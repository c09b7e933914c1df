package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "pending"
	PayoutApproved PayoutStatus = "approved"
	PayoutRejected PayoutStatus = "rejected"
)

type PayoutRequest struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key"`
	InstructorID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	Amount        int64        `gorm:"not null"`
	BankName      string       `gorm:"not null"`
	AccountNumber string       `gorm:"not null"`
	AccountName   string       `gorm:"not null"`
	Note          string
	Status        PayoutStatus `gorm:"not null;default:'pending';index"`
	AdminComment  string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *PayoutRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
