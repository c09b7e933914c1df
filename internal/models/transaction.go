package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionPaid    TransactionStatus = "paid"
	TransactionFailed  TransactionStatus = "failed"
)

const (
	ProviderVNPay  = "vnpay"
	ProviderPayPal = "paypal"
)

// Transaction is the ledger entry for one checkout attempt. The amount is
// fixed at creation from the trusted cart and never recomputed from gateway
// input. Status only ever moves pending -> paid or pending -> failed.
type Transaction struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key"`
	OrderID        string            `gorm:"size:50;uniqueIndex;not null"`
	Provider       string            `gorm:"not null"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	User           *User             `gorm:"foreignKey:UserID"`
	Items          []TransactionItem `gorm:"foreignKey:TransactionID"`
	Amount         int64             `gorm:"not null"`
	Currency       string            `gorm:"not null;default:'VND'"`
	Status         TransactionStatus `gorm:"not null;default:'pending';index"`
	GatewayOrderID string            `gorm:"index"`
	GatewayTxnID   string
	RedirectURL    string
	RawResponse    datatypes.JSON
	PaidAt         *time.Time
	CouponCode     string
	DiscountAmount int64 `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TransactionItem snapshots one purchased course with its listed price at
// purchase time, which settlement uses for proportional allocation.
type TransactionItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null"`
	InstructorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Price         int64     `gorm:"not null"`
	CreatedAt     time.Time
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

func (item *TransactionItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return
}
