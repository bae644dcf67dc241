package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalRequest tracks a collector cashing out wallet balance.
// Amount is immutable once created; status moves through
// pending -> approved -> processing -> completed (or rejected).
type WithdrawalRequest struct {
	ID           string          `gorm:"type:char(36);primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status       string          `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	AdminNotes   string          `gorm:"size:512" json:"admin_notes"`
	PayoutMethod string          `gorm:"size:30" json:"payout_method"` // mpesa | bank
	PayoutPhone  string          `gorm:"size:20" json:"payout_phone"`
	ProviderRef  string          `gorm:"size:128" json:"provider_ref"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ProcessedAt  *time.Time      `json:"processed_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
