package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a collector's redeemable balance and lifetime points.
// Balance is only ever written through paths that also append a
// WalletTransaction; a bare balance write is a bookkeeping violation.
type Wallet struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	TotalPoints int64           `gorm:"not null;default:0" json:"total_points"`
	Tier        string          `gorm:"size:20;not null;default:'bronze'" json:"tier"`
	Currency    string          `gorm:"size:3;default:'KES'" json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
