package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletTransaction is the append-only ledger entry behind every balance
// change (collection credits, withdrawal debits, manual adjustments).
// Rows are never updated; they are deleted only when a whole collection
// is cascade-deleted.
type WalletTransaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"` // positive = credit, negative = debit
	Type         string          `gorm:"size:30;not null;index" json:"type"`        // withdrawal, collection_approval, adjustment
	Description  string          `gorm:"size:255" json:"description"`
	Reference    string          `gorm:"size:64;index" json:"reference"`   // originating withdrawal or collection id
	SourceType   string          `gorm:"size:30;index" json:"source_type"` // tags Reference, e.g. collection_approval
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
