package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Collection is the unified aggregate root for a recycling drop-off.
// Dependents (photos, materials, queued wallet updates and ledger rows
// referencing the collection id) must never outlive the parent.
type Collection struct {
	ID            string          `gorm:"type:char(36);primaryKey" json:"id"`
	CollectorID   uint            `gorm:"not null;index" json:"collector_id"`
	TotalWeightKG decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_weight_kg"`
	Status        string          `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	PointsAwarded int64           `gorm:"not null;default:0" json:"points_awarded"`
	Notes         string          `gorm:"size:512" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	Collector User                 `gorm:"foreignKey:CollectorID" json:"-"`
	Photos    []CollectionPhoto    `gorm:"foreignKey:CollectionID" json:"photos,omitempty"`
	Materials []CollectionMaterial `gorm:"foreignKey:CollectionID" json:"materials,omitempty"`
}

func (Collection) TableName() string {
	return "collections"
}

// LegacyCollection is the pre-unification parent shape. Reads and deletes
// must check it alongside Collection until the backfill retires it.
type LegacyCollection struct {
	ID          string          `gorm:"type:char(36);primaryKey" json:"id"`
	CollectorID uint            `gorm:"index" json:"collector_id"`
	WeightKG    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"weight_kg"`
	Material    string          `gorm:"size:30" json:"material"`
	Status      string          `gorm:"size:20;index" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (LegacyCollection) TableName() string {
	return "legacy_collections"
}

type CollectionPhoto struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CollectionID string    `gorm:"type:char(36);not null;index" json:"collection_id"`
	URL          string    `gorm:"size:512;not null" json:"url"`
	PublicID     string    `gorm:"size:255" json:"public_id"` // cloudinary asset id
	CreatedAt    time.Time `json:"created_at"`
}

func (CollectionPhoto) TableName() string {
	return "collection_photos"
}

type CollectionMaterial struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CollectionID string          `gorm:"type:char(36);not null;index" json:"collection_id"`
	Material     string          `gorm:"size:30;not null" json:"material"`
	WeightKG     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"weight_kg"`
	PointsPerKG  int64           `gorm:"not null;default:0" json:"points_per_kg"` // rate locked at approval time
	CreatedAt    time.Time       `json:"created_at"`
}

func (CollectionMaterial) TableName() string {
	return "collection_materials"
}

// WalletUpdateQueue holds async wallet-credit jobs produced when a
// collection is approved. The wallet sync worker drains pending rows.
type WalletUpdateQueue struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CollectionID string          `gorm:"type:char(36);not null;index" json:"collection_id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Points       int64           `gorm:"not null" json:"points"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status       string          `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	LastError    string          `gorm:"size:512" json:"last_error"`
	CreatedAt    time.Time       `json:"created_at"`
	ProcessedAt  *time.Time      `json:"processed_at"`
}

func (WalletUpdateQueue) TableName() string {
	return "wallet_update_queue"
}
