package repository

import (
	"errors"

	"taka/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{UserID: userID, Balance: decimal.Zero, Currency: "KES"}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// Credit adds amount and points to the wallet and appends the paired
// transaction row in a single database transaction. Balance never moves
// without a matching ledger entry.
func (r *WalletRepository) Credit(userID uint, amount decimal.Decimal, points int64, txType, description, reference, sourceType string) (*models.Wallet, error) {
	var w *models.Wallet
	err := r.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := walletForUpdate(tx, userID)
		if err != nil {
			return err
		}
		wallet.Balance = wallet.Balance.Add(amount)
		wallet.TotalPoints += points
		if err := tx.Model(wallet).Updates(map[string]interface{}{
			"balance":      wallet.Balance,
			"total_points": wallet.TotalPoints,
		}).Error; err != nil {
			return err
		}
		entry := &models.WalletTransaction{
			UserID:       userID,
			Amount:       amount,
			Type:         txType,
			Description:  description,
			Reference:    reference,
			SourceType:   sourceType,
			BalanceAfter: wallet.Balance,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		w = wallet
		return nil
	})
	return w, err
}

func walletForUpdate(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.Wallet{UserID: userID, Balance: decimal.Zero, Currency: "KES"}
		if err := tx.Create(&w).Error; err != nil {
			return nil, err
		}
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) UpdateTier(userID uint, tier string) error {
	return r.db.Model(&models.Wallet{}).Where("user_id = ?", userID).Update("tier", tier).Error
}

func (r *WalletRepository) ListTransactions(userID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var list []models.WalletTransaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *WalletRepository) ListAllTransactions(txType string, page, limit int) ([]models.WalletTransaction, int64, error) {
	q := r.db.Model(&models.WalletTransaction{})
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	var total int64
	q.Count(&total)
	var list []models.WalletTransaction
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
