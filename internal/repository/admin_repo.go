package repository

import (
	"taka/internal/domain"
	"taka/internal/models"

	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

type DashboardStats struct {
	TotalUsers          int64   `json:"total_users"`
	TotalCollections    int64   `json:"total_collections"`
	PendingCollections  int64   `json:"pending_collections"`
	ApprovedCollections int64   `json:"approved_collections"`
	TotalWeightKG       float64 `json:"total_weight_kg"`
	WalletBalanceSum    float64 `json:"wallet_balance_sum"`
	PendingWithdrawals  int64   `json:"pending_withdrawals"`
	PendingQueueEntries int64   `json:"pending_queue_entries"`
}

func (r *AdminRepository) ListUsers(search, role string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR username LIKE ?", like, like)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	q.Count(&total)
	var users []models.User
	err := q.Preload("Wallet").Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, err
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.Collection{}).Count(&s.TotalCollections)
	r.db.Model(&models.Collection{}).Where("status = ?", domain.CollectionStatusPending).Count(&s.PendingCollections)
	r.db.Model(&models.Collection{}).Where("status = ?", domain.CollectionStatusApproved).Count(&s.ApprovedCollections)
	r.db.Model(&models.Collection{}).Select("COALESCE(SUM(total_weight_kg), 0)").Scan(&s.TotalWeightKG)
	r.db.Model(&models.Wallet{}).Select("COALESCE(SUM(balance), 0)").Scan(&s.WalletBalanceSum)
	r.db.Model(&models.WithdrawalRequest{}).Where("status = ?", domain.WithdrawalStatusPending).Count(&s.PendingWithdrawals)
	r.db.Model(&models.WalletUpdateQueue{}).Where("status = ?", domain.QueueStatusPending).Count(&s.PendingQueueEntries)
	return &s, nil
}
