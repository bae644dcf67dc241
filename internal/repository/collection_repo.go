package repository

import (
	"time"

	"taka/internal/domain"
	"taka/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Create stores the collection together with its material breakdown.
func (r *CollectionRepository) Create(c *models.Collection, materials []models.CollectionMaterial) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		for i := range materials {
			materials[i].CollectionID = c.ID
		}
		if len(materials) > 0 {
			if err := tx.Create(&materials).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CollectionRepository) GetByID(id string) (*models.Collection, error) {
	var c models.Collection
	err := r.db.Preload("Photos").Preload("Materials").Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepository) ListByCollector(collectorID uint, limit, offset int) ([]models.Collection, error) {
	var list []models.Collection
	err := r.db.Preload("Photos").Preload("Materials").
		Where("collector_id = ?", collectorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *CollectionRepository) List(status string, page, limit int) ([]models.Collection, int64, error) {
	q := r.db.Model(&models.Collection{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	q.Count(&total)
	var list []models.Collection
	err := q.Preload("Materials").Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *CollectionRepository) AddPhoto(p *models.CollectionPhoto) error {
	return r.db.Create(p).Error
}

// Approve marks the collection approved, locks the material rates and
// points, and enqueues the async wallet credit in one transaction so that
// an approved collection always has its queue entry.
func (r *CollectionRepository) Approve(c *models.Collection, pointsAwarded int64, materialRates map[uint]int64, queue *models.WalletUpdateQueue) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(c).Updates(map[string]interface{}{
			"status":         domain.CollectionStatusApproved,
			"points_awarded": pointsAwarded,
			"updated_at":     now,
		}).Error; err != nil {
			return err
		}
		for materialID, rate := range materialRates {
			if err := tx.Model(&models.CollectionMaterial{}).
				Where("id = ?", materialID).
				Update("points_per_kg", rate).Error; err != nil {
				return err
			}
		}
		return tx.Create(queue).Error
	})
}

func (r *CollectionRepository) Reject(id, notes string) error {
	return r.db.Model(&models.Collection{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status": domain.CollectionStatusRejected,
		"notes":  notes,
	}).Error
}

// PendingQueueEntries returns unprocessed wallet-credit jobs, oldest first.
func (r *CollectionRepository) PendingQueueEntries(limit int) ([]models.WalletUpdateQueue, error) {
	var list []models.WalletUpdateQueue
	err := r.db.Where("status = ?", domain.QueueStatusPending).
		Order("created_at ASC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *CollectionRepository) MarkQueueEntryProcessed(id uint) error {
	now := time.Now()
	return r.db.Model(&models.WalletUpdateQueue{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       domain.QueueStatusProcessed,
		"processed_at": now,
	}).Error
}

func (r *CollectionRepository) MarkQueueEntryFailed(id uint, reason string) error {
	return r.db.Model(&models.WalletUpdateQueue{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     domain.QueueStatusFailed,
		"last_error": reason,
	}).Error
}
