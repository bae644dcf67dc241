package service

import (
	"context"
	"time"

	"taka/config"
	"taka/internal/domain"
	"taka/internal/logger"
	"taka/internal/repository"
	"taka/internal/ws"
)

// WalletSyncService drains the wallet_update_queue: each pending entry
// becomes a wallet credit with its paired collection_approval transaction.
// Entries that fail stay visible as "failed" with the reason recorded so
// an operator can retry or reconcile them.
type WalletSyncService struct {
	collectionRepo *repository.CollectionRepository
	walletRepo     *repository.WalletRepository
	rewards        *RewardsService
	notifier       *NotificationService
	hub            *ws.Hub
	interval       time.Duration
	batchSize      int
}

func NewWalletSyncService(
	cfg config.RewardsConfig,
	collectionRepo *repository.CollectionRepository,
	walletRepo *repository.WalletRepository,
	rewards *RewardsService,
	notifier *NotificationService,
	hub *ws.Hub,
) *WalletSyncService {
	return &WalletSyncService{
		collectionRepo: collectionRepo,
		walletRepo:     walletRepo,
		rewards:        rewards,
		notifier:       notifier,
		hub:            hub,
		interval:       cfg.SyncInterval,
		batchSize:      cfg.SyncBatchSize,
	}
}

// Start runs the drain loop until ctx is cancelled.
func (s *WalletSyncService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.ProcessPending(); n > 0 {
					logger.Log.Infof("[WalletSync] processed %d queue entries", n)
				}
			}
		}
	}()
}

// ProcessPending credits one batch of pending queue entries and returns how
// many were processed successfully.
func (s *WalletSyncService) ProcessPending() int {
	entries, err := s.collectionRepo.PendingQueueEntries(s.batchSize)
	if err != nil {
		logger.Log.Errorf("[WalletSync] load queue: %v", err)
		return 0
	}
	processed := 0
	for _, entry := range entries {
		wallet, err := s.walletRepo.Credit(
			entry.UserID,
			entry.Amount,
			entry.Points,
			domain.TxTypeCollectionApproval,
			"Collection reward",
			entry.CollectionID,
			domain.TxTypeCollectionApproval,
		)
		if err != nil {
			logger.Log.Errorf("[WalletSync] credit user %d for %s: %v", entry.UserID, entry.CollectionID, err)
			if mErr := s.collectionRepo.MarkQueueEntryFailed(entry.ID, err.Error()); mErr != nil {
				logger.Log.Errorf("[WalletSync] mark entry %d failed: %v", entry.ID, mErr)
			}
			continue
		}
		if err := s.collectionRepo.MarkQueueEntryProcessed(entry.ID); err != nil {
			// The credit went through; a stuck "pending" entry would
			// double-credit on the next tick, so this is the loudest log.
			logger.Log.Errorf("[WalletSync] credit applied but entry %d not marked processed: %v", entry.ID, err)
			continue
		}

		if tier := s.rewards.TierFor(wallet.TotalPoints); tier != wallet.Tier {
			if err := s.walletRepo.UpdateTier(entry.UserID, tier); err != nil {
				logger.Log.Warnf("[WalletSync] tier update for user %d: %v", entry.UserID, err)
			} else {
				wallet.Tier = tier
			}
		}

		if s.hub != nil {
			s.hub.BroadcastToUser(entry.UserID, map[string]interface{}{
				"type":         "wallet_update",
				"balance":      wallet.Balance,
				"total_points": wallet.TotalPoints,
				"tier":         wallet.Tier,
			})
		}
		if s.notifier != nil {
			_ = s.notifier.NotifyWalletCredited(entry.UserID, entry.CollectionID, entry.Amount.StringFixed(2))
		}
		processed++
	}
	return processed
}
