package service

import (
	"context"
	"encoding/json"
	"fmt"

	"taka/internal/models"
	"taka/internal/repository"
)

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	s.sendPush(userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	_ = s.fcm.SendToUser(context.Background(), u.FCMToken, notifType, title, body, data)
}

func (s *NotificationService) NotifyCollectionApproved(collectorID uint, collectionID string, points int64) error {
	return s.Notify(collectorID, "COLLECTION_APPROVED", "Collection approved",
		fmt.Sprintf("Your drop-off was approved for %d points", points),
		map[string]interface{}{"collection_id": collectionID, "points": points})
}

func (s *NotificationService) NotifyCollectionRejected(collectorID uint, collectionID, reason string) error {
	body := "Your drop-off was rejected"
	if reason != "" {
		body += ": " + reason
	}
	return s.Notify(collectorID, "COLLECTION_REJECTED", "Collection rejected", body,
		map[string]interface{}{"collection_id": collectionID})
}

func (s *NotificationService) NotifyWalletCredited(userID uint, collectionID string, amount string) error {
	return s.Notify(userID, "WALLET_CREDITED", "Wallet credited",
		"KES "+amount+" added to your wallet",
		map[string]interface{}{"collection_id": collectionID, "amount": amount})
}

func (s *NotificationService) NotifyWithdrawalStatus(userID uint, withdrawalID, status string) error {
	return s.Notify(userID, "WITHDRAWAL_"+status, "Withdrawal "+status,
		"Your withdrawal request is now "+status,
		map[string]interface{}{"withdrawal_id": withdrawalID, "status": status})
}
