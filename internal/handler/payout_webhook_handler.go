package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"taka/internal/domain"
	"taka/internal/logger"
	"taka/internal/repository"
	"taka/internal/service"

	"github.com/gin-gonic/gin"
)

// B2CCallback is the webhook payload from the M-Pesa B2C provider.
type B2CCallback struct {
	Amount            string `json:"amount"`
	ConversationID    string `json:"conversation_id"`
	Currency          string `json:"currency"`
	CustomerPhone     string `json:"customer_phone"`
	MerchantOrderID   string `json:"merchant_order_id"`
	OrderID           string `json:"order_id"`
	ReceiptNumber     string `json:"receipt_number"`
	ReferenceOrderID  string `json:"reference_order_id"`
	Status            string `json:"status"`
	StatusDescription string `json:"status_description"`
	TransactionDate   string `json:"transaction_date"`
	TransactionUUID   string `json:"transaction_uuid"`
}

type PayoutWebhookHandler struct {
	withdrawalRepo *repository.WithdrawalRepository
	notifier       *service.NotificationService
}

func NewPayoutWebhookHandler(withdrawalRepo *repository.WithdrawalRepository, notifier *service.NotificationService) *PayoutWebhookHandler {
	return &PayoutWebhookHandler{withdrawalRepo: withdrawalRepo, notifier: notifier}
}

// Handle processes the B2C callback. COMPLETED marks the withdrawal done;
// anything else drops it back to approved so an admin can retry the payout.
// The wallet debit from approval stands either way.
func (h *PayoutWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	logger.Log.Infof("[Payout callback] raw body: %s", string(body))
	var payload B2CCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	orderID := payload.MerchantOrderID
	if orderID == "" {
		orderID = payload.OrderID
	}
	if orderID == "" {
		orderID = payload.ReferenceOrderID
	}
	if orderID == "" {
		logger.Log.Warn("[Payout callback] no order_id in payload")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	w, err := h.withdrawalRepo.GetByProviderRef(orderID)
	if err != nil || w == nil {
		logger.Log.Warnf("[Payout callback] withdrawal not found for order_id=%s", orderID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if w.Status != domain.WithdrawalStatusProcessing {
		logger.Log.Infof("[Payout callback] withdrawal %s already %s for order_id=%s", w.ID, w.Status, orderID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if payload.Status == "COMPLETED" {
		now := time.Now()
		w.Status = domain.WithdrawalStatusCompleted
		w.ProcessedAt = &now
	} else {
		w.Status = domain.WithdrawalStatusApproved
		w.AdminNotes = "payout failed: " + payload.StatusDescription
	}
	if err := h.withdrawalRepo.Update(w); err != nil {
		logger.Log.Errorf("[Payout callback] update failed for %s: %v", w.ID, err)
	}
	_ = h.notifier.NotifyWithdrawalStatus(w.UserID, w.ID, w.Status)
	c.JSON(http.StatusOK, gin.H{"received": true})
}
