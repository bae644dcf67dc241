package handler

import (
	"errors"
	"net/http"
	"strconv"

	"taka/internal/domain"
	"taka/internal/logger"
	"taka/internal/models"
	"taka/internal/repository"
	"taka/internal/service"
	"taka/pkg/payout"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminRepo      *repository.AdminRepository
	collectionRepo *repository.CollectionRepository
	withdrawalRepo *repository.WithdrawalRepository
	walletRepo     *repository.WalletRepository
	rewards        *service.RewardsService
	approvalSvc    *service.WithdrawalApprovalService
	deletionSvc    *service.CollectionDeletionService
	notifier       *service.NotificationService
	payoutProvider payout.Provider
}

func NewAdminHandler(
	adminRepo *repository.AdminRepository,
	collectionRepo *repository.CollectionRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	walletRepo *repository.WalletRepository,
	rewards *service.RewardsService,
	approvalSvc *service.WithdrawalApprovalService,
	deletionSvc *service.CollectionDeletionService,
	notifier *service.NotificationService,
	payoutProvider payout.Provider,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:      adminRepo,
		collectionRepo: collectionRepo,
		withdrawalRepo: withdrawalRepo,
		walletRepo:     walletRepo,
		rewards:        rewards,
		approvalSvc:    approvalSvc,
		deletionSvc:    deletionSvc,
		notifier:       notifier,
		payoutProvider: payoutProvider,
	}
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	search := c.Query("search")
	role := c.Query("role")
	page, limit := parsePagination(c)
	users, total, err := h.adminRepo.ListUsers(search, role, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "total": total, "page": page, "limit": limit})
}

// ListCollections handles GET /admin/collections.
func (h *AdminHandler) ListCollections(c *gin.Context) {
	status := c.Query("status")
	page, limit := parsePagination(c)
	list, total, err := h.collectionRepo.List(status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list collections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// ApproveCollection handles POST /admin/collections/:id/approve. Points are
// computed from the material weights at the current rates; the wallet credit
// itself is queued and applied by the sync worker.
func (h *AdminHandler) ApproveCollection(c *gin.Context) {
	col, err := h.collectionRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	if col.Status != domain.CollectionStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection already reviewed"})
		return
	}
	points := h.rewards.PointsFor(col.Materials)
	rates := make(map[uint]int64, len(col.Materials))
	for _, m := range col.Materials {
		rates[m.ID] = h.rewards.RateFor(m.Material)
	}
	queue := &models.WalletUpdateQueue{
		CollectionID: col.ID,
		UserID:       col.CollectorID,
		Points:       points,
		Amount:       h.rewards.AmountForPoints(points),
		Status:       domain.QueueStatusPending,
	}
	if err := h.collectionRepo.Approve(col, points, rates, queue); err != nil {
		logger.Log.Errorf("[Admin] approve collection %s failed: %v", col.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "approve failed"})
		return
	}
	_ = h.notifier.NotifyCollectionApproved(col.CollectorID, col.ID, points)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "points_awarded": points})
}

// RejectCollection handles POST /admin/collections/:id/reject.
func (h *AdminHandler) RejectCollection(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	col, err := h.collectionRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	if col.Status != domain.CollectionStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection already reviewed"})
		return
	}
	if err := h.collectionRepo.Reject(col.ID, req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reject failed"})
		return
	}
	_ = h.notifier.NotifyCollectionRejected(col.CollectorID, col.ID, req.Reason)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListWithdrawals handles GET /admin/withdrawals.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	status := c.Query("status")
	page, limit := parsePagination(c)
	list, total, err := h.withdrawalRepo.List(status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// ListTransactions handles GET /admin/transactions.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	txType := c.Query("type")
	page, limit := parsePagination(c)
	list, total, err := h.walletRepo.ListAllTransactions(txType, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

type updateWithdrawalRequest struct {
	Status       string `json:"status"`
	AdminNotes   string `json:"adminNotes"`
	PayoutMethod string `json:"payoutMethod"`
}

// UpdateWithdrawal handles PATCH /admin/withdrawals/:id. The status write is
// the source of truth; a failed wallet debit comes back as a warning next to
// the updated withdrawal, not as an error.
func (h *AdminHandler) UpdateWithdrawal(c *gin.Context) {
	var req updateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	row, warning, err := h.approvalSvc.SetStatus(c.Request.Context(), c.Param("id"), req.Status, req.AdminNotes, req.PayoutMethod)
	if err != nil {
		if errors.Is(err, service.ErrMissingStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		logger.Log.Errorf("[Admin] withdrawal %s update failed: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if userID, ok := row.Uint("user_id"); ok && userID != 0 {
		_ = h.notifier.NotifyWithdrawalStatus(userID, c.Param("id"), req.Status)
	}
	resp := gin.H{"withdrawal": row}
	if warning != "" {
		resp["warning"] = warning
	} else {
		resp["message"] = "withdrawal updated"
	}
	c.JSON(http.StatusOK, resp)
}

type deleteCollectionRequest struct {
	CollectionID string `json:"collectionId"`
}

// DeleteCollection handles POST /admin/delete-collection. Success means the
// verification read found nothing left, not that the deletes reported ok.
func (h *AdminHandler) DeleteCollection(c *gin.Context) {
	var req deleteCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CollectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collectionId is required"})
		return
	}
	err := h.deletionSvc.DeleteCollection(c.Request.Context(), req.CollectionID)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	var partial *service.PartialDeleteError
	switch {
	case errors.Is(err, service.ErrInvalidCollectionID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &partial):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "reason": "not_deleted", "details": partial.Details})
	default:
		logger.Log.Errorf("[Admin] delete collection %s failed: %v", req.CollectionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
	}
}

// Payout handles POST /admin/withdrawals/:id/payout. It moves the money for
// an approved request over M-Pesa B2C; the wallet was already debited at
// approval time.
func (h *AdminHandler) Payout(c *gin.Context) {
	w, err := h.withdrawalRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		return
	}
	if w.Status != domain.WithdrawalStatusApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "withdrawal is not approved"})
		return
	}
	if h.payoutProvider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payouts not configured"})
		return
	}
	resp, err := h.payoutProvider.InitiatePayout(c.Request.Context(), payout.Request{
		Amount:      w.Amount,
		PhoneNumber: w.PayoutPhone,
		Description: "Wallet withdrawal",
		OrderID:     "wd-" + w.ID,
	})
	if err != nil {
		logger.Log.Errorf("[Admin] payout for withdrawal %s failed: %v", w.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payout failed"})
		return
	}
	w.Status = domain.WithdrawalStatusProcessing
	w.ProviderRef = resp.Reference
	if err := h.withdrawalRepo.Update(w); err != nil {
		logger.Log.Errorf("[Admin] payout recorded but status update failed for %s: %v", w.ID, err)
	}
	_ = h.notifier.NotifyWithdrawalStatus(w.UserID, w.ID, domain.WithdrawalStatusProcessing)
	c.JSON(http.StatusOK, gin.H{"status": resp.Status, "reference": resp.Reference})
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
