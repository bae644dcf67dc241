package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"taka/internal/domain"
	"taka/internal/middleware"
	"taka/internal/models"
	"taka/internal/repository"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	walletRepo     *repository.WalletRepository
	withdrawalRepo *repository.WithdrawalRepository
}

func NewWithdrawalHandler(walletRepo *repository.WalletRepository, withdrawalRepo *repository.WithdrawalRepository) *WithdrawalHandler {
	return &WithdrawalHandler{walletRepo: walletRepo, withdrawalRepo: withdrawalRepo}
}

type createWithdrawalRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	PhoneNumber string  `json:"phone_number" binding:"required"`
	Method      string  `json:"method"`
}

// Create records a withdrawal request. The wallet is not debited here;
// that happens when an admin approves the request.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req createWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone := normalizePhone(req.PhoneNumber)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	amount := decimal.NewFromFloat(req.Amount).Round(2)
	wallet, err := h.walletRepo.GetOrCreate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	if wallet.Balance.LessThan(amount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		return
	}
	method := req.Method
	if method == "" {
		method = "mpesa"
	}
	w := &models.WithdrawalRequest{
		UserID:       userID,
		Amount:       amount,
		Status:       domain.WithdrawalStatusPending,
		PayoutMethod: method,
		PayoutPhone:  phone,
	}
	if err := h.withdrawalRepo.Create(w); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record withdrawal"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
}

// ListMine returns the current user's withdrawal requests.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, err := h.withdrawalRepo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

func normalizePhone(s string) string {
	s = regexp.MustCompile(`\D`).ReplaceAllString(s, "")
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "0") {
		s = "254" + s[1:]
	} else if !strings.HasPrefix(s, "254") {
		s = "254" + s
	}
	if len(s) != 12 {
		return ""
	}
	return s
}
