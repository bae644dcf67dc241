package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taka/internal/domain"
	"taka/internal/ledger"
	"taka/internal/logger"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingStatus = errors.New("status is required")
	ErrUpdateFailed  = errors.New("failed to update withdrawal request")
)

// WithdrawalApprovalService drives the withdrawal status state machine and,
// on approval, debits the collector's wallet and appends the paired ledger
// entry. The status update is the source of truth: once it commits it is
// never rolled back, and a failed wallet debit surfaces as a warning for
// later reconciliation instead of an error.
type WithdrawalApprovalService struct {
	store ledger.Store
}

func NewWithdrawalApprovalService(store ledger.Store) *WithdrawalApprovalService {
	return &WithdrawalApprovalService{store: store}
}

// SetStatus updates the request's status, notes and payout method, then runs
// the approval side effects when the new status is "approved". Returns the
// updated row and a non-empty warning when the wallet debit did not complete.
//
// Target statuses are not validated against the current one; any transition
// is accepted (completed -> pending included).
func (s *WithdrawalApprovalService) SetStatus(ctx context.Context, withdrawalID, status, adminNotes, payoutMethod string) (ledger.Row, string, error) {
	if status == "" {
		return nil, "", ErrMissingStatus
	}

	now := time.Now().UTC()
	fields := ledger.Fields{
		"status":     status,
		"updated_at": now,
	}
	if adminNotes != "" {
		fields["admin_notes"] = adminNotes
	}
	if payoutMethod != "" {
		fields["payout_method"] = payoutMethod
	}
	switch status {
	case domain.WithdrawalStatusApproved, domain.WithdrawalStatusProcessing, domain.WithdrawalStatusCompleted:
		fields["processed_at"] = now
	}

	updated, err := s.store.UpdateRow(ctx, "withdrawal_requests", ledger.Filter{"id": withdrawalID}, fields)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	var warning string
	if status == domain.WithdrawalStatusApproved {
		warning = s.debitWallet(ctx, withdrawalID)
		if warning != "" {
			logger.Log.Warnf("[WithdrawalApproval] %s: %s", withdrawalID, warning)
		}
	}
	return updated, warning, nil
}

// debitWallet performs the approval side effects: clamp-debit the wallet and
// append the withdrawal transaction. Returns a warning message on any
// failure; the already-committed status change stands either way.
func (s *WithdrawalApprovalService) debitWallet(ctx context.Context, withdrawalID string) string {
	row, err := s.store.GetRow(ctx, "withdrawal_requests", ledger.Filter{"id": withdrawalID})
	if err != nil {
		return fmt.Sprintf("wallet reconciliation incomplete: reload withdrawal: %v", err)
	}
	userID, ok := row.Uint("user_id")
	if !ok {
		return "wallet reconciliation incomplete: withdrawal has no user_id"
	}
	amount, ok := row.Decimal("amount")
	if !ok {
		return "wallet reconciliation incomplete: withdrawal has no amount"
	}

	wallet, err := s.store.GetRow(ctx, "wallets", ledger.Filter{"user_id": userID})
	if err != nil {
		return fmt.Sprintf("wallet reconciliation incomplete: load wallet: %v", err)
	}
	balance, _ := wallet.Decimal("balance")

	// Clamp at zero: the balance invariant wins over exact bookkeeping
	// when the requested amount exceeds what the wallet holds.
	newBalance := balance.Sub(amount)
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}

	now := time.Now().UTC()
	if _, err := s.store.UpdateRow(ctx, "wallets", ledger.Filter{"user_id": userID}, ledger.Fields{
		"balance":    newBalance,
		"updated_at": now,
	}); err != nil {
		return fmt.Sprintf("wallet reconciliation incomplete: write balance: %v", err)
	}

	if _, err := s.store.InsertRow(ctx, "wallet_transactions", ledger.Fields{
		"user_id":       userID,
		"amount":        amount.Neg(),
		"type":          domain.TxTypeWithdrawal,
		"description":   "Withdrawal payout",
		"reference":     withdrawalID,
		"source_type":   domain.TxTypeWithdrawal,
		"balance_after": newBalance,
		"created_at":    now,
	}); err != nil {
		return fmt.Sprintf("wallet reconciliation incomplete: append transaction: %v", err)
	}
	return ""
}
